// Package push abstracts the external provider that delivers out-of-band
// notifications to a registered device token. The production implementation
// is Firebase Cloud Messaging; Nop exists for deployments without push
// credentials and for tests.
package push

import "context"

// Payload is the notification content handed to the provider.
type Payload struct {
	Title string
	Body  string
	// Data carries auxiliary key/value pairs delivered alongside the
	// notification (complaint number, status, notification type).
	Data map[string]string
}

// Provider is the push-delivery contract the dispatcher consumes.
//
// Send attempts delivery to a single device token and returns the provider's
// message identifier. Any error (invalid token, provider outage) is a
// delivery failure to be reported, never a reason to fail the triggering
// workflow.
type Provider interface {
	Send(ctx context.Context, deviceToken string, p Payload) (string, error)
}

// Nop discards every payload and reports success. Used when push delivery is
// disabled by configuration.
type Nop struct{}

var _ Provider = (*Nop)(nil)

// Send implements Provider by doing nothing.
func (Nop) Send(ctx context.Context, deviceToken string, p Payload) (string, error) {
	return "", nil
}
