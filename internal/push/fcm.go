// Package push – Firebase Cloud Messaging implementation.
package push

import (
	"context"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
)

// FCMProvider implements Provider on top of Firebase Cloud Messaging.
type FCMProvider struct {
	client *messaging.Client
}

var _ Provider = (*FCMProvider)(nil)

// NewFCMProvider derives a messaging client from an initialized Firebase app.
func NewFCMProvider(ctx context.Context, app *firebase.App) (*FCMProvider, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FCMProvider{client: client}, nil
}

// Send delivers a single notification to deviceToken and returns the FCM
// message ID.
func (p *FCMProvider) Send(ctx context.Context, deviceToken string, payload Payload) (string, error) {
	msg := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}
	return p.client.Send(ctx, msg)
}
