// Package domain defines the core persistence models and shared result types
// for the application. This file holds the structured outcome types produced
// by coordinated administrative mutations.
package domain

// StepStatus classifies one sub-step of a multi-system mutation. The two-tier
// failure policy (courtesy steps may warn, authoritative steps are fatal) is
// carried in the type rather than in nested control flow.
type StepStatus string

const (
	// StepOK means the sub-step completed.
	StepOK StepStatus = "ok"
	// StepWarning means the sub-step failed but the operation continues;
	// used for courtesy effects such as identity-provider cleanup.
	StepWarning StepStatus = "warning"
	// StepFatal means the sub-step failed and the operation fails with it;
	// used for the authoritative datastore effect.
	StepFatal StepStatus = "fatal"
	// StepSkipped means the sub-step had nothing to do (e.g. the officer
	// was never provisioned on the identity side).
	StepSkipped StepStatus = "skipped"
)

// StepResult records the outcome of a single named sub-step.
type StepResult struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// OutcomeStatus is the overall result of a coordinated mutation.
type OutcomeStatus string

const (
	// OutcomeSuccess means every executed sub-step completed.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomePartial means the authoritative effect completed but a
	// courtesy effect did not. Partial is a first-class outcome, not an
	// error.
	OutcomePartial OutcomeStatus = "partial"
	// OutcomeFailure means the authoritative effect did not complete.
	OutcomeFailure OutcomeStatus = "failure"
)

// DeletedOfficer is the structured summary of a removed officer, captured
// before the row is deleted so the outcome can still report identity.
type DeletedOfficer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	BadgeNumber string `json:"badge_number"`
	Email       string `json:"email"`
}

// OperationOutcome is the result of a coordinated administrative mutation:
// an overall status, a human-readable message, and the per-step record that
// makes the failure policy auditable.
type OperationOutcome struct {
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message"`
	Steps   []StepResult  `json:"steps"`

	// DeletedOfficer is populated for officer-removal outcomes.
	DeletedOfficer *DeletedOfficer `json:"deleted_officer,omitempty"`

	// AssignmentID, OfficerName, and ComplaintNumber are populated for
	// assignment outcomes.
	AssignmentID    string `json:"assignment_id,omitempty"`
	OfficerName     string `json:"officer_name,omitempty"`
	ComplaintNumber string `json:"complaint_number,omitempty"`
}

// Warnings returns the details of every warning-level step, in step order.
func (o *OperationOutcome) Warnings() []string {
	var out []string
	for _, s := range o.Steps {
		if s.Status == StepWarning {
			out = append(out, s.Detail)
		}
	}
	return out
}
