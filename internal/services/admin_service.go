// Package services – AdminService
//
// This file implements the dual-system mutation coordinator for
// administrative operations that must touch the identity provider and the
// datastore without a distributed transaction. The policy contract:
//
//   - Identity-side effects are a courtesy: their failure degrades the
//     outcome to "partial" (a warning step) but never blocks the operation.
//   - Datastore-side effects are authoritative: their failure is fatal and
//     the operation reports failure, never a hollow success.
//   - Verification and validation happen before any side effect.
//
// The per-step policy is visible in domain.StepResult values rather than
// buried in nested error handling.
//
// Observability: public methods are OpenTelemetry-instrumented; identity
// cleanup failures are additionally counted in Prometheus so operators can
// alert on identity/datastore drift without a durable audit table.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/domain"
	"github.com/mkamau/cybercase-backend/internal/identity"
	"github.com/mkamau/cybercase-backend/internal/repo"
)

// defaultAssignmentNote is recorded when an assignment request carries no note.
const defaultAssignmentNote = "Case assigned by administrator"

// Step names reported in OperationOutcome.Steps.
const (
	stepVerifyCaller    = "verify_caller"
	stepFetchOfficer    = "fetch_officer"
	stepDeleteIdentity  = "delete_identity"
	stepDeleteOfficer   = "delete_officer"
	stepAssignComplaint = "assign_complaint"
)

// identityCleanupFailures counts courtesy identity deletions that failed and
// were tolerated. A growing value means identity-side records are drifting
// from the datastore.
var identityCleanupFailures = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "identity_cleanup_failures_total",
	Help: "Identity-provider deletions that failed during officer removal.",
})

func init() {
	prometheus.MustRegister(identityCleanupFailures)
}

// AdminStore defines the datastore contract required by AdminService.
type AdminStore interface {
	// GetOfficer fetches an officer row by ID.
	GetOfficer(ctx context.Context, db *gorm.DB, id string) (*domain.Officer, error)

	// DeleteOfficer removes the officer row. This is the authoritative step.
	DeleteOfficer(ctx context.Context, db *gorm.DB, id string) error

	// AssignComplaint runs the atomic assignment procedure.
	AssignComplaint(ctx context.Context, db *gorm.DB, complaintID, officerID, adminID, notes string) (*repo.AssignOutcome, error)
}

// AdminService coordinates administrative mutations across the identity
// provider and the datastore.
type AdminService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the datastore-side repository.
	Store AdminStore
	// Identity is the external identity provider.
	Identity identity.Provider
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB, store AdminStore, idp identity.Provider) *AdminService {
	return &AdminService{DB: db, Store: store, Identity: idp}
}

// DeleteOfficer removes an officer from both systems of record.
//
// Ordering and failure policy (the core contract; preserve exactly):
//  1. Verify callerToken; invalid → ErrUnauthorized, no side effects.
//  2. Fetch the officer row; absent → ErrOfficerNotFound, no side effects.
//     The fetch happens before any deletion so the outcome can report the
//     officer's identity after the row is gone.
//  3. If the row carries an identity UID, delete the identity. Failure here
//     is a warning, not an error: the identity record may already be gone,
//     and the durable row must not become undeletable because the identity
//     side is inconsistent.
//  4. Delete the officer row. Failure here is fatal: the returned outcome is
//     OutcomeFailure alongside an UpstreamError.
//
// On success the outcome is OutcomeSuccess when every executed step passed
// and OutcomePartial when identity cleanup failed; both populate
// DeletedOfficer.
func (s *AdminService) DeleteOfficer(ctx context.Context, officerID, callerToken string) (*domain.OperationOutcome, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "DeleteOfficer",
		trace.WithAttributes(attribute.String("officer.id", officerID)),
	)
	defer span.End()

	out := &domain.OperationOutcome{}

	// 1) Caller must be authenticated before anything else happens.
	principal, err := s.Identity.VerifyToken(ctx, callerToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, ErrUnauthorized
		}
		return nil, &UpstreamError{Provider: "identity", Err: err}
	}
	out.Steps = append(out.Steps, domain.StepResult{Name: stepVerifyCaller, Status: domain.StepOK})

	// 2) Fetch before delete so the outcome can still name the officer.
	off, err := s.Store.GetOfficer(ctx, s.DB, officerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOfficerNotFound
		}
		return nil, &UpstreamError{Provider: "datastore", Err: err}
	}
	out.Steps = append(out.Steps, domain.StepResult{Name: stepFetchOfficer, Status: domain.StepOK})

	// 3) Courtesy identity cleanup; never fatal.
	identityClean := true
	switch {
	case off.FirebaseUID == "":
		out.Steps = append(out.Steps, domain.StepResult{
			Name:   stepDeleteIdentity,
			Status: domain.StepSkipped,
			Detail: "officer has no identity-provider account",
		})
	default:
		if err := s.Identity.DeleteIdentity(ctx, off.FirebaseUID); err != nil {
			identityClean = false
			identityCleanupFailures.Inc()
			log.Warn().
				Err(err).
				Str("officer_id", off.ID).
				Str("firebase_uid", off.FirebaseUID).
				Str("admin_uid", principal.UID).
				Msg("identity deletion failed; continuing with datastore delete")
			out.Steps = append(out.Steps, domain.StepResult{
				Name:   stepDeleteIdentity,
				Status: domain.StepWarning,
				Detail: fmt.Sprintf("identity deletion failed: %v", err),
			})
		} else {
			out.Steps = append(out.Steps, domain.StepResult{Name: stepDeleteIdentity, Status: domain.StepOK})
		}
	}

	// 4) Authoritative datastore delete; fatal on failure.
	if err := s.Store.DeleteOfficer(ctx, s.DB, officerID); err != nil {
		out.Status = domain.OutcomeFailure
		out.Message = fmt.Sprintf("failed to delete officer record: %v", err)
		out.Steps = append(out.Steps, domain.StepResult{
			Name:   stepDeleteOfficer,
			Status: domain.StepFatal,
			Detail: err.Error(),
		})
		return out, &UpstreamError{Provider: "datastore", Err: err}
	}
	out.Steps = append(out.Steps, domain.StepResult{Name: stepDeleteOfficer, Status: domain.StepOK})

	out.DeletedOfficer = &domain.DeletedOfficer{
		ID:          off.ID,
		Name:        off.Name,
		BadgeNumber: off.BadgeNumber,
		Email:       off.Email,
	}
	if identityClean {
		out.Status = domain.OutcomeSuccess
	} else {
		out.Status = domain.OutcomePartial
	}
	out.Message = fmt.Sprintf("Officer %s (badge %s) deleted", displayName(off.Name), off.BadgeNumber)
	return out, nil
}

// AssignCase assigns a complaint to an officer via the datastore's atomic
// assignment procedure.
//
// Validation is all-or-nothing: every required identifier is checked before
// any remote call. The procedure's atomicity belongs to the datastore; this
// method only interprets the result, distinguishing a structural failure
// (UpstreamError) from an embedded business refusal (DomainRejection).
func (s *AdminService) AssignCase(ctx context.Context, complaintID, officerID, adminID, notes string) (*domain.OperationOutcome, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "AssignCase",
		trace.WithAttributes(
			attribute.String("complaint.id", complaintID),
			attribute.String("officer.id", officerID),
		),
	)
	defer span.End()

	if strings.TrimSpace(complaintID) == "" ||
		strings.TrimSpace(officerID) == "" ||
		strings.TrimSpace(adminID) == "" {
		return nil, ErrInvalidRequest
	}

	if strings.TrimSpace(notes) == "" {
		notes = defaultAssignmentNote
	}

	res, err := s.Store.AssignComplaint(ctx, s.DB, complaintID, officerID, adminID, notes)
	if err != nil {
		return nil, &UpstreamError{Provider: "datastore", Err: err}
	}
	if !res.Success {
		return nil, &DomainRejection{Reason: res.Reason}
	}

	out := &domain.OperationOutcome{
		Status:          domain.OutcomeSuccess,
		AssignmentID:    res.AssignmentID,
		OfficerName:     res.OfficerName,
		ComplaintNumber: res.ComplaintNumber,
		Message: fmt.Sprintf("Case %s assigned to %s",
			res.ComplaintNumber, displayName(res.OfficerName)),
		Steps: []domain.StepResult{
			{Name: stepAssignComplaint, Status: domain.StepOK},
		},
	}
	return out, nil
}

// displayName cleans up officer names that arrive from legacy imports in all
// lower or all upper case; mixed-case names pass through untouched.
func displayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return trimmed
	}
	if trimmed == strings.ToLower(trimmed) || trimmed == strings.ToUpper(trimmed) {
		return cases.Title(language.English).String(strings.ToLower(trimmed))
	}
	return trimmed
}
