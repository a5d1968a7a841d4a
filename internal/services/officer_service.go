// Package services – OfficerService
//
// Officer-profile operations: today that is device-token registration for
// push delivery. Kept as its own service so the dispatcher's token lookup
// and the registration path share one store contract.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mkamau/cybercase-backend/internal/repo"
)

// OfficerRepo defines the repository contract required by OfficerService.
type OfficerRepo interface {
	// UpdateDeviceToken stores (or clears, when token is empty) the
	// officer's push delivery token.
	UpdateDeviceToken(ctx context.Context, db *gorm.DB, officerID, token string) error
}

// OfficerService provides officer-profile operations.
type OfficerService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the officer repository.
	Repo OfficerRepo
}

// NewOfficerService constructs an OfficerService.
func NewOfficerService(db *gorm.DB, r OfficerRepo) *OfficerService {
	return &OfficerService{DB: db, Repo: r}
}

// RegisterDeviceToken stores the officer's push token. An empty token clears
// the registration, which makes subsequent dispatches skip this officer.
func (s *OfficerService) RegisterDeviceToken(ctx context.Context, officerID, token string) error {
	if strings.TrimSpace(officerID) == "" {
		return ErrInvalidRequest
	}
	err := s.Repo.UpdateDeviceToken(ctx, s.DB, officerID, strings.TrimSpace(token))
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOfficerNotFound
	}
	return err
}
