package draftRepo

import (
	"context"
	"errors"

	"estuary/models"
)

var (
	ErrDraftNotFound    = errors.New("wizard session not found")
	ErrConcurrentUpdate = errors.New("wizard session version conflict")
)

// DraftRepository stores wizard sessions.
type DraftRepository interface {
	// Create inserts a new session at version 1.
	Create(ctx context.Context, s *models.WizardSession) error
	GetByID(ctx context.Context, id string) (*models.WizardSession, error)
	// Update replaces the session if its version is unchanged since it was read,
	// then bumps s.Version.
	Update(ctx context.Context, s *models.WizardSession) error
	Delete(ctx context.Context, id string) error
	// ListByPractitioner returns the practitioner's sessions, newest first.
	ListByPractitioner(ctx context.Context, practitionerID string) ([]models.WizardSession, error)
}
