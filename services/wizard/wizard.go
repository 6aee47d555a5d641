// Package wizard hosts the multi-phase service creation flow: the draft,
// its step graph and validation, type-specific editors and submission.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	draftRepo "estuary/database/repository/draft"
	"estuary/models"
	"estuary/services/notify"
	"estuary/services/storage"
)

// ServiceAPI is the part of the Estuary API the wizard writes to.
type ServiceAPI interface {
	GetService(ctx context.Context, id string) (*models.ServiceRecord, error)
	CreateService(ctx context.Context, req models.ServiceRequest) (*models.ServiceRecord, error)
	UpdateService(ctx context.Context, id string, req models.ServiceRequest) (*models.ServiceRecord, error)
}

// Catalog supplies the services and practitioners a draft may reference.
type Catalog interface {
	SessionServices(ctx context.Context, practitionerID string) ([]models.ServiceSummary, error)
	SearchPractitioners(ctx context.Context, query string) ([]models.PractitionerSummary, error)
	InvalidateServices(ctx context.Context, practitionerID string) error
}

type FileUploader interface {
	Upload(ctx context.Context, f *storage.File, kind models.UploadKind, rt models.ResourceType) (*models.UploadedFile, error)
}

type Options struct {
	// KeepStaleSubstate keeps bundle, package and schedule state when the
	// service type changes, so switching back restores it.
	KeepStaleSubstate bool
	Now               func() time.Time
}

type Service struct {
	repo     draftRepo.DraftRepository
	api      ServiceAPI
	catalog  Catalog
	uploader FileUploader
	notifier notify.Notifier
	logger   *zap.Logger
	opts     Options
}

func NewService(repo draftRepo.DraftRepository, api ServiceAPI, catalog Catalog, uploader FileUploader,
	notifier notify.Notifier, logger *zap.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:     repo,
		api:      api,
		catalog:  catalog,
		uploader: uploader,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, draftRepo.ErrDraftNotFound):
		return ErrSessionNotFound
	case errors.Is(err, draftRepo.ErrConcurrentUpdate):
		return ErrConcurrentUpdate
	}
	return err
}

func (s *Service) load(ctx context.Context, practitionerID, sessionID string) (*models.WizardSession, error) {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if sess.PractitionerID != practitionerID {
		return nil, ErrForbidden
	}
	return sess, nil
}

// submitClaimTTL bounds how long a submission holds a session. A claim left
// behind by a crashed request stops blocking edits after this.
const submitClaimTTL = 2 * time.Minute

// mutate applies fn to an editable session and persists the result.
// Nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, practitionerID, sessionID string, fn func(*models.WizardSession) error) (*models.WizardSession, error) {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.opts.Now().UTC()
	switch sess.Status {
	case models.WizardSubmitted:
		return nil, ErrSessionClosed
	case models.WizardSubmitting:
		if now.Sub(sess.UpdatedAt) < submitClaimTTL {
			return nil, ErrSubmitInProgress
		}
		s.logger.Warn("Wizard: releasing stale submission claim", zap.String("sessionID", sess.ID))
		sess.Status = models.WizardEditing
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = now
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, mapRepoErr(err)
	}
	return sess, nil
}

// Start opens a wizard session, empty or pre-populated from a service being edited.
func (s *Service) Start(ctx context.Context, practitionerID string, editingServiceID *string) (*models.WizardSession, error) {
	now := s.opts.Now().UTC()
	sess := &models.WizardSession{
		ID:              uuid.NewString(),
		PractitionerID:  practitionerID,
		Draft:           models.NewServiceDraft(),
		CurrentPhase:    1,
		MaxReachedPhase: 1,
		Status:          models.WizardEditing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if editingServiceID != nil && *editingServiceID != "" {
		rec, err := s.api.GetService(ctx, *editingServiceID)
		if err != nil {
			return nil, fmt.Errorf("load service %s: %w", *editingServiceID, err)
		}
		if rec.PractitionerID != "" && rec.PractitionerID != practitionerID {
			return nil, ErrForbidden
		}
		draft, err := draftFromService(ctx, rec, s.api.GetService)
		if err != nil {
			return nil, fmt.Errorf("load child services of %s: %w", rec.ID, err)
		}
		sess.Draft = draft
		sess.EditingServiceID = editingServiceID
		sess.MaxReachedPhase = TotalPhases(draft.ServiceType)
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("Wizard.Start: session opened",
		zap.String("sessionID", sess.ID),
		zap.String("practitionerID", practitionerID),
		zap.Bool("editing", sess.IsEditing()))
	return sess, nil
}

func (s *Service) Get(ctx context.Context, practitionerID, sessionID string) (*models.WizardSession, error) {
	return s.load(ctx, practitionerID, sessionID)
}

func (s *Service) List(ctx context.Context, practitionerID string) ([]models.WizardSession, error) {
	return s.repo.ListByPractitioner(ctx, practitionerID)
}

func (s *Service) Discard(ctx context.Context, practitionerID, sessionID string) error {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return err
	}
	if sess.Status == models.WizardSubmitting && s.opts.Now().UTC().Sub(sess.UpdatedAt) < submitClaimTTL {
		return ErrSubmitInProgress
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return mapRepoErr(err)
	}
	s.logger.Info("Wizard.Discard: session removed", zap.String("sessionID", sessionID))
	return nil
}

// SetField sets one scalar draft field from a loosely typed value.
func (s *Service) SetField(ctx context.Context, practitionerID, sessionID, field string, value interface{}) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		d := &sess.Draft
		if field == "price" && d.ServiceType == models.ServiceTypeBundle && d.Bundle != nil {
			if err := applyField(d, field, value); err != nil {
				return err
			}
			return overrideBundlePrice(d, d.Price)
		}
		if err := applyField(d, field, value); err != nil {
			return err
		}
		delete(sess.Errors, field)
		return nil
	})
}

// SetFields applies several fields at once; the first failure aborts all of them.
func (s *Service) SetFields(ctx context.Context, practitionerID, sessionID string, values map[string]interface{}) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		d := &sess.Draft
		for field, value := range values {
			if err := applyField(d, field, value); err != nil {
				return err
			}
			delete(sess.Errors, field)
		}
		if _, ok := values["price"]; ok && d.ServiceType == models.ServiceTypeBundle && d.Bundle != nil {
			return overrideBundlePrice(d, d.Price)
		}
		return nil
	})
}

// Replace swaps the whole draft. Bundle, package and revenue share state is
// owned by their editors and carried over from the stored draft; a type
// change goes through the same reset as SelectType.
func (s *Service) Replace(ctx context.Context, practitionerID, sessionID string, draft models.ServiceDraft) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		if draft.ServiceType != "" && !draft.ServiceType.Valid() {
			return ErrInvalidServiceType
		}
		prev := sess.Draft
		draft.Bundle = prev.Bundle
		draft.PackageSessions = prev.PackageSessions
		draft.PackageDiscount = prev.PackageDiscount
		draft.RevenueShares = prev.RevenueShares

		sess.Draft = draft
		d := &sess.Draft
		if prev.ServiceType != d.ServiceType {
			if !s.opts.KeepStaleSubstate {
				clearForeignSubstate(d)
			}
			resetPhases(sess)
		}
		if prev.ServiceType == d.ServiceType && d.ServiceType == models.ServiceTypeBundle && d.Bundle != nil && d.Price != prev.Price {
			if err := overrideBundlePrice(d, d.Price); err != nil {
				return err
			}
		}
		normalize(d)
		clampPhases(sess)
		sess.Errors = nil
		return nil
	})
}

// SelectType sets the service type, returns to phase 1 and clears sub-state
// that belongs to other types.
func (s *Service) SelectType(ctx context.Context, practitionerID, sessionID string, t models.ServiceType) (*models.WizardSession, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServiceType, t)
	}
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		if sess.Draft.ServiceType == t {
			return nil
		}
		from := sess.Draft.ServiceType
		sess.Draft.ServiceType = t
		if !s.opts.KeepStaleSubstate {
			clearForeignSubstate(&sess.Draft)
		}
		if t == models.ServiceTypePackage {
			syncPackage(&sess.Draft)
		}
		resetPhases(sess)
		s.logger.Debug("Wizard.SelectType: type changed",
			zap.String("sessionID", sess.ID), zap.String("from", string(from)), zap.String("to", string(t)))
		return nil
	})
}

func resetPhases(sess *models.WizardSession) {
	sess.CurrentPhase = 1
	sess.MaxReachedPhase = 1
	sess.Errors = nil
}

func clampPhases(sess *models.WizardSession) {
	total := TotalPhases(sess.Draft.ServiceType)
	if sess.MaxReachedPhase > total {
		sess.MaxReachedPhase = total
	}
	if sess.MaxReachedPhase < 1 {
		sess.MaxReachedPhase = 1
	}
	if sess.CurrentPhase > sess.MaxReachedPhase || sess.CurrentPhase < 1 {
		sess.CurrentPhase = sess.MaxReachedPhase
	}
}

func clearForeignSubstate(d *models.ServiceDraft) {
	if d.ServiceType != models.ServiceTypeBundle {
		d.Bundle = nil
	}
	if d.ServiceType != models.ServiceTypePackage {
		d.PackageSessions = nil
		d.PackageDiscount = models.DefaultPackageDiscount
	}
	if !d.ServiceType.HasSchedule() {
		d.WorkshopSessions = nil
	}
}

// normalize re-establishes derived values after a whole-draft replace.
func normalize(d *models.ServiceDraft) {
	reindexBenefits(d.Benefits)
	reindexResources(d.Resources)
	reindexWorkshopSessions(d.WorkshopSessions)
	reindexPackageSessions(d.PackageSessions)
	switch d.ServiceType {
	case models.ServiceTypeBundle:
		if d.Bundle != nil {
			d.Price = repriceBundle(d)
		}
	case models.ServiceTypePackage:
		syncPackage(d)
	}
}

// Steps describes the resolved step graph and progress.
func (s *Service) Steps(ctx context.Context, practitionerID, sessionID string) (StepsView, error) {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return StepsView{}, err
	}
	return StepsOf(sess), nil
}

// ValidatePhase checks a phase without moving or storing anything. Phase 0
// means the current phase.
func (s *Service) ValidatePhase(ctx context.Context, practitionerID, sessionID string, phase int) (bool, map[string]string, error) {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return false, nil, err
	}
	if phase == 0 {
		phase = sess.CurrentPhase
	}
	ok, errs := Validate(phase, sess.Draft.ServiceType, &sess.Draft)
	return ok, errs, nil
}

// Advance validates the current phase and moves forward. On failure the
// error map is stored on the session and returned as a *ValidationError
// together with the session.
func (s *Service) Advance(ctx context.Context, practitionerID, sessionID string) (*models.WizardSession, error) {
	var failed *ValidationError
	sess, err := s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		total := TotalPhases(sess.Draft.ServiceType)
		ok, errs := Validate(sess.CurrentPhase, sess.Draft.ServiceType, &sess.Draft)
		if !ok {
			sess.Errors = errs
			failed = &ValidationError{Phase: sess.CurrentPhase, Fields: errs}
			return nil
		}
		if sess.CurrentPhase >= total {
			return ErrNoNextPhase
		}
		sess.Errors = nil
		sess.CurrentPhase++
		if sess.CurrentPhase > sess.MaxReachedPhase {
			sess.MaxReachedPhase = sess.CurrentPhase
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if failed != nil {
		return sess, failed
	}
	return sess, nil
}

// GoTo revisits any phase already reached.
func (s *Service) GoTo(ctx context.Context, practitionerID, sessionID string, phase int) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		if phase < 1 || phase > sess.MaxReachedPhase || phase > TotalPhases(sess.Draft.ServiceType) {
			return fmt.Errorf("%w: %d (reached %d)", ErrInvalidPhase, phase, sess.MaxReachedPhase)
		}
		sess.CurrentPhase = phase
		sess.Errors = nil
		return nil
	})
}

func (s *Service) Back(ctx context.Context, practitionerID, sessionID string) (*models.WizardSession, error) {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.GoTo(ctx, practitionerID, sessionID, sess.CurrentPhase-1)
}
