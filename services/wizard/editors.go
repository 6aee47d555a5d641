package wizard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"estuary/models"
	"estuary/services/notify"
	"estuary/services/revenue"
	"estuary/services/storage"
)

func (s *Service) AddBenefit(ctx context.Context, practitionerID, sessionID string, in BenefitInput) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		_, err := addBenefit(&sess.Draft, in)
		return err
	})
}

func (s *Service) UpdateBenefit(ctx context.Context, practitionerID, sessionID, benefitID string, in BenefitInput) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		return updateBenefit(&sess.Draft, benefitID, in)
	})
}

func (s *Service) RemoveBenefit(ctx context.Context, practitionerID, sessionID, benefitID string) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		return removeBenefit(&sess.Draft, benefitID)
	})
}

func (s *Service) MoveBenefit(ctx context.Context, practitionerID, sessionID string, from, to int) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		return moveBenefit(&sess.Draft, from, to)
	})
}

func (s *Service) AddWorkshopSession(ctx context.Context, practitionerID, sessionID string, in WorkshopSessionInput) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		if _, err := addWorkshopSession(&sess.Draft, in); err != nil {
			return err
		}
		delete(sess.Errors, "workshopSessions")
		return nil
	})
}

func (s *Service) RemoveWorkshopSession(ctx context.Context, practitionerID, sessionID, id string) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		return removeWorkshopSession(&sess.Draft, id)
	})
}

func (s *Service) MoveWorkshopSession(ctx context.Context, practitionerID, sessionID string, from, to int) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		return moveWorkshopSession(&sess.Draft, from, to)
	})
}

// AddLinkResource attaches an external link; no file is involved.
func (s *Service) AddLinkResource(ctx context.Context, practitionerID, sessionID string, in ResourceInput) (*models.WizardSession, error) {
	if in.ResourceType != models.ResourceLink {
		return nil, fieldError("file", "Upload a file for this resource")
	}
	r, err := newResource(in)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		appendResource(&sess.Draft, r)
		return nil
	})
}

// UploadResource validates and uploads a file, then attaches it as a resource.
// Metadata is checked first so a bad form never costs an upload.
func (s *Service) UploadResource(ctx context.Context, practitionerID, sessionID string, in ResourceInput, f *storage.File) (*models.WizardSession, error) {
	if _, err := s.load(ctx, practitionerID, sessionID); err != nil {
		return nil, err
	}
	r, err := newResource(in)
	if err != nil {
		return nil, err
	}
	uploaded, err := s.upload(ctx, f, models.UploadResource, in.ResourceType)
	if err != nil {
		return nil, err
	}
	r.FileURL = &uploaded.URL
	if uploaded.MediaID != "" {
		r.MediaID = &uploaded.MediaID
	}
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		appendResource(&sess.Draft, r)
		return nil
	})
}

func (s *Service) RemoveResource(ctx context.Context, practitionerID, sessionID, resourceID string) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		return removeResource(&sess.Draft, resourceID)
	})
}

func (s *Service) MoveResource(ctx context.Context, practitionerID, sessionID string, from, to int) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		return moveResource(&sess.Draft, from, to)
	})
}

// UploadCoverImage uploads the service image and stores its URL on the draft.
func (s *Service) UploadCoverImage(ctx context.Context, practitionerID, sessionID string, f *storage.File) (*models.WizardSession, error) {
	if _, err := s.load(ctx, practitionerID, sessionID); err != nil {
		return nil, err
	}
	uploaded, err := s.upload(ctx, f, models.UploadImage, "")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		sess.Draft.CoverImageURL = &uploaded.URL
		delete(sess.Errors, "coverImageUrl")
		return nil
	})
}

func (s *Service) upload(ctx context.Context, f *storage.File, kind models.UploadKind, rt models.ResourceType) (*models.UploadedFile, error) {
	uploaded, err := s.uploader.Upload(ctx, f, kind, rt)
	if err != nil {
		s.notifier.Notify(ctx, notify.Error("Upload failed", uploadMessage(err)))
		return nil, err
	}
	s.notifier.Notify(ctx, notify.Success("File uploaded", f.Name))
	return uploaded, nil
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrEmptyFile), errors.Is(err, storage.ErrLinkHasNoFile):
		return err.Error()
	}
	return "The file could not be uploaded. Please try again."
}

// CoPractitionerInput identifies a practitioner to share revenue with.
// Query defaults to the id when the client did not keep its search term.
type CoPractitionerInput struct {
	PractitionerID string `json:"practitionerId"`
	Query          string `json:"query"`
	Role           string `json:"role"`
}

func (s *Service) AddCoPractitioner(ctx context.Context, practitionerID, sessionID string, in CoPractitionerInput) (*models.WizardSession, error) {
	query := in.Query
	if query == "" {
		query = in.PractitionerID
	}
	hits, err := s.catalog.SearchPractitioners(ctx, query)
	if err != nil {
		return nil, err
	}
	idx := indexOf(hits, func(p models.PractitionerSummary) bool { return p.ID == in.PractitionerID })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPractitionerLookup, in.PractitionerID)
	}
	return s.revenueEdit(ctx, practitionerID, sessionID, func(a *revenue.Allocator) error {
		return a.Add(hits[idx], in.Role)
	})
}

func (s *Service) RemoveCoPractitioner(ctx context.Context, practitionerID, sessionID, coPractitionerID string) (*models.WizardSession, error) {
	return s.revenueEdit(ctx, practitionerID, sessionID, func(a *revenue.Allocator) error {
		return a.Remove(coPractitionerID)
	})
}

// SetRevenueShare moves one participant's slider. When the value would push
// the total past 100 it is stored capped and a *ValidationError is returned
// with the session.
func (s *Service) SetRevenueShare(ctx context.Context, practitionerID, sessionID, coPractitionerID string, value int) (*models.WizardSession, error) {
	var capped *ValidationError
	sess, err := s.revenueEdit(ctx, practitionerID, sessionID, func(a *revenue.Allocator) error {
		err := a.Set(coPractitionerID, value)
		if errors.Is(err, revenue.ErrShareExceeded) {
			capped = fieldError("revenueShares."+coPractitionerID, err.Error())
			return nil
		}
		if errors.Is(err, revenue.ErrInvalidShare) {
			return fieldError("revenueShares."+coPractitionerID, err.Error())
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if capped != nil {
		return sess, capped
	}
	return sess, nil
}

func (s *Service) DistributeRevenueEvenly(ctx context.Context, practitionerID, sessionID string) (*models.WizardSession, error) {
	return s.revenueEdit(ctx, practitionerID, sessionID, func(a *revenue.Allocator) error {
		a.DistributeEvenly()
		return nil
	})
}

func (s *Service) revenueEdit(ctx context.Context, practitionerID, sessionID string, fn func(a *revenue.Allocator) error) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		a := revenue.NewAllocator(sess.PractitionerID, sess.Draft.RevenueShares)
		if err := fn(a); err != nil {
			return err
		}
		sess.Draft.RevenueShares = a.Shares()
		delete(sess.Errors, "revenueShares")
		s.logger.Debug("Wizard.revenue: shares updated",
			zap.String("sessionID", sess.ID), zap.Int("primaryShare", a.PrimaryShare()))
		return nil
	})
}

// RevenueView is the allocator state shown next to the sliders.
type RevenueView struct {
	PrimaryShare int                   `json:"primaryShare"`
	Shares       []models.RevenueShare `json:"shares"`
}

func RevenueSummary(sess *models.WizardSession) RevenueView {
	a := revenue.NewAllocator(sess.PractitionerID, sess.Draft.RevenueShares)
	return RevenueView{PrimaryShare: a.PrimaryShare(), Shares: a.Shares()}
}
