package wizard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"estuary/models"
	"estuary/services/assembler"
	"estuary/services/estuary"
	"estuary/services/notify"
)

// Preview returns the request body a submission would send right now.
func (s *Service) Preview(ctx context.Context, practitionerID, sessionID string) (models.ServiceRequest, error) {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	return assembler.Assemble(sess.Draft), nil
}

// validateAll returns the first phase that does not pass, or nil.
func validateAll(d *models.ServiceDraft) *ValidationError {
	for phase := 1; phase <= TotalPhases(d.ServiceType); phase++ {
		if ok, errs := Validate(phase, d.ServiceType, d); !ok {
			return &ValidationError{Phase: phase, Fields: errs}
		}
	}
	return nil
}

// Submit creates or updates the service. The session is claimed before the
// API call so a second submission of the same session gets ErrSubmitInProgress
// instead of creating the service twice. The session stays on its current
// phase with every value intact if validation or the API call fails.
func (s *Service) Submit(ctx context.Context, practitionerID, sessionID string) (*models.WizardSession, *models.ServiceRecord, error) {
	var invalid *ValidationError
	claimed, err := s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		if invalid = validateAll(&sess.Draft); invalid != nil {
			sess.Errors = invalid.Fields
			return nil
		}
		sess.Status = models.WizardSubmitting
		sess.Errors = nil
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if invalid != nil {
		s.notifier.Notify(ctx, notify.Error("Please review your service", fmt.Sprintf("Step %d needs attention", invalid.Phase)))
		return claimed, nil, invalid
	}

	req := assembler.Assemble(claimed.Draft)
	var rec *models.ServiceRecord
	if claimed.IsEditing() {
		rec, err = s.api.UpdateService(ctx, *claimed.EditingServiceID, req)
	} else {
		rec, err = s.api.CreateService(ctx, req)
	}
	if err != nil {
		s.logger.Error("Wizard.Submit: API rejected service",
			zap.String("sessionID", claimed.ID), zap.String("serviceType", string(claimed.Draft.ServiceType)), zap.Error(err))
		s.notifier.Notify(ctx, notify.Error("Could not save service", apiMessage(err)))
		released, rerr := s.settle(ctx, claimed, models.WizardEditing, nil)
		if rerr != nil {
			s.logger.Error("Wizard.Submit: could not release session", zap.String("sessionID", claimed.ID), zap.Error(rerr))
			released = claimed
		}
		return released, nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	if err := s.catalog.InvalidateServices(ctx, practitionerID); err != nil {
		s.logger.Warn("Wizard.Submit: cache invalidation failed", zap.String("practitionerID", practitionerID), zap.Error(err))
	}

	stored, err := s.settle(ctx, claimed, models.WizardSubmitted, &rec.ID)
	if err != nil {
		// The service exists upstream; only the bookkeeping failed.
		s.logger.Error("Wizard.Submit: could not mark session submitted", zap.String("sessionID", sessionID), zap.Error(err))
		stored = claimed
		stored.Status = models.WizardSubmitted
		stored.SubmittedServiceID = &rec.ID
	}

	verb := "created"
	if claimed.IsEditing() {
		verb = "updated"
	}
	s.notifier.Notify(ctx, notify.Success("Service "+verb, rec.Name))
	s.logger.Info("Wizard.Submit: service saved", zap.String("sessionID", sessionID), zap.String("serviceID", rec.ID))
	return stored, rec, nil
}

// settle ends a submission claim. The write is version checked against the
// claim, so it only lands if nothing else took the session over. It outlives
// a cancelled request so the claim is not left behind.
func (s *Service) settle(ctx context.Context, claimed *models.WizardSession, status models.WizardStatus, serviceID *string) (*models.WizardSession, error) {
	next := *claimed
	next.Status = status
	next.SubmittedServiceID = serviceID
	next.UpdatedAt = s.opts.Now().UTC()
	if err := s.repo.Update(context.WithoutCancel(ctx), &next); err != nil {
		return nil, mapRepoErr(err)
	}
	return &next, nil
}

func apiMessage(err error) string {
	var apiErr *estuary.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "The service could not be saved. Please try again."
}
