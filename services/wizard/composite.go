package wizard

import (
	"context"
	"fmt"

	"estuary/models"
	"estuary/services/pricing"
)

// DefaultBundleSessions is used when a bundle's session service is first chosen.
const DefaultBundleSessions = 5

func repriceBundle(d *models.ServiceDraft) float64 {
	return pricing.Reprice(d.Bundle, d.Price)
}

func overrideBundlePrice(d *models.ServiceDraft, price float64) error {
	if price < 0 {
		return fieldError("price", "Price cannot be negative")
	}
	d.Bundle.PriceOverridden = true
	d.Price = pricing.RoundCents(price)
	return nil
}

// syncPackage mirrors the derived package values into the draft's base fields.
func syncPackage(d *models.ServiceDraft) {
	q := pricing.QuotePackage(d.PackageSessions, d.PackageDiscount)
	d.PackageDiscount = q.Discount
	d.Price = q.FinalPrice
	d.DurationMinutes = q.TotalDuration
	d.MaxParticipants = q.MaxParticipants
	d.MinParticipants = 1
}

func requireType(d *models.ServiceDraft, t models.ServiceType) error {
	if d.ServiceType != t {
		return fmt.Errorf("%w: expected %s, draft is %q", ErrWrongServiceType, t, d.ServiceType)
	}
	return nil
}

func (s *Service) eligibleSession(ctx context.Context, practitionerID, serviceID string) (models.ServiceSummary, error) {
	sessions, err := s.catalog.SessionServices(ctx, practitionerID)
	if err != nil {
		return models.ServiceSummary{}, err
	}
	for _, svc := range sessions {
		if svc.ID == serviceID {
			return svc, nil
		}
	}
	return models.ServiceSummary{}, fmt.Errorf("%w: %s", ErrServiceNotEligible, serviceID)
}

// SetBundleService picks the session service a bundle is made of.
func (s *Service) SetBundleService(ctx context.Context, practitionerID, sessionID, serviceID string) (*models.WizardSession, error) {
	return s.SetBundle(ctx, practitionerID, sessionID, &serviceID, nil)
}

// SetBundle applies a session service choice and a session count in one
// write. Either may be nil.
func (s *Service) SetBundle(ctx context.Context, practitionerID, sessionID string, serviceID *string, sessions *int) (*models.WizardSession, error) {
	var svc *models.ServiceSummary
	if serviceID != nil && *serviceID != "" {
		sess, err := s.load(ctx, practitionerID, sessionID)
		if err != nil {
			return nil, err
		}
		if err := requireType(&sess.Draft, models.ServiceTypeBundle); err != nil {
			return nil, err
		}
		found, err := s.eligibleSession(ctx, practitionerID, *serviceID)
		if err != nil {
			return nil, err
		}
		svc = &found
	}
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		d := &sess.Draft
		if err := requireType(d, models.ServiceTypeBundle); err != nil {
			return err
		}
		if svc != nil {
			n := DefaultBundleSessions
			if d.Bundle != nil && d.Bundle.SessionsIncluded > 0 {
				n = d.Bundle.SessionsIncluded
			}
			d.Bundle = &models.BundleConfig{
				SessionServiceID: svc.ID,
				SessionName:      svc.Name,
				PricePerSession:  svc.Price,
				SessionsIncluded: n,
			}
			if d.DurationMinutes == 0 {
				d.DurationMinutes = svc.DurationMinutes
			}
			delete(sess.Errors, "bundle.sessionServiceId")
		}
		if sessions != nil {
			if d.Bundle == nil {
				return fieldError("bundle.sessionServiceId", "Choose the session this bundle is made of")
			}
			d.Bundle.SessionsIncluded = pricing.ClampSessions(*sessions)
		}
		if d.Bundle != nil {
			d.Price = repriceBundle(d)
		}
		return nil
	})
}

func (s *Service) bundleEdit(ctx context.Context, practitionerID, sessionID string, fn func(d *models.ServiceDraft) error) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		d := &sess.Draft
		if err := requireType(d, models.ServiceTypeBundle); err != nil {
			return err
		}
		if d.Bundle == nil {
			return fieldError("bundle.sessionServiceId", "Choose the session this bundle is made of")
		}
		return fn(d)
	})
}

// SetSessionsIncluded clamps n to the bundle bounds and refreshes the suggestion.
func (s *Service) SetSessionsIncluded(ctx context.Context, practitionerID, sessionID string, n int) (*models.WizardSession, error) {
	return s.bundleEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		d.Bundle.SessionsIncluded = pricing.ClampSessions(n)
		d.Price = repriceBundle(d)
		return nil
	})
}

// SetBundlePrice overrides the suggested price; the discount is then derived from it.
func (s *Service) SetBundlePrice(ctx context.Context, practitionerID, sessionID string, price float64) (*models.WizardSession, error) {
	return s.bundleEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		return overrideBundlePrice(d, price)
	})
}

// SetBundleDiscount moves the discount slider, which sets the price.
func (s *Service) SetBundleDiscount(ctx context.Context, practitionerID, sessionID string, discount int) (*models.WizardSession, error) {
	return s.bundleEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		regular := pricing.QuoteBundle(d.Bundle.PricePerSession, d.Bundle.SessionsIncluded).RegularTotal
		return overrideBundlePrice(d, pricing.PriceForDiscount(regular, discount))
	})
}

// ResetBundlePrice drops the override and restores the suggested price.
func (s *Service) ResetBundlePrice(ctx context.Context, practitionerID, sessionID string) (*models.WizardSession, error) {
	return s.bundleEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		d.Bundle.PriceOverridden = false
		d.Price = repriceBundle(d)
		return nil
	})
}

// AddPackageSession appends one of the practitioner's session services to a package.
func (s *Service) AddPackageSession(ctx context.Context, practitionerID, sessionID, serviceID string) (*models.WizardSession, error) {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireType(&sess.Draft, models.ServiceTypePackage); err != nil {
		return nil, err
	}
	svc, err := s.eligibleSession(ctx, practitionerID, serviceID)
	if err != nil {
		return nil, err
	}
	return s.packageEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		if indexOf(d.PackageSessions, func(p models.PackageSessionItem) bool { return p.ServiceID == serviceID }) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateSession, serviceID)
		}
		d.PackageSessions = append(d.PackageSessions, models.PackageSessionItem{ServiceID: svc.ID, Service: svc})
		return nil
	})
}

func (s *Service) RemovePackageSession(ctx context.Context, practitionerID, sessionID, serviceID string) (*models.WizardSession, error) {
	return s.packageEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		i := indexOf(d.PackageSessions, func(p models.PackageSessionItem) bool { return p.ServiceID == serviceID })
		if i < 0 {
			return fmt.Errorf("%w: package session %s", ErrItemNotFound, serviceID)
		}
		d.PackageSessions = removeAt(d.PackageSessions, i)
		return nil
	})
}

func (s *Service) MovePackageSession(ctx context.Context, practitionerID, sessionID string, from, to int) (*models.WizardSession, error) {
	return s.packageEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		out, err := move(d.PackageSessions, from, to)
		if err != nil {
			return err
		}
		d.PackageSessions = out
		return nil
	})
}

// SetPackageDiscount is the only way to change a package's price.
func (s *Service) SetPackageDiscount(ctx context.Context, practitionerID, sessionID string, discount int) (*models.WizardSession, error) {
	return s.packageEdit(ctx, practitionerID, sessionID, func(d *models.ServiceDraft) error {
		d.PackageDiscount = pricing.ClampDiscount(discount)
		return nil
	})
}

func (s *Service) packageEdit(ctx context.Context, practitionerID, sessionID string, fn func(d *models.ServiceDraft) error) (*models.WizardSession, error) {
	return s.mutate(ctx, practitionerID, sessionID, func(sess *models.WizardSession) error {
		d := &sess.Draft
		if err := requireType(d, models.ServiceTypePackage); err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		reindexPackageSessions(d.PackageSessions)
		syncPackage(d)
		delete(sess.Errors, "packageSessions")
		return nil
	})
}

// BundlePricing is the bundle editor's view of its price.
type BundlePricing struct {
	pricing.BundleQuote
	Price                 float64 `json:"price"`
	PriceOverridden       bool    `json:"priceOverridden"`
	ActualDiscountPercent float64 `json:"actualDiscountPercent"`
}

type PricingView struct {
	ServiceType models.ServiceType    `json:"serviceType"`
	Price       float64               `json:"price"`
	Bundle      *BundlePricing        `json:"bundle,omitempty"`
	Package     *pricing.PackageQuote `json:"package,omitempty"`
}

// Pricing derives the current pricing figures without changing the session.
func (s *Service) Pricing(ctx context.Context, practitionerID, sessionID string) (PricingView, error) {
	sess, err := s.load(ctx, practitionerID, sessionID)
	if err != nil {
		return PricingView{}, err
	}
	return PricingOf(&sess.Draft), nil
}

// PricingOf derives the pricing figures shown for a draft.
func PricingOf(d *models.ServiceDraft) PricingView {
	view := PricingView{ServiceType: d.ServiceType, Price: d.Price}
	switch d.ServiceType {
	case models.ServiceTypeBundle:
		if d.Bundle == nil {
			break
		}
		q := pricing.QuoteBundle(d.Bundle.PricePerSession, d.Bundle.SessionsIncluded)
		view.Bundle = &BundlePricing{
			BundleQuote:           q,
			Price:                 d.Price,
			PriceOverridden:       d.Bundle.PriceOverridden,
			ActualDiscountPercent: pricing.ActualDiscountPercent(q.RegularTotal, d.Price),
		}
	case models.ServiceTypePackage:
		q := pricing.QuotePackage(d.PackageSessions, d.PackageDiscount)
		view.Package = &q
		view.Price = q.FinalPrice
	}
	return view
}
