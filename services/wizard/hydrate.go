package wizard

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"estuary/models"
	"estuary/services/pricing"
)

// childLookup resolves a child service when the API did not embed it.
type childLookup func(ctx context.Context, id string) (*models.ServiceRecord, error)

// draftFromService pre-populates a draft from an existing service.
func draftFromService(ctx context.Context, rec *models.ServiceRecord, lookup childLookup) (models.ServiceDraft, error) {
	d := models.NewServiceDraft()
	d.ServiceType = rec.ServiceTypeCode
	d.Name = rec.Name
	d.ShortDescription = rec.ShortDescription
	d.Description = rec.Description
	d.Price = rec.PriceValue()
	d.DurationMinutes = rec.DurationMinutes
	d.MaxParticipants = rec.MaxParticipants
	d.MinParticipants = rec.MinParticipants
	if rec.LocationType.Valid() {
		d.LocationType = rec.LocationType
	}
	d.ModalityIDs = rec.ModalityIDs
	d.PractitionerCategoryID = rec.PractitionerCategoryID
	d.ScheduleID = rec.Schedule
	d.Includes = rec.Includes
	d.AgeMin = rec.AgeMin
	d.AgeMax = rec.AgeMax
	d.IsPublic = rec.IsPublic
	d.CoverImageURL = rec.ImageURL

	for i, b := range rec.Benefits {
		d.Benefits = append(d.Benefits, models.Benefit{
			ID: uuid.NewString(), Title: b.Title, Description: b.Description, Icon: b.Icon, Order: i,
		})
	}
	for i, r := range rec.Resources {
		d.Resources = append(d.Resources, models.Resource{
			ID:              uuid.NewString(),
			Title:           r.Title,
			Description:     r.Description,
			ResourceType:    models.ResourceType(r.ResourceType),
			FileURL:         r.FileURL,
			ExternalURL:     r.ExternalURL,
			MediaID:         r.MediaID,
			AccessLevel:     models.AccessLevel(r.AccessLevel),
			IsDownloadable:  r.IsDownloadable,
			AttachmentLevel: models.AttachmentLevel(r.AttachmentLevel),
			Order:           i,
		})
	}
	for i, s := range rec.Sessions {
		d.WorkshopSessions = append(d.WorkshopSessions, models.WorkshopSession{
			ID: uuid.NewString(), Title: s.Title, StartTime: s.StartTime, EndTime: s.EndTime, Order: i,
		})
	}
	for _, p := range rec.AdditionalPractitioners {
		d.RevenueShares = append(d.RevenueShares, models.RevenueShare{
			PractitionerID:         p.PractitionerID,
			DisplayName:            p.DisplayName,
			RevenueSharePercentage: p.RevenueSharePercentage,
			Role:                   p.Role,
		})
	}

	switch d.ServiceType {
	case models.ServiceTypeBundle:
		if err := hydrateBundle(ctx, &d, rec, lookup); err != nil {
			return d, err
		}
	case models.ServiceTypePackage:
		if err := hydratePackage(ctx, &d, rec, lookup); err != nil {
			return d, err
		}
	}
	return d, nil
}

func childSummary(ctx context.Context, cfg models.ChildServiceConfig, lookup childLookup) (models.ServiceSummary, error) {
	if cfg.ChildService != nil {
		return cfg.ChildService.Summary(), nil
	}
	child, err := lookup(ctx, cfg.ChildServiceID)
	if err != nil {
		return models.ServiceSummary{}, err
	}
	return child.Summary(), nil
}

func hydrateBundle(ctx context.Context, d *models.ServiceDraft, rec *models.ServiceRecord, lookup childLookup) error {
	if len(rec.ChildServiceConfigs) == 0 {
		return nil
	}
	cfg := rec.ChildServiceConfigs[0]
	child, err := childSummary(ctx, cfg, lookup)
	if err != nil {
		return err
	}
	sessions := cfg.Quantity
	if rec.SessionsIncluded != nil {
		sessions = *rec.SessionsIncluded
	}
	d.Bundle = &models.BundleConfig{
		SessionServiceID: cfg.ChildServiceID,
		SessionName:      child.Name,
		PricePerSession:  child.Price,
		SessionsIncluded: sessions,
	}
	suggested := pricing.Reprice(d.Bundle, d.Price)
	d.Bundle.PriceOverridden = math.Abs(suggested-d.Price) >= 0.005
	return nil
}

func hydratePackage(ctx context.Context, d *models.ServiceDraft, rec *models.ServiceRecord, lookup childLookup) error {
	configs := append([]models.ChildServiceConfig(nil), rec.ChildServiceConfigs...)
	sort.SliceStable(configs, func(i, j int) bool { return configs[i].Order < configs[j].Order })
	for _, cfg := range configs {
		if indexOf(d.PackageSessions, func(p models.PackageSessionItem) bool { return p.ServiceID == cfg.ChildServiceID }) >= 0 {
			continue
		}
		child, err := childSummary(ctx, cfg, lookup)
		if err != nil {
			return err
		}
		d.PackageSessions = append(d.PackageSessions, models.PackageSessionItem{
			ServiceID: cfg.ChildServiceID,
			Service:   child,
			Order:     len(d.PackageSessions),
		})
	}
	// The API stores only the final price; recover the slider position from it.
	total := pricing.QuotePackage(d.PackageSessions, 0).TotalOriginal
	if total > 0 {
		d.PackageDiscount = pricing.ClampDiscount(int(math.Round((total - d.Price) / total * 100)))
	}
	return nil
}
