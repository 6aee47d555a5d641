// Package assembler maps a finished draft onto the services API request body.
package assembler

import (
	"strconv"

	"estuary/models"
	"estuary/services/pricing"
)

// FormatPrice renders an amount the way the API expects decimals.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(pricing.RoundCents(v), 'f', 2, 64)
}

// Assemble builds the create/update body for draft. It never fails; the
// draft is expected to have passed every phase validator.
func Assemble(draft models.ServiceDraft) models.ServiceRequest {
	req := models.ServiceRequest{
		Name:             draft.Name,
		ShortDescription: draft.ShortDescription,
		Description:      draft.Description,
		ServiceTypeCode:  draft.ServiceType,
		Price:            FormatPrice(draft.Price),
		DurationMinutes:  draft.DurationMinutes,
		MaxParticipants:  draft.MaxParticipants,
		MinParticipants:  draft.MinParticipants,
		LocationType:     draft.LocationType,
		IsPublic:         draft.IsPublic,
		IsActive:         true,
		Includes:         draft.Includes,
		AgeMin:           draft.AgeMin,
		AgeMax:           draft.AgeMax,
	}

	if id := nonEmpty(draft.ScheduleID); id != nil {
		req.Schedule = id
	}
	if id := nonEmpty(draft.PractitionerCategoryID); id != nil {
		req.PractitionerCategoryID = id
	}
	if len(draft.ModalityIDs) > 0 {
		req.ModalityIDs = draft.ModalityIDs
	}
	if url := nonEmpty(draft.CoverImageURL); url != nil {
		req.ImageURL = url
	}

	switch draft.ServiceType {
	case models.ServiceTypeBundle:
		applyBundle(&req, draft.Bundle)
	case models.ServiceTypePackage:
		applyPackage(&req, draft.PackageSessions, draft.PackageDiscount)
	case models.ServiceTypeWorkshop, models.ServiceTypeCourse:
		req.Sessions = sessions(draft.WorkshopSessions)
	}

	req.Benefits = benefits(draft.Benefits)
	req.Resources = resources(draft.Resources)
	req.AdditionalPractitioners = practitioners(draft.RevenueShares)
	return req
}

func applyBundle(req *models.ServiceRequest, cfg *models.BundleConfig) {
	if cfg == nil || cfg.SessionServiceID == "" {
		return
	}
	n := cfg.SessionsIncluded
	req.SessionsIncluded = &n
	req.ChildServiceConfigs = []models.ChildServiceConfig{{
		ChildServiceID: cfg.SessionServiceID,
		Quantity:       n,
	}}
}

// Package price, duration and capacity are always derived from the selection.
func applyPackage(req *models.ServiceRequest, items []models.PackageSessionItem, discount int) {
	q := pricing.QuotePackage(items, discount)
	req.Price = FormatPrice(q.FinalPrice)
	req.DurationMinutes = q.TotalDuration
	req.MaxParticipants = q.MaxParticipants
	req.MinParticipants = 1

	configs := make([]models.ChildServiceConfig, 0, len(items))
	for _, item := range items {
		configs = append(configs, models.ChildServiceConfig{
			ChildServiceID: item.ServiceID,
			Quantity:       1,
			Order:          item.Order,
		})
	}
	req.ChildServiceConfigs = configs
}

func sessions(in []models.WorkshopSession) []models.SessionPayload {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.SessionPayload, len(in))
	for i, s := range in {
		out[i] = models.SessionPayload{
			Title:          s.Title,
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			SequenceNumber: s.Order,
		}
	}
	return out
}

func benefits(in []models.Benefit) []models.BenefitPayload {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.BenefitPayload, len(in))
	for i, b := range in {
		out[i] = models.BenefitPayload{
			Title:       b.Title,
			Description: b.Description,
			Icon:        b.Icon,
			Order:       b.Order,
		}
	}
	return out
}

func resources(in []models.Resource) []models.ResourcePayload {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.ResourcePayload, len(in))
	for i, r := range in {
		p := models.ResourcePayload{
			Title:           r.Title,
			Description:     r.Description,
			ResourceType:    string(r.ResourceType),
			MediaID:         r.MediaID,
			AccessLevel:     string(r.AccessLevel),
			IsDownloadable:  r.IsDownloadable,
			AttachmentLevel: string(r.AttachmentLevel),
			Order:           r.Order,
		}
		if r.ResourceType == models.ResourceLink {
			p.ExternalURL = r.ExternalURL
		} else {
			p.FileURL = r.FileURL
		}
		out[i] = p
	}
	return out
}

func practitioners(in []models.RevenueShare) []models.AdditionalPractitioner {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.AdditionalPractitioner, len(in))
	for i, s := range in {
		out[i] = models.AdditionalPractitioner{
			PractitionerID:         s.PractitionerID,
			DisplayName:            s.DisplayName,
			RevenueSharePercentage: s.RevenueSharePercentage,
			Role:                   s.Role,
		}
	}
	return out
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" || *v == models.NoneSentinel {
		return nil
	}
	return v
}
