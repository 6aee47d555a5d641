package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"estuary/models"
	"estuary/services/pricing"
	"estuary/services/revenue"
)

const (
	maxNameLength         = 255
	maxShortDescription   = 500
	maxBenefitTitleLength = 100
	maxAge                = 120
)

var validate = validator.New()

type fieldErrors map[string]string

func (f fieldErrors) check(field string, value interface{}, tag, msg string) {
	if _, seen := f[field]; seen {
		return
	}
	if err := validate.Var(value, tag); err != nil {
		f[field] = msg
	}
}

func (f fieldErrors) add(field, msg string) {
	if _, seen := f[field]; !seen {
		f[field] = msg
	}
}

func validateType(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	if !d.ServiceType.Valid() {
		errs.add("serviceType", "Choose what kind of service you are creating")
	}
	return errs
}

func validateBasicInfo(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	errs.check("name", strings.TrimSpace(d.Name), "required", "Name is required")
	errs.check("name", d.Name, fmt.Sprintf("max=%d", maxNameLength), fmt.Sprintf("Name must be at most %d characters", maxNameLength))
	errs.check("description", strings.TrimSpace(d.Description), "required", "Description is required")
	errs.check("shortDescription", d.ShortDescription, fmt.Sprintf("max=%d", maxShortDescription),
		fmt.Sprintf("Short description must be at most %d characters", maxShortDescription))
	return errs
}

func validateDelivery(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	if !d.LocationType.Valid() {
		errs.add("locationType", "Choose how the service is delivered")
	}
	errs.check("durationMinutes", d.DurationMinutes, "gt=0", "Duration must be greater than 0")
	errs.check("maxParticipants", d.MaxParticipants, "gte=1", "At least one participant is required")
	errs.check("minParticipants", d.MinParticipants, "gte=1", "Minimum participants must be at least 1")
	if d.MinParticipants > d.MaxParticipants && d.MaxParticipants >= 1 {
		errs.add("minParticipants", "Minimum participants cannot exceed the maximum")
	}
	if d.ServiceType != models.ServiceTypeBundle {
		errs.check("price", d.Price, "gte=0", "Price cannot be negative")
	}
	return errs
}

func validateSchedule(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	if len(d.WorkshopSessions) == 0 {
		errs.add("workshopSessions", "Add at least one session")
		return errs
	}
	for i, s := range d.WorkshopSessions {
		start, serr := time.Parse(time.RFC3339, s.StartTime)
		end, eerr := time.Parse(time.RFC3339, s.EndTime)
		switch {
		case serr != nil:
			errs.add(fmt.Sprintf("workshopSessions.%d.startTime", i), "Start time is invalid")
		case eerr != nil:
			errs.add(fmt.Sprintf("workshopSessions.%d.endTime", i), "End time is invalid")
		case !start.Before(end):
			errs.add(fmt.Sprintf("workshopSessions.%d.endTime", i), "Session must end after it starts")
		}
	}
	return errs
}

func validateBundleConfig(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	if d.Bundle == nil || d.Bundle.SessionServiceID == "" {
		errs.add("bundle.sessionServiceId", "Choose the session this bundle is made of")
		return errs
	}
	errs.check("bundle.sessionsIncluded", d.Bundle.SessionsIncluded,
		fmt.Sprintf("min=%d,max=%d", models.MinBundleSessions, models.MaxBundleSessions),
		fmt.Sprintf("Bundles include between %d and %d sessions", models.MinBundleSessions, models.MaxBundleSessions))
	errs.check("price", d.Price, "gt=0", "Bundle price must be greater than 0")
	return errs
}

func validateSessionSelection(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	if len(d.PackageSessions) == 0 {
		errs.add("packageSessions", "Select at least one session")
	}
	return errs
}

func validatePackagePricing(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	if q := pricing.QuotePackage(d.PackageSessions, d.PackageDiscount); q.FinalPrice <= 0 {
		errs.add("price", "Package price must be greater than 0")
	}
	return errs
}

func validatePolish(d *models.ServiceDraft) map[string]string {
	errs := fieldErrors{}
	for i, b := range d.Benefits {
		key := fmt.Sprintf("benefits.%d.title", i)
		errs.check(key, strings.TrimSpace(b.Title), "required", "Benefit title is required")
		errs.check(key, b.Title, fmt.Sprintf("max=%d", maxBenefitTitleLength), "Benefit title is too long")
	}
	for i, r := range d.Resources {
		for field, msg := range resourceErrors(r) {
			errs.add(fmt.Sprintf("resources.%d.%s", i, field), msg)
		}
	}
	if d.CoverImageURL != nil {
		errs.check("coverImageUrl", *d.CoverImageURL, "url", "Cover image must be a valid URL")
	}
	for field, msg := range ageErrors(d.AgeMin, d.AgeMax) {
		errs.add(field, msg)
	}
	for field, msg := range revenue.NewAllocator("", d.RevenueShares).Validate() {
		errs.add(field, msg)
	}
	return errs
}

func resourceErrors(r models.Resource) map[string]string {
	errs := fieldErrors{}
	errs.check("title", strings.TrimSpace(r.Title), "required", "Resource title is required")
	if !r.ResourceType.Valid() {
		errs.add("resourceType", "Unknown resource type")
	}
	if !r.AccessLevel.Valid() {
		errs.add("accessLevel", "Unknown access level")
	}
	if !r.AttachmentLevel.Valid() {
		errs.add("attachmentLevel", "Unknown attachment level")
	}
	if r.ResourceType == models.ResourceLink {
		url := ""
		if r.ExternalURL != nil {
			url = *r.ExternalURL
		}
		errs.check("externalUrl", url, "required,url", "A valid link is required")
	} else if r.FileURL == nil || *r.FileURL == "" {
		errs.add("fileUrl", "Upload a file for this resource")
	}
	return errs
}

func ageErrors(min, max *int) map[string]string {
	errs := fieldErrors{}
	if min != nil {
		errs.check("ageMin", *min, fmt.Sprintf("min=0,max=%d", maxAge), "Minimum age is out of range")
	}
	if max != nil {
		errs.check("ageMax", *max, fmt.Sprintf("min=0,max=%d", maxAge), "Maximum age is out of range")
	}
	if min != nil && max != nil && *min > *max {
		errs.add("ageMax", "Maximum age must not be below the minimum age")
	}
	return errs
}
