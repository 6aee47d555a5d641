package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"estuary/models"
)

// move relocates items[from] to index to. Moving onto the same index is a no-op.
func move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return items, fmt.Errorf("%w: %d -> %d of %d", ErrIndexOutOfRange, from, to, len(items))
	}
	if from == to {
		return items, nil
	}
	item := items[from]
	out := append(items[:from:from], items[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out, nil
}

func removeAt[T any](items []T, i int) []T {
	return append(items[:i:i], items[i+1:]...)
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

// Orders are always dense 0..n-1 in slice order.

func reindexBenefits(items []models.Benefit) {
	for i := range items {
		items[i].Order = i
	}
}

func reindexResources(items []models.Resource) {
	for i := range items {
		items[i].Order = i
	}
}

func reindexWorkshopSessions(items []models.WorkshopSession) {
	for i := range items {
		items[i].Order = i
	}
}

func reindexPackageSessions(items []models.PackageSessionItem) {
	for i := range items {
		items[i].Order = i
	}
}

// BenefitInput is the editable part of a benefit.
type BenefitInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Icon        string  `json:"icon"`
}

func addBenefit(d *models.ServiceDraft, in BenefitInput) (models.Benefit, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Benefit{}, fieldError("title", "Benefit title is required")
	}
	b := models.Benefit{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Icon:        in.Icon,
	}
	d.Benefits = append(d.Benefits, b)
	reindexBenefits(d.Benefits)
	b.Order = len(d.Benefits) - 1
	return b, nil
}

func updateBenefit(d *models.ServiceDraft, id string, in BenefitInput) error {
	i := indexOf(d.Benefits, func(b models.Benefit) bool { return b.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: benefit %s", ErrItemNotFound, id)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fieldError("title", "Benefit title is required")
	}
	d.Benefits[i].Title = strings.TrimSpace(in.Title)
	d.Benefits[i].Description = in.Description
	d.Benefits[i].Icon = in.Icon
	return nil
}

func removeBenefit(d *models.ServiceDraft, id string) error {
	i := indexOf(d.Benefits, func(b models.Benefit) bool { return b.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: benefit %s", ErrItemNotFound, id)
	}
	d.Benefits = removeAt(d.Benefits, i)
	reindexBenefits(d.Benefits)
	return nil
}

func moveBenefit(d *models.ServiceDraft, from, to int) error {
	out, err := move(d.Benefits, from, to)
	if err != nil {
		return err
	}
	d.Benefits = out
	reindexBenefits(d.Benefits)
	return nil
}

// WorkshopSessionInput describes one dated session of a workshop or course.
type WorkshopSessionInput struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func addWorkshopSession(d *models.ServiceDraft, in WorkshopSessionInput) (models.WorkshopSession, error) {
	if !d.ServiceType.HasSchedule() {
		return models.WorkshopSession{}, ErrWrongServiceType
	}
	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		return models.WorkshopSession{}, fieldError("startTime", "Start time must be an RFC3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, in.EndTime)
	if err != nil {
		return models.WorkshopSession{}, fieldError("endTime", "End time must be an RFC3339 timestamp")
	}
	if !start.Before(end) {
		return models.WorkshopSession{}, fieldError("endTime", "Session must end after it starts")
	}
	s := models.WorkshopSession{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(in.Title),
		StartTime: start.UTC().Format(time.RFC3339),
		EndTime:   end.UTC().Format(time.RFC3339),
	}
	d.WorkshopSessions = append(d.WorkshopSessions, s)
	reindexWorkshopSessions(d.WorkshopSessions)
	s.Order = len(d.WorkshopSessions) - 1
	return s, nil
}

func removeWorkshopSession(d *models.ServiceDraft, id string) error {
	i := indexOf(d.WorkshopSessions, func(s models.WorkshopSession) bool { return s.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: session %s", ErrItemNotFound, id)
	}
	d.WorkshopSessions = removeAt(d.WorkshopSessions, i)
	reindexWorkshopSessions(d.WorkshopSessions)
	return nil
}

func moveWorkshopSession(d *models.ServiceDraft, from, to int) error {
	out, err := move(d.WorkshopSessions, from, to)
	if err != nil {
		return err
	}
	d.WorkshopSessions = out
	reindexWorkshopSessions(d.WorkshopSessions)
	return nil
}

// ResourceInput is the metadata of a resource. ExternalURL is only used for links.
type ResourceInput struct {
	Title           string                 `json:"title" form:"title"`
	Description     *string                `json:"description" form:"description"`
	ResourceType    models.ResourceType    `json:"resourceType" form:"resourceType"`
	ExternalURL     *string                `json:"externalUrl" form:"externalUrl"`
	AccessLevel     models.AccessLevel     `json:"accessLevel" form:"accessLevel"`
	IsDownloadable  bool                   `json:"isDownloadable" form:"isDownloadable"`
	AttachmentLevel models.AttachmentLevel `json:"attachmentLevel" form:"attachmentLevel"`
}

func (in ResourceInput) withDefaults() ResourceInput {
	if in.AccessLevel == "" {
		in.AccessLevel = models.AccessCustomers
	}
	if in.AttachmentLevel == "" {
		in.AttachmentLevel = models.AttachmentIncluded
	}
	return in
}

// newResource validates metadata only; file presence is checked by the caller.
func newResource(in ResourceInput) (models.Resource, error) {
	in = in.withDefaults()
	r := models.Resource{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		ResourceType:    in.ResourceType,
		AccessLevel:     in.AccessLevel,
		IsDownloadable:  in.IsDownloadable,
		AttachmentLevel: in.AttachmentLevel,
	}
	if in.ResourceType == models.ResourceLink {
		r.ExternalURL = in.ExternalURL
		r.IsDownloadable = false
	}
	errs := resourceErrors(r)
	delete(errs, "fileUrl")
	if len(errs) > 0 {
		return models.Resource{}, &ValidationError{Fields: errs}
	}
	return r, nil
}

func appendResource(d *models.ServiceDraft, r models.Resource) models.Resource {
	d.Resources = append(d.Resources, r)
	reindexResources(d.Resources)
	return d.Resources[len(d.Resources)-1]
}

func removeResource(d *models.ServiceDraft, id string) error {
	i := indexOf(d.Resources, func(r models.Resource) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: resource %s", ErrItemNotFound, id)
	}
	d.Resources = removeAt(d.Resources, i)
	reindexResources(d.Resources)
	return nil
}

func moveResource(d *models.ServiceDraft, from, to int) error {
	out, err := move(d.Resources, from, to)
	if err != nil {
		return err
	}
	d.Resources = out
	reindexResources(d.Resources)
	return nil
}
