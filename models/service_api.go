package models

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// Wire shapes of the Estuary services endpoints. Field names follow the API.

// ChildServiceConfig references a component service of a bundle or package.
type ChildServiceConfig struct {
	ChildServiceID string         `json:"child_service_id"`
	Quantity       int            `json:"quantity"`
	Order          int            `json:"order"`
	ChildService   *ServiceRecord `json:"child_service,omitempty"`
}

type BenefitPayload struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	Order       int     `json:"order"`
}

type ResourcePayload struct {
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	ResourceType    string  `json:"resource_type"`
	FileURL         *string `json:"file_url,omitempty"`
	ExternalURL     *string `json:"external_url,omitempty"`
	MediaID         *string `json:"media_id,omitempty"`
	AccessLevel     string  `json:"access_level"`
	IsDownloadable  bool    `json:"is_downloadable"`
	AttachmentLevel string  `json:"attachment_level"`
	Order           int     `json:"order"`
}

type SessionPayload struct {
	Title          string `json:"title,omitempty"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	SequenceNumber int    `json:"sequence_number"`
}

type AdditionalPractitioner struct {
	PractitionerID         string `json:"practitioner_id"`
	DisplayName            string `json:"display_name,omitempty"`
	RevenueSharePercentage int    `json:"revenue_share_percentage"`
	Role                   string `json:"role"`
}

// ServiceRequest is the create/update body sent to the services endpoint.
type ServiceRequest struct {
	Name                    string                   `json:"name"`
	ShortDescription        string                   `json:"short_description,omitempty"`
	Description             string                   `json:"description"`
	ServiceTypeCode         ServiceType              `json:"service_type_code"`
	Price                   string                   `json:"price"`
	DurationMinutes         int                      `json:"duration_minutes"`
	MaxParticipants         int                      `json:"max_participants"`
	MinParticipants         int                      `json:"min_participants"`
	LocationType            LocationType             `json:"location_type"`
	IsPublic                bool                     `json:"is_public"`
	IsActive                bool                     `json:"is_active"`
	Includes                []string                 `json:"includes,omitempty"`
	AgeMin                  *int                     `json:"age_min,omitempty"`
	AgeMax                  *int                     `json:"age_max,omitempty"`
	Schedule                *string                  `json:"schedule,omitempty"`
	ModalityIDs             []string                 `json:"modality_ids,omitempty"`
	PractitionerCategoryID  *string                  `json:"practitioner_category_id,omitempty"`
	ImageURL                *string                  `json:"image_url,omitempty"`
	ChildServiceConfigs     []ChildServiceConfig     `json:"child_service_configs,omitempty"`
	SessionsIncluded        *int                     `json:"sessions_included,omitempty"`
	Benefits                []BenefitPayload         `json:"benefits,omitempty"`
	Resources               []ResourcePayload        `json:"resources,omitempty"`
	Sessions                []SessionPayload         `json:"sessions,omitempty"`
	AdditionalPractitioners []AdditionalPractitioner `json:"additional_practitioners,omitempty"`
}

// ServiceRecord is a service as returned by the API.
type ServiceRecord struct {
	ID                      string                   `json:"id"`
	Name                    string                   `json:"name"`
	ShortDescription        string                   `json:"short_description"`
	Description             string                   `json:"description"`
	ServiceTypeCode         ServiceType              `json:"service_type_code"`
	Price                   json.Number              `json:"price"`
	DurationMinutes         int                      `json:"duration_minutes"`
	MaxParticipants         int                      `json:"max_participants"`
	MinParticipants         int                      `json:"min_participants"`
	LocationType            LocationType             `json:"location_type"`
	IsPublic                bool                     `json:"is_public"`
	IsActive                bool                     `json:"is_active"`
	Includes                []string                 `json:"includes"`
	AgeMin                  *int                     `json:"age_min"`
	AgeMax                  *int                     `json:"age_max"`
	Schedule                *string                  `json:"schedule"`
	ModalityIDs             []string                 `json:"modality_ids"`
	PractitionerCategoryID  *string                  `json:"practitioner_category_id"`
	ImageURL                *string                  `json:"image_url"`
	PractitionerID          string                   `json:"practitioner_id"`
	SessionsIncluded        *int                     `json:"sessions_included"`
	ChildServiceConfigs     []ChildServiceConfig     `json:"child_service_configs"`
	Benefits                []BenefitPayload         `json:"benefits"`
	Resources               []ResourcePayload        `json:"resources"`
	Sessions                []SessionPayload         `json:"sessions"`
	AdditionalPractitioners []AdditionalPractitioner `json:"additional_practitioners"`
}

// PriceValue parses the decimal price the API returns as a string or number.
func (s ServiceRecord) PriceValue() float64 {
	return cast.ToFloat64(s.Price.String())
}

// Summary trims a record down to what composite services reference.
func (s ServiceRecord) Summary() ServiceSummary {
	return ServiceSummary{
		ID:              s.ID,
		Name:            s.Name,
		ServiceType:     s.ServiceTypeCode,
		Price:           s.PriceValue(),
		DurationMinutes: s.DurationMinutes,
		PractitionerID:  s.PractitionerID,
		IsActive:        s.IsActive,
	}
}
