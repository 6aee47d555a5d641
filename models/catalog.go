package models

// Catalogue records mirror the API wire format and are relayed as-is.

// Category is a global service category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// PractitionerCategory is a category owned by a single practitioner.
type PractitionerCategory struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PractitionerID string `json:"practitioner_id"`
	Order          int    `json:"order"`
}

type Modality struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Schedule is a named availability schedule a service can be bound to.
type Schedule struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	IsDefault bool   `json:"is_default"`
}

// PractitionerSummary is a search hit used when adding co-practitioners.
type PractitionerSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Title       string `json:"title,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// CurrentUser is the logged-in account as reported by the API.
type CurrentUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PractitionerID string `json:"practitioner_id,omitempty"`
}

func (u CurrentUser) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// ServiceQuestion is an intake question asked of clients on booking.
type ServiceQuestion struct {
	ID           string   `json:"id"`
	ServiceID    string   `json:"service_id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	IsRequired   bool     `json:"is_required"`
	Options      []string `json:"options,omitempty"`
	Order        int      `json:"order"`
}

// QuestionInput is the create payload for a service question.
type QuestionInput struct {
	QuestionText string   `json:"question_text" binding:"required"`
	QuestionType string   `json:"question_type" binding:"required,oneof=text textarea select checkbox radio"`
	IsRequired   bool     `json:"is_required"`
	Options      []string `json:"options,omitempty"`
}
