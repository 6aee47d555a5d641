package models

import "time"

type WizardStatus string

const (
	WizardEditing    WizardStatus = "editing"
	WizardSubmitting WizardStatus = "submitting"
	WizardSubmitted  WizardStatus = "submitted"
)

// WizardSession is one practitioner's pass through the service-creation wizard.
// Phases are 1-based indexes into the step list resolved for the draft's service type.
type WizardSession struct {
	ID                 string            `bson:"id" json:"id"`
	PractitionerID     string            `bson:"practitionerId" json:"practitionerId"`
	EditingServiceID   *string           `bson:"editingServiceId,omitempty" json:"editingServiceId,omitempty"`
	Draft              ServiceDraft      `bson:"draft" json:"draft"`
	CurrentPhase       int               `bson:"currentPhase" json:"currentPhase"`
	MaxReachedPhase    int               `bson:"maxReachedPhase" json:"maxReachedPhase"`
	Errors             map[string]string `bson:"errors,omitempty" json:"errors,omitempty"`
	Status             WizardStatus      `bson:"status" json:"status"`
	SubmittedServiceID *string           `bson:"submittedServiceId,omitempty" json:"submittedServiceId,omitempty"`
	Version            int64             `bson:"version" json:"version"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// IsEditing reports whether the session edits an existing service rather than creating one.
func (s *WizardSession) IsEditing() bool {
	return s.EditingServiceID != nil && *s.EditingServiceID != ""
}
