package models

// ServiceDraft is the in-progress service being authored in the wizard.
type ServiceDraft struct {
	ServiceType            ServiceType  `bson:"serviceType" json:"serviceType"`
	Name                   string       `bson:"name" json:"name"`
	ShortDescription       string       `bson:"shortDescription" json:"shortDescription"`
	Description            string       `bson:"description" json:"description"`
	Price                  float64      `bson:"price" json:"price"`
	DurationMinutes        int          `bson:"durationMinutes" json:"durationMinutes"`
	MaxParticipants        int          `bson:"maxParticipants" json:"maxParticipants"`
	MinParticipants        int          `bson:"minParticipants" json:"minParticipants"`
	LocationType           LocationType `bson:"locationType" json:"locationType"`
	ModalityIDs            []string     `bson:"modalityIds,omitempty" json:"modalityIds,omitempty"`
	PractitionerCategoryID *string      `bson:"practitionerCategoryId,omitempty" json:"practitionerCategoryId,omitempty"`
	ScheduleID             *string      `bson:"scheduleId,omitempty" json:"scheduleId,omitempty"`
	Includes               []string     `bson:"includes,omitempty" json:"includes,omitempty"`
	AgeMin                 *int         `bson:"ageMin,omitempty" json:"ageMin,omitempty"`
	AgeMax                 *int         `bson:"ageMax,omitempty" json:"ageMax,omitempty"`
	IsPublic               bool         `bson:"isPublic" json:"isPublic"`
	CoverImageURL          *string      `bson:"coverImageUrl,omitempty" json:"coverImageUrl,omitempty"`

	// Type specific sub-state.
	Bundle           *BundleConfig        `bson:"bundle,omitempty" json:"bundle,omitempty"`
	PackageSessions  []PackageSessionItem `bson:"packageSessions,omitempty" json:"packageSessions,omitempty"`
	PackageDiscount  int                  `bson:"packageDiscount" json:"packageDiscount"`
	WorkshopSessions []WorkshopSession    `bson:"workshopSessions,omitempty" json:"workshopSessions,omitempty"`

	Benefits      []Benefit      `bson:"benefits,omitempty" json:"benefits,omitempty"`
	Resources     []Resource     `bson:"resources,omitempty" json:"resources,omitempty"`
	RevenueShares []RevenueShare `bson:"revenueShares,omitempty" json:"revenueShares,omitempty"`
}

// DefaultPackageDiscount is the discount a new package starts with.
const DefaultPackageDiscount = 15

// NewServiceDraft returns an empty draft with wizard defaults applied.
func NewServiceDraft() ServiceDraft {
	return ServiceDraft{
		MaxParticipants: 1,
		MinParticipants: 1,
		LocationType:    LocationVirtual,
		PackageDiscount: DefaultPackageDiscount,
		IsPublic:        true,
	}
}
