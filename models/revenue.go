package models

// RevenueShare is a co-practitioner's cut of a service's revenue.
// The primary practitioner is implicit and receives whatever remains of 100.
type RevenueShare struct {
	PractitionerID         string `bson:"practitionerId" json:"practitionerId"`
	DisplayName            string `bson:"displayName" json:"displayName"`
	RevenueSharePercentage int    `bson:"revenueSharePercentage" json:"revenueSharePercentage"`
	Role                   string `bson:"role" json:"role"`
}

// DefaultCoPractitionerRole is used when no role is given.
const DefaultCoPractitionerRole = "co_host"
