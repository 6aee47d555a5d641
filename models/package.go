package models

// ServiceSummary is the slice of an existing service that composite services need.
type ServiceSummary struct {
	ID              string      `bson:"id" json:"id"`
	Name            string      `bson:"name" json:"name"`
	ServiceType     ServiceType `bson:"serviceType" json:"serviceType"`
	Price           float64     `bson:"price" json:"price"`
	DurationMinutes int         `bson:"durationMinutes" json:"durationMinutes"`
	PractitionerID  string      `bson:"practitionerId" json:"practitionerId"`
	IsActive        bool        `bson:"isActive" json:"isActive"`
}

// PackageSessionItem is one session service inside a package.
type PackageSessionItem struct {
	ServiceID string         `bson:"serviceId" json:"serviceId"`
	Service   ServiceSummary `bson:"service" json:"service"`
	Order     int            `bson:"order" json:"order"`
}

// WorkshopSession is one dated occurrence of a workshop or course.
type WorkshopSession struct {
	ID        string `bson:"id" json:"id"`
	Title     string `bson:"title" json:"title"`
	StartTime string `bson:"startTime" json:"startTime"` // RFC3339
	EndTime   string `bson:"endTime" json:"endTime"`     // RFC3339
	Order     int    `bson:"order" json:"order"`
}
