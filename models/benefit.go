package models

// Benefit is a user-authored selling point attached to a service.
type Benefit struct {
	ID          string  `bson:"id" json:"id"`
	Title       string  `bson:"title" json:"title"`
	Description *string `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string  `bson:"icon" json:"icon"`
	Order       int     `bson:"order" json:"order"`
}
