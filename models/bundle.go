package models

// Bundle limits.
const (
	MinBundleSessions = 2
	MaxBundleSessions = 100
)

// BundleConfig describes N prepaid instances of one session service.
type BundleConfig struct {
	SessionServiceID  string  `bson:"sessionServiceId" json:"sessionServiceId"`
	SessionName       string  `bson:"sessionName" json:"sessionName"`
	PricePerSession   float64 `bson:"pricePerSession" json:"pricePerSession"`
	SessionsIncluded  int     `bson:"sessionsIncluded" json:"sessionsIncluded"`
	SuggestedPrice    float64 `bson:"suggestedPrice" json:"suggestedPrice"`
	SuggestedDiscount int     `bson:"suggestedDiscount" json:"suggestedDiscount"`
	PriceOverridden   bool    `bson:"priceOverridden" json:"priceOverridden"`
}
