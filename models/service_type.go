// models/service_type.go
package models

// ServiceType is the kind of sellable offering being authored.
type ServiceType string

const (
	ServiceTypeSession  ServiceType = "session"
	ServiceTypeWorkshop ServiceType = "workshop"
	ServiceTypeCourse   ServiceType = "course"
	ServiceTypePackage  ServiceType = "package"
	ServiceTypeBundle   ServiceType = "bundle"
)

// ServiceTypes lists every authorable type in display order.
var ServiceTypes = []ServiceType{
	ServiceTypeSession,
	ServiceTypeWorkshop,
	ServiceTypeCourse,
	ServiceTypePackage,
	ServiceTypeBundle,
}

// Valid reports whether t is one of the known service types.
func (t ServiceType) Valid() bool {
	for _, known := range ServiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsComposite is true for types that are built out of other session services.
func (t ServiceType) IsComposite() bool {
	return t == ServiceTypePackage || t == ServiceTypeBundle
}

// HasSchedule is true for types that carry their own dated sessions.
func (t ServiceType) HasSchedule() bool {
	return t == ServiceTypeWorkshop || t == ServiceTypeCourse
}

// ServiceTypeInfo represents a service type as served by the catalogue endpoint.
type ServiceTypeInfo struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LocationType describes where a service is delivered.
type LocationType string

const (
	LocationVirtual  LocationType = "virtual"
	LocationInPerson LocationType = "in_person"
	LocationHybrid   LocationType = "hybrid"
)

// Valid reports whether l is a known location type.
func (l LocationType) Valid() bool {
	switch l {
	case LocationVirtual, LocationInPerson, LocationHybrid:
		return true
	}
	return false
}
