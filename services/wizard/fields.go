package wizard

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"estuary/models"
)

type fieldSetter func(d *models.ServiceDraft, v interface{}) error

// draftFields lists the scalar draft fields the client may set one at a
// time. Keys match the draft's JSON names.
var draftFields = map[string]fieldSetter{
	"name":             setString(func(d *models.ServiceDraft) *string { return &d.Name }),
	"shortDescription": setString(func(d *models.ServiceDraft) *string { return &d.ShortDescription }),
	"description":      setString(func(d *models.ServiceDraft) *string { return &d.Description }),
	"price": func(d *models.ServiceDraft, v interface{}) error {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return typeError("price", "a number")
		}
		d.Price = f
		return nil
	},
	"durationMinutes": setInt(func(d *models.ServiceDraft) *int { return &d.DurationMinutes }),
	"maxParticipants": setInt(func(d *models.ServiceDraft) *int { return &d.MaxParticipants }),
	"minParticipants": setInt(func(d *models.ServiceDraft) *int { return &d.MinParticipants }),
	"locationType": func(d *models.ServiceDraft, v interface{}) error {
		s, err := cast.ToStringE(v)
		if err != nil || !models.LocationType(s).Valid() {
			return fieldError("locationType", "Choose virtual, in_person or hybrid")
		}
		d.LocationType = models.LocationType(s)
		return nil
	},
	"modalityIds": func(d *models.ServiceDraft, v interface{}) error {
		if v == nil {
			d.ModalityIDs = nil
			return nil
		}
		ids, err := cast.ToStringSliceE(v)
		if err != nil {
			return typeError("modalityIds", "a list of ids")
		}
		d.ModalityIDs = models.IDsFromSelect(ids)
		return nil
	},
	"practitionerCategoryId": setOptionalID(func(d *models.ServiceDraft) **string { return &d.PractitionerCategoryID }),
	"scheduleId":             setOptionalID(func(d *models.ServiceDraft) **string { return &d.ScheduleID }),
	"includes": func(d *models.ServiceDraft, v interface{}) error {
		if v == nil {
			d.Includes = nil
			return nil
		}
		items, err := cast.ToStringSliceE(v)
		if err != nil {
			return typeError("includes", "a list of text")
		}
		d.Includes = nonBlank(items)
		return nil
	},
	"ageMin": setOptionalInt(func(d *models.ServiceDraft) **int { return &d.AgeMin }),
	"ageMax": setOptionalInt(func(d *models.ServiceDraft) **int { return &d.AgeMax }),
	"isPublic": func(d *models.ServiceDraft, v interface{}) error {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return typeError("isPublic", "true or false")
		}
		d.IsPublic = b
		return nil
	},
}

// Fields derived from the selected sessions on a package.
var packageDerived = map[string]bool{
	"price":           true,
	"durationMinutes": true,
	"maxParticipants": true,
}

func setString(get func(*models.ServiceDraft) *string) fieldSetter {
	return func(d *models.ServiceDraft, v interface{}) error {
		s, err := cast.ToStringE(v)
		if err != nil {
			return &ValidationError{Fields: map[string]string{"value": "expected text"}}
		}
		*get(d) = s
		return nil
	}
}

func setInt(get func(*models.ServiceDraft) *int) fieldSetter {
	return func(d *models.ServiceDraft, v interface{}) error {
		n, err := cast.ToIntE(v)
		if err != nil {
			return &ValidationError{Fields: map[string]string{"value": "expected a whole number"}}
		}
		*get(d) = n
		return nil
	}
}

func setOptionalInt(get func(*models.ServiceDraft) **int) fieldSetter {
	return func(d *models.ServiceDraft, v interface{}) error {
		if v == nil || v == "" {
			*get(d) = nil
			return nil
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return &ValidationError{Fields: map[string]string{"value": "expected a whole number"}}
		}
		*get(d) = &n
		return nil
	}
}

func setOptionalID(get func(*models.ServiceDraft) **string) fieldSetter {
	return func(d *models.ServiceDraft, v interface{}) error {
		if v == nil {
			*get(d) = nil
			return nil
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return &ValidationError{Fields: map[string]string{"value": "expected an id"}}
		}
		*get(d) = models.OptionalFromSelect(s)
		return nil
	}
}

func typeError(field, want string) *ValidationError {
	return fieldError(field, fmt.Sprintf("expected %s", want))
}

func nonBlank(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// applyField sets one field on d. Generic setters report type problems
// under "value"; they are re-keyed to the field here.
func applyField(d *models.ServiceDraft, field string, value interface{}) error {
	set, ok := draftFields[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if d.ServiceType == models.ServiceTypePackage && packageDerived[field] {
		return fmt.Errorf("%w: %s", ErrFieldNotEditable, field)
	}
	err := set(d, value)
	if ve, ok := err.(*ValidationError); ok {
		if msg, generic := ve.Fields["value"]; generic {
			return fieldError(field, msg)
		}
	}
	return err
}
