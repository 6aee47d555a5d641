package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSessionNotFound    = errors.New("wizard session not found")
	ErrForbidden          = errors.New("wizard session belongs to another practitioner")
	ErrSessionClosed      = errors.New("wizard session has already been submitted")
	ErrConcurrentUpdate   = errors.New("wizard session was changed by another request")
	ErrInvalidPhase       = errors.New("phase is not reachable")
	ErrNoNextPhase        = errors.New("already on the last phase")
	ErrInvalidServiceType = errors.New("unknown service type")
	ErrWrongServiceType   = errors.New("operation does not apply to this service type")
	ErrUnknownField       = errors.New("unknown draft field")
	ErrFieldNotEditable   = errors.New("field is derived and cannot be edited")
	ErrServiceNotEligible = errors.New("service is not one of your active session services")
	ErrDuplicateSession   = errors.New("session is already part of this package")
	ErrItemNotFound       = errors.New("item not found")
	ErrIndexOutOfRange    = errors.New("position is out of range")
	ErrPractitionerLookup = errors.New("practitioner not found")
	ErrSubmitFailed       = errors.New("service could not be saved")

	ErrSubmitInProgress = fmt.Errorf("%w: a submission is in progress", ErrConcurrentUpdate)
)

// ValidationError carries the field-keyed messages shown next to inputs.
// Phase is 0 when the error is not tied to a wizard phase.
type ValidationError struct {
	Phase  int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	if e.Phase > 0 {
		return fmt.Sprintf("phase %d is incomplete: %s", e.Phase, strings.Join(parts, "; "))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
