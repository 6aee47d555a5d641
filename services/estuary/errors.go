package estuary

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnauthorized = errors.New("estuary api: unauthorized")
	ErrForbidden    = errors.New("estuary api: forbidden")
	ErrNotFound     = errors.New("estuary api: not found")
	ErrBadRequest   = errors.New("estuary api: rejected request")
	ErrUnavailable  = errors.New("estuary api: unavailable")
)

// APIError is a non-2xx response from the Estuary API.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("estuary api %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match on the status class with errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 400 && e.Status < 500:
		return ErrBadRequest
	default:
		return ErrUnavailable
	}
}

func newAPIError(status int, body []byte) *APIError {
	msg, fields := ExtractErrorMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Message: msg, FieldErrors: fields}
}

// ExtractErrorMessage pulls a human readable message out of an error body.
// Shapes are tried in order: error.errors, errors, error.message, message.
// Field maps are flattened into "field: reason" lines.
func ExtractErrorMessage(body []byte) (string, map[string]string) {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Errors  json.RawMessage `json:"errors"`
		Message string          `json:"message"`
		Detail  string          `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil {
		return strings.TrimSpace(string(body)), nil
	}

	var nested struct {
		Errors  json.RawMessage `json:"errors"`
		Message string          `json:"message"`
	}
	var nestedString string
	if len(envelope.Error) > 0 {
		if json.Unmarshal(envelope.Error, &nested) != nil {
			_ = json.Unmarshal(envelope.Error, &nestedString)
		}
	}

	if fields := fieldMap(nested.Errors); len(fields) > 0 {
		return joinFields(fields), fields
	}
	if fields := fieldMap(envelope.Errors); len(fields) > 0 {
		return joinFields(fields), fields
	}
	switch {
	case nested.Message != "":
		return nested.Message, nil
	case nestedString != "":
		return nestedString, nil
	case envelope.Message != "":
		return envelope.Message, nil
	case envelope.Detail != "":
		return envelope.Detail, nil
	}
	return "", nil
}

// fieldMap accepts {"field": "msg"} and {"field": ["msg", ...]}.
func fieldMap(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var generic map[string]interface{}
	if json.Unmarshal(raw, &generic) != nil {
		return nil
	}
	fields := make(map[string]string, len(generic))
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case []interface{}:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			fields[k] = strings.Join(parts, " ")
		default:
			fields[k] = fmt.Sprint(val)
		}
	}
	return fields
}

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+fields[k])
	}
	return strings.Join(lines, "; ")
}
