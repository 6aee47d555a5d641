package models

import "strings"

// NoneSentinel is how select inputs spell "unset".
const NoneSentinel = "none"

// OptionalFromSelect turns a select value into an optional id.
func OptionalFromSelect(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" || v == NoneSentinel {
		return nil
	}
	return &v
}

// SelectFromOptional is the inverse of OptionalFromSelect.
func SelectFromOptional(v *string) string {
	if v == nil || *v == "" {
		return NoneSentinel
	}
	return *v
}

// IDsFromSelect drops sentinel and empty entries from a multi-select.
func IDsFromSelect(values []string) []string {
	var ids []string
	for _, v := range values {
		if id := OptionalFromSelect(v); id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}
