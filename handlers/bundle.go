// File: estuary/handlers/bundle.go
package handlers

import (
	"estuary/middleware"
)

// HandlerBundle groups the endpoint handlers routes are registered from.
type HandlerBundle struct {
	Sessions middleware.SessionStore

	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Wizard    *WizardHandler
	Questions *QuestionsHandler

	// RequestsPerMinute is the per-IP rate limit.
	RequestsPerMinute int
	AllowedOrigins    []string
}
