package handlers

import (
	"context"
	"net/http"
	"strings"

	"estuary/models"
	"estuary/utils"

	"github.com/gin-gonic/gin"
)

// CatalogReader serves the lookups that populate the wizard's selects.
type CatalogReader interface {
	ServiceTypes(ctx context.Context) ([]models.ServiceTypeInfo, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Modalities(ctx context.Context) ([]models.Modality, error)
	PractitionerCategories(ctx context.Context, practitionerID string) ([]models.PractitionerCategory, error)
	Schedules(ctx context.Context, practitionerID string) ([]models.Schedule, error)
	SessionServices(ctx context.Context, practitionerID string) ([]models.ServiceSummary, error)
	SearchPractitioners(ctx context.Context, query string) ([]models.PractitionerSummary, error)
}

type CatalogHandler struct {
	Catalog CatalogReader
}

func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

// minSearchLength keeps one-letter searches from hitting the API.
const minSearchLength = 2

func serveList[T any](c *gin.Context, fetch func(ctx context.Context) ([]T, error)) {
	items, err := fetch(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (h *CatalogHandler) ServiceTypes(c *gin.Context) {
	serveList(c, h.Catalog.ServiceTypes)
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	serveList(c, h.Catalog.Categories)
}

func (h *CatalogHandler) Modalities(c *gin.Context) {
	serveList(c, h.Catalog.Modalities)
}

func (h *CatalogHandler) PractitionerCategories(c *gin.Context) {
	serveList(c, func(ctx context.Context) ([]models.PractitionerCategory, error) {
		return h.Catalog.PractitionerCategories(ctx, practitioner(c))
	})
}

func (h *CatalogHandler) Schedules(c *gin.Context) {
	serveList(c, func(ctx context.Context) ([]models.Schedule, error) {
		return h.Catalog.Schedules(ctx, practitioner(c))
	})
}

// Sessions lists the practitioner's session services eligible for bundles and packages.
func (h *CatalogHandler) Sessions(c *gin.Context) {
	serveList(c, func(ctx context.Context) ([]models.ServiceSummary, error) {
		return h.Catalog.SessionServices(ctx, practitioner(c))
	})
}

// Practitioners handles GET /api/catalog/practitioners?q=.
func (h *CatalogHandler) Practitioners(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < minSearchLength {
		c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{Message: "Search needs at least 2 characters"})
		return
	}
	serveList(c, func(ctx context.Context) ([]models.PractitionerSummary, error) {
		hits, err := h.Catalog.SearchPractitioners(ctx, query)
		if err != nil {
			return nil, err
		}
		self := practitioner(c)
		out := hits[:0]
		for _, p := range hits {
			if p.ID != self {
				out = append(out, p)
			}
		}
		return out, nil
	})
}
