package handlers

import (
	"net/http"

	"estuary/models"
	"estuary/services/wizard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WizardHandler exposes the service creation wizard over HTTP. Every route
// is scoped to the authenticated practitioner.
type WizardHandler struct {
	Wizard *wizard.Service
}

func NewWizardHandler(svc *wizard.Service) *WizardHandler {
	return &WizardHandler{Wizard: svc}
}

type startRequest struct {
	EditingServiceID *string `json:"editingServiceId"`
}

// Start handles POST /api/wizard.
func (h *WizardHandler) Start(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.EditingServiceID != nil {
		req.EditingServiceID = models.OptionalFromSelect(*req.EditingServiceID)
	}
	sess, err := h.Wizard.Start(c.Request.Context(), practitioner(c), req.EditingServiceID)
	if err != nil {
		respondError(c, err)
		return
	}
	writeSession(c, http.StatusCreated, sess, nil)
}

func (h *WizardHandler) List(c *gin.Context) {
	sessions, err := h.Wizard.List(c.Request.Context(), practitioner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []models.WizardSession{}
	}
	c.JSON(http.StatusOK, gin.H{"results": sessions})
}

func (h *WizardHandler) Get(c *gin.Context) {
	sess, err := h.Wizard.Get(c.Request.Context(), practitioner(c), c.Param("id"))
	respondSession(c, sess, err)
}

func (h *WizardHandler) Discard(c *gin.Context) {
	if err := h.Wizard.Discard(c.Request.Context(), practitioner(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetFields handles PATCH /api/wizard/:id/fields with a {field: value} object.
func (h *WizardHandler) SetFields(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.SetFields(c.Request.Context(), practitioner(c), c.Param("id"), values)
	respondSession(c, sess, err)
}

// ReplaceDraft handles PUT /api/wizard/:id/draft.
func (h *WizardHandler) ReplaceDraft(c *gin.Context) {
	var draft models.ServiceDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err)
		return
	}
	if draft.ScheduleID != nil {
		draft.ScheduleID = models.OptionalFromSelect(*draft.ScheduleID)
	}
	if draft.PractitionerCategoryID != nil {
		draft.PractitionerCategoryID = models.OptionalFromSelect(*draft.PractitionerCategoryID)
	}
	draft.ModalityIDs = models.IDsFromSelect(draft.ModalityIDs)

	sess, err := h.Wizard.Replace(c.Request.Context(), practitioner(c), c.Param("id"), draft)
	respondSession(c, sess, err)
}

type selectTypeRequest struct {
	ServiceType models.ServiceType `json:"serviceType" binding:"required"`
}

func (h *WizardHandler) SelectType(c *gin.Context) {
	var req selectTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.SelectType(c.Request.Context(), practitioner(c), c.Param("id"), req.ServiceType)
	respondSession(c, sess, err)
}

func (h *WizardHandler) Advance(c *gin.Context) {
	sess, err := h.Wizard.Advance(c.Request.Context(), practitioner(c), c.Param("id"))
	respondSession(c, sess, err)
}

func (h *WizardHandler) Back(c *gin.Context) {
	sess, err := h.Wizard.Back(c.Request.Context(), practitioner(c), c.Param("id"))
	respondSession(c, sess, err)
}

type phaseRequest struct {
	Phase int `json:"phase" binding:"required,min=1"`
}

// GoTo handles PUT /api/wizard/:id/phase.
func (h *WizardHandler) GoTo(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.GoTo(c.Request.Context(), practitioner(c), c.Param("id"), req.Phase)
	respondSession(c, sess, err)
}

func (h *WizardHandler) Steps(c *gin.Context) {
	view, err := h.Wizard.Steps(c.Request.Context(), practitioner(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type validateRequest struct {
	Phase int `json:"phase" binding:"min=0"`
}

// Validate handles POST /api/wizard/:id/validate. Nothing is stored.
func (h *WizardHandler) Validate(c *gin.Context) {
	var req validateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	ok, fields, err := h.Wizard.ValidatePhase(c.Request.Context(), practitioner(c), c.Param("id"), req.Phase)
	if err != nil {
		respondError(c, err)
		return
	}
	if fields == nil {
		fields = map[string]string{}
	}
	c.JSON(http.StatusOK, gin.H{"valid": ok, "errors": fields})
}

func (h *WizardHandler) Pricing(c *gin.Context) {
	view, err := h.Wizard.Pricing(c.Request.Context(), practitioner(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Preview returns the body a submit would send.
func (h *WizardHandler) Preview(c *gin.Context) {
	body, err := h.Wizard.Preview(c.Request.Context(), practitioner(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

type submitResponse struct {
	sessionResponse
	Service *models.ServiceRecord `json:"service"`
}

func (h *WizardHandler) Submit(c *gin.Context) {
	sess, rec, err := h.Wizard.Submit(c.Request.Context(), practitioner(c), c.Param("id"))
	if err != nil {
		respondSession(c, sess, err)
		return
	}
	getLogger(c).Info("Service submitted", zap.String("sessionID", sess.ID), zap.String("serviceID", rec.ID))
	c.JSON(http.StatusOK, submitResponse{
		sessionResponse: sessionResponse{
			Session: sess,
			Steps:   wizard.StepsOf(sess),
			Pricing: wizard.PricingOf(&sess.Draft),
			Revenue: wizard.RevenueSummary(sess),
			Toasts:  drainToasts(c),
		},
		Service: rec,
	})
}
