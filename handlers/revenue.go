package handlers

import (
	"estuary/services/wizard"

	"github.com/gin-gonic/gin"
)

func (h *WizardHandler) AddCoPractitioner(c *gin.Context) {
	var in wizard.CoPractitionerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.PractitionerID == "" || in.PractitionerID == practitioner(c) {
		respondError(c, wizard.ErrPractitionerLookup)
		return
	}
	sess, err := h.Wizard.AddCoPractitioner(c.Request.Context(), practitioner(c), c.Param("id"), in)
	respondSession(c, sess, err)
}

func (h *WizardHandler) RemoveCoPractitioner(c *gin.Context) {
	sess, err := h.Wizard.RemoveCoPractitioner(c.Request.Context(), practitioner(c), c.Param("id"), c.Param("practitionerID"))
	respondSession(c, sess, err)
}

type revenueShareRequest struct {
	Percentage *int `json:"percentage" binding:"required"`
}

// SetRevenueShare handles PUT /api/wizard/:id/revenue/:practitionerID. A value
// past what is left is stored capped and answered with 400 and the session.
func (h *WizardHandler) SetRevenueShare(c *gin.Context) {
	var req revenueShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.SetRevenueShare(c.Request.Context(), practitioner(c), c.Param("id"), c.Param("practitionerID"), *req.Percentage)
	respondSession(c, sess, err)
}

func (h *WizardHandler) DistributeRevenue(c *gin.Context) {
	sess, err := h.Wizard.DistributeRevenueEvenly(c.Request.Context(), practitioner(c), c.Param("id"))
	respondSession(c, sess, err)
}
