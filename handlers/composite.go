package handlers

import (
	"github.com/gin-gonic/gin"
)

type bundleRequest struct {
	SessionServiceID string `json:"sessionServiceId"`
	SessionsIncluded *int   `json:"sessionsIncluded"`
}

// SetBundle handles PUT /api/wizard/:id/bundle. Either field may be sent alone.
func (h *WizardHandler) SetBundle(c *gin.Context) {
	var req bundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var serviceID *string
	if req.SessionServiceID != "" {
		serviceID = &req.SessionServiceID
	}
	sess, err := h.Wizard.SetBundle(c.Request.Context(), practitioner(c), c.Param("id"), serviceID, req.SessionsIncluded)
	respondSession(c, sess, err)
}

type priceRequest struct {
	Price *float64 `json:"price" binding:"required,min=0"`
}

func (h *WizardHandler) SetBundlePrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.SetBundlePrice(c.Request.Context(), practitioner(c), c.Param("id"), *req.Price)
	respondSession(c, sess, err)
}

type discountRequest struct {
	Discount *int `json:"discount" binding:"required"`
}

func (h *WizardHandler) SetBundleDiscount(c *gin.Context) {
	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.SetBundleDiscount(c.Request.Context(), practitioner(c), c.Param("id"), *req.Discount)
	respondSession(c, sess, err)
}

// ResetBundlePrice handles DELETE /api/wizard/:id/bundle/price.
func (h *WizardHandler) ResetBundlePrice(c *gin.Context) {
	sess, err := h.Wizard.ResetBundlePrice(c.Request.Context(), practitioner(c), c.Param("id"))
	respondSession(c, sess, err)
}

type packageSessionRequest struct {
	ServiceID string `json:"serviceId" binding:"required"`
}

func (h *WizardHandler) AddPackageSession(c *gin.Context) {
	var req packageSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.AddPackageSession(c.Request.Context(), practitioner(c), c.Param("id"), req.ServiceID)
	respondSession(c, sess, err)
}

func (h *WizardHandler) RemovePackageSession(c *gin.Context) {
	sess, err := h.Wizard.RemovePackageSession(c.Request.Context(), practitioner(c), c.Param("id"), c.Param("serviceID"))
	respondSession(c, sess, err)
}

func (h *WizardHandler) MovePackageSession(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.MovePackageSession(c.Request.Context(), practitioner(c), c.Param("id"), *req.From, *req.To)
	respondSession(c, sess, err)
}

func (h *WizardHandler) SetPackageDiscount(c *gin.Context) {
	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.SetPackageDiscount(c.Request.Context(), practitioner(c), c.Param("id"), *req.Discount)
	respondSession(c, sess, err)
}
