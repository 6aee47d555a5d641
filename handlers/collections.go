package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"estuary/services/storage"
	"estuary/services/wizard"
	"estuary/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *WizardHandler) AddBenefit(c *gin.Context) {
	var in wizard.BenefitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.AddBenefit(c.Request.Context(), practitioner(c), c.Param("id"), in)
	respondSession(c, sess, err)
}

func (h *WizardHandler) UpdateBenefit(c *gin.Context) {
	var in wizard.BenefitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.UpdateBenefit(c.Request.Context(), practitioner(c), c.Param("id"), c.Param("benefitID"), in)
	respondSession(c, sess, err)
}

func (h *WizardHandler) RemoveBenefit(c *gin.Context) {
	sess, err := h.Wizard.RemoveBenefit(c.Request.Context(), practitioner(c), c.Param("id"), c.Param("benefitID"))
	respondSession(c, sess, err)
}

func (h *WizardHandler) MoveBenefit(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.MoveBenefit(c.Request.Context(), practitioner(c), c.Param("id"), *req.From, *req.To)
	respondSession(c, sess, err)
}

func (h *WizardHandler) AddScheduleSession(c *gin.Context) {
	var in wizard.WorkshopSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.AddWorkshopSession(c.Request.Context(), practitioner(c), c.Param("id"), in)
	respondSession(c, sess, err)
}

func (h *WizardHandler) RemoveScheduleSession(c *gin.Context) {
	sess, err := h.Wizard.RemoveWorkshopSession(c.Request.Context(), practitioner(c), c.Param("id"), c.Param("sessionID"))
	respondSession(c, sess, err)
}

func (h *WizardHandler) MoveScheduleSession(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.MoveWorkshopSession(c.Request.Context(), practitioner(c), c.Param("id"), *req.From, *req.To)
	respondSession(c, sess, err)
}

// openUpload opens the multipart "file" part. The caller closes it.
func openUpload(c *gin.Context) (*storage.File, multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{Message: "file not provided", Details: err.Error()})
		return nil, nil, false
	}
	f, err := header.Open()
	if err != nil {
		getLogger(c).Error("Failed to open uploaded file", zap.String("filename", header.Filename), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{Message: "could not read file", Details: err.Error()})
		return nil, nil, false
	}
	return &storage.File{Name: header.Filename, Size: header.Size, Body: f}, f, true
}

// AddResource handles POST /api/wizard/:id/resources. A JSON body adds a
// link; a multipart form with a "file" part uploads a file resource.
func (h *WizardHandler) AddResource(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var in wizard.ResourceInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		sess, err := h.Wizard.AddLinkResource(c.Request.Context(), practitioner(c), c.Param("id"), in)
		respondSession(c, sess, err)
		return
	}

	var in wizard.ResourceInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	file, closer, ok := openUpload(c)
	if !ok {
		return
	}
	defer closer.Close()

	sess, err := h.Wizard.UploadResource(c.Request.Context(), practitioner(c), c.Param("id"), in, file)
	respondSession(c, sess, err)
}

func (h *WizardHandler) RemoveResource(c *gin.Context) {
	sess, err := h.Wizard.RemoveResource(c.Request.Context(), practitioner(c), c.Param("id"), c.Param("resourceID"))
	respondSession(c, sess, err)
}

func (h *WizardHandler) MoveResource(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Wizard.MoveResource(c.Request.Context(), practitioner(c), c.Param("id"), *req.From, *req.To)
	respondSession(c, sess, err)
}

// UploadCoverImage handles POST /api/wizard/:id/cover-image (multipart "file").
func (h *WizardHandler) UploadCoverImage(c *gin.Context) {
	file, closer, ok := openUpload(c)
	if !ok {
		return
	}
	defer closer.Close()

	sess, err := h.Wizard.UploadCoverImage(c.Request.Context(), practitioner(c), c.Param("id"), file)
	respondSession(c, sess, err)
}
