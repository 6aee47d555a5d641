package handlers

import (
	"errors"
	"net/http"

	"estuary/middleware"
	"estuary/models"
	"estuary/services/estuary"
	"estuary/services/notify"
	"estuary/services/revenue"
	"estuary/services/storage"
	"estuary/services/wizard"
	"estuary/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sessionResponse is what every wizard mutation returns: the session plus
// everything the client derives its screens from.
type sessionResponse struct {
	Session *models.WizardSession `json:"session"`
	Steps   wizard.StepsView      `json:"steps"`
	Pricing wizard.PricingView    `json:"pricing"`
	Revenue wizard.RevenueView    `json:"revenue"`
	Selects map[string]string     `json:"selects"`
	Errors  map[string]string     `json:"errors,omitempty"`
	Toasts  []models.Toast        `json:"toasts,omitempty"`
}

// selectValues renders optional ids the way the form's select inputs hold them.
func selectValues(d *models.ServiceDraft) map[string]string {
	return map[string]string{
		"scheduleId":             models.SelectFromOptional(d.ScheduleID),
		"practitionerCategoryId": models.SelectFromOptional(d.PractitionerCategoryID),
	}
}

func drainToasts(c *gin.Context) []models.Toast {
	if collector := notify.CollectorFrom(c.Request.Context()); collector != nil {
		return collector.Drain()
	}
	return nil
}

func writeSession(c *gin.Context, status int, sess *models.WizardSession, fields map[string]string) {
	c.JSON(status, sessionResponse{
		Session: sess,
		Steps:   wizard.StepsOf(sess),
		Pricing: wizard.PricingOf(&sess.Draft),
		Revenue: wizard.RevenueSummary(sess),
		Selects: selectValues(&sess.Draft),
		Errors:  fields,
		Toasts:  drainToasts(c),
	})
}

// respondSession writes the outcome of a wizard mutation. A validation
// failure that still produced a session (a rejected Advance, a capped
// revenue share) is reported with the session attached.
func respondSession(c *gin.Context, sess *models.WizardSession, err error) {
	if err == nil {
		writeSession(c, http.StatusOK, sess, nil)
		return
	}
	var verr *wizard.ValidationError
	if sess != nil && errors.As(err, &verr) {
		writeSession(c, http.StatusBadRequest, sess, verr.Fields)
		return
	}
	respondError(c, err)
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data, "toasts": drainToasts(c)})
}

// statusFor maps domain and upstream errors to HTTP statuses.
func statusFor(err error) int {
	var verr *wizard.ValidationError
	var apiErr *estuary.APIError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, storage.ErrEmptyFile), errors.Is(err, storage.ErrLinkHasNoFile):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrUploadTarget), errors.Is(err, storage.ErrUploadTransfer), errors.Is(err, storage.ErrUploadConfirm):
		return http.StatusBadGateway
	case errors.Is(err, revenue.ErrParticipantExists):
		return http.StatusConflict
	case errors.Is(err, revenue.ErrPrimaryParticipant):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrSessionNotFound), errors.Is(err, wizard.ErrItemNotFound),
		errors.Is(err, revenue.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, wizard.ErrSessionClosed), errors.Is(err, wizard.ErrConcurrentUpdate),
		errors.Is(err, wizard.ErrDuplicateSession), errors.Is(err, wizard.ErrNoNextPhase):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrInvalidPhase), errors.Is(err, wizard.ErrInvalidServiceType),
		errors.Is(err, wizard.ErrWrongServiceType), errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrFieldNotEditable), errors.Is(err, wizard.ErrServiceNotEligible),
		errors.Is(err, wizard.ErrIndexOutOfRange), errors.Is(err, wizard.ErrPractitionerLookup):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, wizard.ErrSubmitFailed), errors.Is(err, estuary.ErrUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := utils.ErrorResponse{Message: http.StatusText(status), Details: err.Error()}

	var verr *wizard.ValidationError
	var apiErr *estuary.APIError
	switch {
	case errors.As(err, &verr):
		resp.Message = "Validation failed"
		resp.Fields = verr.Fields
	case errors.As(err, &apiErr):
		resp.Message = apiErr.Message
		resp.Fields = apiErr.FieldErrors
	}
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if status == http.StatusInternalServerError {
			resp.Details = ""
		}
	}
	if toasts := drainToasts(c); len(toasts) > 0 {
		resp.Toasts = toasts
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	getLogger(c).Debug("Invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{Message: "Invalid request body", Details: err.Error()})
}

func practitioner(c *gin.Context) string {
	return middleware.PractitionerID(c)
}

// moveRequest reorders one item of a collection.
type moveRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}
