package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"estuary/middleware"
	"estuary/models"
	"estuary/services/estuary"
	"estuary/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountAPI is the part of the Estuary API used to sign practitioners in.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) (*estuary.LoginResult, error)
	CurrentUser(ctx context.Context) (*models.CurrentUser, error)
	PractitionerProfile(ctx context.Context) (*models.PractitionerSummary, error)
}

// AuthSessions persists the link between a wizard token and the upstream token.
type AuthSessions interface {
	Save(ctx context.Context, sessionID string, session utils.AuthSession) error
	Delete(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	API      AccountAPI
	Sessions AuthSessions
	TokenTTL time.Duration
}

func NewAuthHandler(api AccountAPI, sessions AuthSessions, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{API: api, Sessions: sessions, TokenTTL: tokenTTL}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token          string             `json:"token"`
	ExpiresAt      time.Time          `json:"expiresAt"`
	PractitionerID string             `json:"practitionerId"`
	User           models.CurrentUser `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	logger := getLogger(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.API.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("Login rejected by Estuary API", zap.String("email", req.Email), zap.Error(err))
		if errors.Is(err, estuary.ErrBadRequest) || errors.Is(err, estuary.ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}

	practitionerID := result.User.PractitionerID
	if practitionerID == "" {
		ctx := estuary.WithToken(c.Request.Context(), result.AccessToken)
		profile, err := h.API.PractitionerProfile(ctx)
		if err != nil {
			if errors.Is(err, estuary.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Only practitioners can create services"})
				return
			}
			respondError(c, err)
			return
		}
		practitionerID = profile.ID
	}

	sessionID := uuid.NewString()
	now := time.Now()
	session := utils.AuthSession{
		PractitionerID: practitionerID,
		UserID:         result.User.ID,
		Email:          result.User.Email,
		DisplayName:    result.User.DisplayName(),
		APIToken:       result.AccessToken,
		CreatedAt:      now,
	}
	if err := h.Sessions.Save(c.Request.Context(), sessionID, session); err != nil {
		logger.Error("Failed to save auth session", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse{Message: "Could not start session"})
		return
	}

	token, err := utils.GenerateToken(practitionerID, sessionID, result.User.Email, h.TokenTTL)
	if err != nil {
		logger.Error("Failed to sign token", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse{Message: "Could not start session"})
		return
	}

	logger.Info("Practitioner signed in", zap.String("practitionerID", practitionerID))
	c.JSON(http.StatusOK, loginResponse{
		Token:          token,
		ExpiresAt:      now.Add(h.TokenTTL),
		PractitionerID: practitionerID,
		User:           result.User,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.API.CurrentUser(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if user.PractitionerID == "" {
		user.PractitionerID = middleware.PractitionerID(c)
	}
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Delete(c.Request.Context(), middleware.AuthSessionID(c)); err != nil {
		getLogger(c).Warn("Failed to delete auth session", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}
