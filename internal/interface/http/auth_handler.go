package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
	"github.com/wicaksana/ledgeraudit/pkg/response"
	"github.com/wicaksana/ledgeraudit/pkg/validation"
)

type AuthHandler struct {
	Auth    *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Cookies: cookies, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// Login issues a session cookie on valid credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	meta := application.RequestMeta{IP: c.GetString("real_ip"), UserAgent: c.Request.UserAgent()}
	user, sess, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, meta)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}

	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, user.Public(), "logged in", nil)
}

// Logout clears the session. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	meta := application.RequestMeta{IP: c.GetString("real_ip"), UserAgent: c.Request.UserAgent()}
	if err := h.Auth.Logout(c.Request.Context(), token, meta); err != nil {
		h.Logger.WithError(err).Warn("logout cleanup failed")
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.UserFromCtx(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	response.Success(c, http.StatusOK, user, "", nil)
}
