package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/pkg/response"
)

type ConnectionHandler struct {
	Connections *application.ConnectionService
	StateTTL    time.Duration
	Logger      *logrus.Logger
}

func NewConnectionHandler(connections *application.ConnectionService, stateTTL time.Duration, logger *logrus.Logger) *ConnectionHandler {
	return &ConnectionHandler{Connections: connections, StateTTL: stateTTL, Logger: logger}
}

// Authorize returns the provider consent URL for the scoped company.
func (h *ConnectionHandler) Authorize(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}

	url, err := h.Connections.BeginAuthorize(c.Request.Context(), id, h.StateTTL)
	if err != nil {
		if errors.Is(err, application.ErrCompanyNotFound) {
			response.Error[any](c, http.StatusNotFound, "company not found", nil)
			return
		}
		h.Logger.WithError(err).Error("authorize begin failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"authorize_url": url}, "", nil)
}

// Callback is the OAuth redirect target. The state ties the callback to the
// company that started the flow.
func (h *ConnectionHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.Error[any](c, http.StatusBadRequest, "missing code or state", nil)
		return
	}

	company, err := h.Connections.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidState):
			response.Error[any](c, http.StatusBadRequest, "invalid or expired state", nil)
		case errors.Is(err, application.ErrCompanyNotFound):
			response.Error[any](c, http.StatusNotFound, "company not found", nil)
		default:
			h.Logger.WithError(err).Error("oauth callback failed")
			response.Error[any](c, http.StatusBadGateway, "provider exchange failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, company.Public(), "company connected", nil)
}
