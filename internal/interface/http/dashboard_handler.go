package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/pkg/response"
)

type DashboardHandler struct {
	Journals *application.JournalService
	Logger   *logrus.Logger
}

func NewDashboardHandler(journals *application.JournalService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Journals: journals, Logger: logger}
}

// Get returns the scoped company's dashboard summary.
func (h *DashboardHandler) Get(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}

	d, err := h.Journals.GetDashboard(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrCompanyNotFound) {
			response.Error[any](c, http.StatusNotFound, "company not found", nil)
			return
		}
		h.Logger.WithError(err).Error("dashboard build failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success(c, http.StatusOK, d, "", nil)
}
