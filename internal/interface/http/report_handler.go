package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/pkg/response"
)

type ReportHandler struct {
	Reports *application.ReportService
	Logger  *logrus.Logger
}

func NewReportHandler(reports *application.ReportService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{Reports: reports, Logger: logger}
}

// ExportJournal writes the scoped company's journal to object storage as
// CSV and returns the object URL.
func (h *ReportHandler) ExportJournal(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid from date", nil)
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid to date", nil)
			return
		}
		to = t
	}

	res, err := h.Reports.ExportJournalCSV(c.Request.Context(), id, from, to)
	if err != nil {
		h.Logger.WithError(err).Error("journal export failed")
		response.Error[any](c, http.StatusInternalServerError, "export failed", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "export complete", nil)
}
