package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
	"github.com/wicaksana/ledgeraudit/pkg/response"
)

type JournalHandler struct {
	Journals *application.JournalService
	Logger   *logrus.Logger
}

func NewJournalHandler(journals *application.JournalService, logger *logrus.Logger) *JournalHandler {
	return &JournalHandler{Journals: journals, Logger: logger}
}

// List returns the scoped company's entries, newest first.
func (h *JournalHandler) List(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}

	f := repo.JournalFilter{CompanyID: id}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid from date", nil)
			return
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid to date", nil)
			return
		}
		f.To = t
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.Journals.List(c.Request.Context(), f)
	if err != nil {
		h.Logger.WithError(err).Error("list journals failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success(c, http.StatusOK, entries, "", gin.H{"limit": f.Limit, "offset": f.Offset})
}

// Search runs a full-text query over the scoped company's entries.
func (h *JournalHandler) Search(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	hits, err := h.Journals.Search(c.Request.Context(), id, q, limit)
	if err != nil {
		h.Logger.WithError(err).Error("journal search failed")
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "", nil)
}

// Get returns a single entry with lines.
func (h *JournalHandler) Get(c *gin.Context) {
	entry, err := h.Journals.Get(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "entry not found", nil)
		return
	}

	// scope check after lookup: the entry carries its company
	if !canReadCompany(c, entry.CompanyID) {
		response.Error[any](c, http.StatusNotFound, "entry not found", nil)
		return
	}
	response.Success(c, http.StatusOK, entry, "", nil)
}

// Sync pulls new entries from the provider for the scoped company.
func (h *JournalHandler) Sync(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}

	res, err := h.Journals.SyncCompany(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrCompanyNotFound):
			response.Error[any](c, http.StatusNotFound, "company not found", nil)
		case errors.Is(err, application.ErrNotConnected):
			response.Error[any](c, http.StatusConflict, "company is not connected", nil)
		default:
			h.Logger.WithError(err).Error("journal sync failed")
			response.Error[any](c, http.StatusBadGateway, "sync failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, res, "sync complete", nil)
}
