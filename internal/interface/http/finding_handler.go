package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
	"github.com/wicaksana/ledgeraudit/pkg/response"
)

type FindingHandler struct {
	Audit  *application.AuditService
	Logger *logrus.Logger
}

func NewFindingHandler(audit *application.AuditService, logger *logrus.Logger) *FindingHandler {
	return &FindingHandler{Audit: audit, Logger: logger}
}

// List returns the scoped company's findings, optionally filtered by
// status and severity.
func (h *FindingHandler) List(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}

	f := repo.FindingFilter{CompanyID: id}
	if v := c.Query("status"); v != "" {
		st := entity.FindingStatus(v)
		if st != entity.FindingOpen && st != entity.FindingResolved {
			response.Error[any](c, http.StatusBadRequest, "invalid status", nil)
			return
		}
		f.Status = st
	}
	if v := c.Query("severity"); v != "" {
		sev := entity.Severity(v)
		if sev != entity.SeverityInfo && sev != entity.SeverityWarning && sev != entity.SeverityError {
			response.Error[any](c, http.StatusBadRequest, "invalid severity", nil)
			return
		}
		f.Severity = sev
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	findings, err := h.Audit.ListFindings(c.Request.Context(), f)
	if err != nil {
		h.Logger.WithError(err).Error("list findings failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success(c, http.StatusOK, findings, "", gin.H{"limit": f.Limit, "offset": f.Offset})
}

// Resolve marks a finding handled.
func (h *FindingHandler) Resolve(c *gin.Context) {
	id := c.Param("findingID")

	finding, err := h.Audit.GetFinding(c.Request.Context(), id)
	if err != nil || !canReadCompany(c, finding.CompanyID) {
		response.Error[any](c, http.StatusNotFound, "finding not found", nil)
		return
	}

	finding, err = h.Audit.ResolveFinding(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrFindingNotFound) {
			response.Error[any](c, http.StatusNotFound, "finding not found", nil)
			return
		}
		h.Logger.WithError(err).Error("resolve finding failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success(c, http.StatusOK, finding, "finding resolved", nil)
}
