package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
	"github.com/wicaksana/ledgeraudit/pkg/response"
	"github.com/wicaksana/ledgeraudit/pkg/validation"
)

type CompanyHandler struct {
	Companies repo.CompanyRepository
	Journals  *application.JournalService
	Logger    *logrus.Logger
}

func NewCompanyHandler(companies repo.CompanyRepository, journals *application.JournalService, logger *logrus.Logger) *CompanyHandler {
	return &CompanyHandler{Companies: companies, Journals: journals, Logger: logger}
}

type createCompanyRequest struct {
	Name                 string `json:"name" binding:"required"`
	FiscalYearStartMonth int    `json:"fiscal_year_start_month" binding:"required,month"`
}

// Create registers a company. Admin only.
func (h *CompanyHandler) Create(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid request", validation.ToDetails(err))
		return
	}

	company := &entity.Company{Name: req.Name, FiscalYearStartMonth: req.FiscalYearStartMonth}
	if err := h.Companies.Create(c.Request.Context(), company); err != nil {
		h.Logger.WithError(err).Error("create company failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success(c, http.StatusCreated, company.Public(), "company created", nil)
}

// List returns every company. Admin only.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.Companies.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list companies failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	out := make([]*entity.PublicCompany, 0, len(companies))
	for _, co := range companies {
		out = append(out, co.Public())
	}
	response.Success(c, http.StatusOK, out, "", nil)
}

// Get returns one company within the caller's scope.
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}
	company, err := h.Companies.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "company not found", nil)
		return
	}
	response.Success(c, http.StatusOK, company.Public(), "", nil)
}

// TrialBalance proxies the provider trial balance report.
func (h *CompanyHandler) TrialBalance(c *gin.Context) {
	id, ok := companyScope(c)
	if !ok {
		response.Error[any](c, http.StatusForbidden, "company out of scope", nil)
		return
	}

	rows, err := h.Journals.TrialBalance(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrCompanyNotFound):
			response.Error[any](c, http.StatusNotFound, "company not found", nil)
		case errors.Is(err, application.ErrNotConnected):
			response.Error[any](c, http.StatusConflict, "company is not connected", nil)
		default:
			h.Logger.WithError(err).Error("trial balance fetch failed")
			response.Error[any](c, http.StatusBadGateway, "provider unavailable", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, rows, "", nil)
}
