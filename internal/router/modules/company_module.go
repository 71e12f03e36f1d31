package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
)

type CompanyModule struct {
	Handler *handlers.CompanyHandler
}

func NewCompanyModule(h *handlers.CompanyHandler) *CompanyModule {
	return &CompanyModule{Handler: h}
}

func (m *CompanyModule) Register(rg *gin.RouterGroup) {
	rg.GET("/companies", middleware.RequireAdmin(), m.Handler.List)
	rg.POST("/companies", middleware.RequireAdmin(), m.Handler.Create)
	rg.GET("/companies/:id", m.Handler.Get)
	rg.GET("/companies/:id/trial-balance", m.Handler.TrialBalance)
}
