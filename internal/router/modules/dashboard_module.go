package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
)

type DashboardModule struct {
	Dashboard *handlers.DashboardHandler
	Reports   *handlers.ReportHandler
}

func NewDashboardModule(d *handlers.DashboardHandler, r *handlers.ReportHandler) *DashboardModule {
	return &DashboardModule{Dashboard: d, Reports: r}
}

func (m *DashboardModule) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard", m.Dashboard.Get)
	rg.POST("/reports/journal-export", m.Reports.ExportJournal)
}
