package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wicaksana/ledgeraudit/internal/container"
	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
)

type SystemModule struct {
	Health *handlers.HealthHandler
}

func NewSystemModule(h *handlers.HealthHandler) *SystemModule {
	return &SystemModule{Health: h}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Health.Check)

	if container.GetConfig().DebugMetricsEnabled {
		rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}
