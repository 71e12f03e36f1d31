package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wicaksana/ledgeraudit/internal/container"
	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Login gets a tight per-IP limit; credential stuffing is the threat.
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.GET("/auth/me", m.Handler.Me)
}
