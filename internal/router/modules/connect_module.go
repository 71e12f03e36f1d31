package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
)

type ConnectModule struct {
	Handler *handlers.ConnectionHandler
}

func NewConnectModule(h *handlers.ConnectionHandler) *ConnectModule {
	return &ConnectModule{Handler: h}
}

func (m *ConnectModule) Register(rg *gin.RouterGroup) {
	rg.GET("/connect/authorize", middleware.RequireAdmin(), m.Handler.Authorize)
	// Callback is hit by the provider redirect; the signed state gates it.
	rg.GET("/connect/callback", m.Handler.Callback)
}
