package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
)

type PagesModule struct {
	Handler *handlers.PageHandler
}

func NewPagesModule(h *handlers.PageHandler) *PagesModule {
	return &PagesModule{Handler: h}
}

func (m *PagesModule) Register(rg *gin.RouterGroup) {
	rg.GET("/:locale/login", m.Handler.Login)
	rg.GET("/:locale/dashboard", m.Handler.Dashboard)
}
