package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
)

type JournalModule struct {
	Handler *handlers.JournalHandler
}

func NewJournalModule(h *handlers.JournalHandler) *JournalModule {
	return &JournalModule{Handler: h}
}

func (m *JournalModule) Register(rg *gin.RouterGroup) {
	rg.GET("/journals", m.Handler.List)
	rg.GET("/journals/search", m.Handler.Search)
	rg.GET("/journals/:entryID", m.Handler.Get)
	rg.POST("/sync", middleware.RequireAdmin(), m.Handler.Sync)
}
