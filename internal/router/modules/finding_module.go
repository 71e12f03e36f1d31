package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/wicaksana/ledgeraudit/internal/interface/http"
)

type FindingModule struct {
	Handler *handlers.FindingHandler
}

func NewFindingModule(h *handlers.FindingHandler) *FindingModule {
	return &FindingModule{Handler: h}
}

func (m *FindingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/findings", m.Handler.List)
	rg.POST("/findings/:findingID/resolve", m.Handler.Resolve)
}
