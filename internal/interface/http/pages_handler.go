package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
	"github.com/wicaksana/ledgeraudit/pkg/i18n"
)

//go:embed pages/*.html.tmpl
var pageFS embed.FS

// PageHandler renders the server-side pages. All strings come from the
// locale bundle resolved by the gate.
type PageHandler struct {
	Catalog *i18n.Catalog
	tmpl    *template.Template
	Logger  *logrus.Logger
}

func NewPageHandler(catalog *i18n.Catalog, logger *logrus.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFS(pageFS, "pages/*.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &PageHandler{Catalog: catalog, tmpl: tmpl, Logger: logger}, nil
}

type pageData struct {
	Locale string
	T      map[string]string
	User   any
}

func (h *PageHandler) render(c *gin.Context, name, locale string) {
	user, _ := middleware.UserFromCtx(c)
	data := pageData{
		Locale: locale,
		T:      h.Catalog.Bundle(locale).Messages,
		User:   user,
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		h.Logger.WithError(err).WithField("template", name).Error("page render failed")
	}
}

// Login renders the login form.
func (h *PageHandler) Login(c *gin.Context) {
	h.render(c, "login.html.tmpl", h.locale(c))
}

// Dashboard renders the dashboard shell; data loads via the API.
func (h *PageHandler) Dashboard(c *gin.Context) {
	h.render(c, "dashboard.html.tmpl", h.locale(c))
}

func (h *PageHandler) locale(c *gin.Context) string {
	if loc := c.Param("locale"); loc != "" && h.Catalog.Supported(loc) {
		return loc
	}
	if loc := c.GetString("locale"); loc != "" {
		return loc
	}
	return h.Catalog.Default()
}
