package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
	"github.com/wicaksana/ledgeraudit/pkg/i18n"
	"github.com/wicaksana/ledgeraudit/pkg/response"
)

// SessionValidator resolves a session token to its public user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*entity.PublicUser, error)
}

// defaultPublicPaths are reachable with no session. Matched by substring
// against the request path. The OAuth callback is public because the
// provider redirect carries no session; its signed state gates it instead.
var defaultPublicPaths = []string{
	"/login",
	"/api/auth/login",
	"/api/auth/logout",
	"/api/health",
	"/api/connect/callback",
}

// Gate classifies every inbound request (public, API, page) and decides to
// pass, reject or redirect. API routes answer a missing or invalid session
// with 401 JSON; page routes redirect to the locale-qualified login page.
// Both route classes validate the token against the session store.
type Gate struct {
	Auth        SessionValidator
	Catalog     *i18n.Catalog
	Cookies     *helpers.Manager
	PublicPaths []string
}

func NewGate(auth SessionValidator, catalog *i18n.Catalog, cookies *helpers.Manager) *Gate {
	return &Gate{
		Auth:        auth,
		Catalog:     catalog,
		Cookies:     cookies,
		PublicPaths: defaultPublicPaths,
	}
}

// Handler is registered on the engine, ahead of routing.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if g.isPublic(path) {
			c.Next()
			return
		}

		if isAPI(path) {
			g.gateAPI(c)
			return
		}

		// Page route: a missing locale prefix means locale resolution,
		// not authentication.
		locale, _, ok := g.Catalog.Resolve(path)
		if !ok {
			target := "/" + g.Catalog.Pick(c.GetHeader("Accept-Language"))
			if path != "/" {
				target += path
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Set("locale", locale)

		g.gatePage(c, locale)
	}
}

func (g *Gate) isPublic(path string) bool {
	for _, p := range g.PublicPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func isAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func (g *Gate) gateAPI(c *gin.Context) {
	user, err := g.Auth.ValidateSession(c.Request.Context(), TokenFromRequest(c))
	if err != nil || user == nil {
		g.Cookies.Clear(c)
		response.Error[any](c, http.StatusUnauthorized, "unauthenticated", nil)
		c.Abort()
		return
	}
	setUser(c, user)
	c.Next()
}

func (g *Gate) gatePage(c *gin.Context, locale string) {
	user, err := g.Auth.ValidateSession(c.Request.Context(), TokenFromRequest(c))
	if err != nil || user == nil {
		g.Cookies.Clear(c)
		c.Redirect(http.StatusFound, "/"+locale+"/login")
		c.Abort()
		return
	}
	setUser(c, user)
	c.Next()
}

// TokenFromRequest pulls the session token from the cookie, falling back to
// a bearer Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.SessionCookieName); err == nil && tok != "" {
		return tok
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func setUser(c *gin.Context, user *entity.PublicUser) {
	c.Set("user", user)
	c.Set("userID", user.ID)
	c.Set("userRole", string(user.Role))
	c.Set("companyID", user.CompanyID)
}

// UserFromCtx returns the authenticated user stored by the gate.
func UserFromCtx(c *gin.Context) (*entity.PublicUser, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.PublicUser)
	return u, ok
}
