package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
	"github.com/wicaksana/ledgeraudit/pkg/i18n"
)

type fakeValidator struct {
	user  *entity.PublicUser
	token string
}

func (f *fakeValidator) ValidateSession(ctx context.Context, token string) (*entity.PublicUser, error) {
	if f.user != nil && token == f.token {
		return f.user, nil
	}
	return nil, errors.New("unauthenticated")
}

func testEngine(t *testing.T, v *fakeValidator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := i18n.Load("ja")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	r := gin.New()
	r.Use(NewGate(v, catalog, helpers.NewCookie("", false)).Handler())

	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/api/health", ok)
	r.GET("/api/journals", ok)
	r.GET("/ja/dashboard", ok)
	r.GET("/en/dashboard", ok)
	return r
}

func get(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGatePublicPathNeedsNoSession(t *testing.T) {
	r := testEngine(t, &fakeValidator{})

	w := get(r, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestGateAPIWithoutCredentials(t *testing.T) {
	r := testEngine(t, &fakeValidator{})

	w := get(r, "/api/journals", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("success = true on a 401")
	}
	if body.Message != "unauthenticated" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestGateAPIAcceptsCookieAndBearer(t *testing.T) {
	v := &fakeValidator{
		token: "tok-1",
		user:  &entity.PublicUser{ID: "u1", Role: entity.RoleStandard, CompanyID: "c1"},
	}
	r := testEngine(t, v)

	w := get(r, "/api/journals", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: "tok-1"})
	})
	if w.Code != http.StatusOK {
		t.Errorf("cookie auth status = %d, want 200", w.Code)
	}

	w = get(r, "/api/journals", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer tok-1")
	})
	if w.Code != http.StatusOK {
		t.Errorf("bearer auth status = %d, want 200", w.Code)
	}

	w = get(r, "/api/journals", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: "tok-2"})
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestGatePageWithoutSessionRedirectsToLogin(t *testing.T) {
	r := testEngine(t, &fakeValidator{})

	w := get(r, "/en/dashboard", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/en/login" {
		t.Errorf("location = %q, want /en/login", loc)
	}
}

func TestGatePageWithSessionPasses(t *testing.T) {
	v := &fakeValidator{
		token: "tok-1",
		user:  &entity.PublicUser{ID: "u1", Role: entity.RoleAdmin, CompanyID: "c1"},
	}
	r := testEngine(t, v)

	w := get(r, "/ja/dashboard", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: "tok-1"})
	})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestGateMissingLocaleRedirects(t *testing.T) {
	r := testEngine(t, &fakeValidator{})

	w := get(r, "/dashboard", func(req *http.Request) {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	})
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/en/dashboard" {
		t.Errorf("location = %q, want /en/dashboard", loc)
	}

	// no header falls back to the default locale
	w = get(r, "/dashboard", nil)
	if loc := w.Header().Get("Location"); loc != "/ja/dashboard" {
		t.Errorf("location = %q, want /ja/dashboard", loc)
	}
}
