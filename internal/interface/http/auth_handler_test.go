package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/application"
	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/interface/middleware"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
	"github.com/wicaksana/ledgeraudit/pkg/i18n"
	"github.com/wicaksana/ledgeraudit/pkg/validation"
)

type memUserRepo struct {
	byEmail map[string]*entity.User
}

func (r *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.byEmail[email], nil
}

func (r *memUserRepo) Update(ctx context.Context, u *entity.User) error { return nil }

func (r *memUserRepo) UpsertByEmail(ctx context.Context, u *entity.User) error { return nil }

type memSessionRepo struct {
	byToken map[string]*entity.Session
}

func (r *memSessionRepo) Create(ctx context.Context, s *entity.Session) error {
	r.byToken[s.Token] = s
	return nil
}

func (r *memSessionRepo) Get(ctx context.Context, token string) (*entity.Session, error) {
	s := r.byToken[token]
	if s == nil || !s.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (r *memSessionRepo) Delete(ctx context.Context, token string) error {
	delete(r.byToken, token)
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type memAuditRepo struct{}

func (r *memAuditRepo) Insert(ctx context.Context, l *entity.AuditLog) error { return nil }

var initValidation sync.Once

func newAuthRig(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	initValidation.Do(validation.Init)

	hash, err := helpers.HashPassword("admin123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &memUserRepo{byEmail: map[string]*entity.User{
		"admin@example.com": {ID: "u1", Email: "admin@example.com", Name: "Admin", Role: entity.RoleAdmin, PasswordHash: hash},
	}}
	sessions := &memSessionRepo{byToken: map[string]*entity.Session{}}

	logger := logrus.New()
	auth := application.NewAuthService(users, sessions, &memAuditRepo{}, nil, logger, 24*time.Hour)

	catalog, err := i18n.Load("ja")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cookies := helpers.NewCookie("", false)

	r := gin.New()
	r.Use(middleware.NewGate(auth, catalog, cookies).Handler())

	h := NewAuthHandler(auth, cookies, logger)
	api := r.Group("/api")
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)
	return r
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginThenMe(t *testing.T) {
	r := newAuthRig(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	cookie := sessionCookie(w)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no session cookie set on login")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not httpOnly")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", w.Code, w.Body.String())
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.Email != "admin@example.com" || body.Data.Role != "admin" {
		t.Errorf("me body = %s", w.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := newAuthRig(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"wrong-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if sessionCookie(w) != nil {
		t.Error("cookie set on failed login")
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	r := newAuthRig(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"not-an-email","password":"short"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLogoutKillsSession(t *testing.T) {
	r := newAuthRig(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("no cookie from login")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", w.Code)
	}
}
