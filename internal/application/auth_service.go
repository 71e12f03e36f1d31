package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
)

// RequestMeta carries the caller context recorded in audit logs.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthService owns the session lifecycle: it is the only component that
// creates or revokes sessions.
type AuthService struct {
	Users    repo.UserRepository
	Sessions repo.SessionRepository
	Audit    repo.AuditLogRepository
	Redis    *redis.Client // optional session cache
	Logger   *logrus.Logger
	TTL      time.Duration
}

func NewAuthService(users repo.UserRepository, sessions repo.SessionRepository, audit repo.AuditLogRepository, rdb *redis.Client, logger *logrus.Logger, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{Users: users, Sessions: sessions, Audit: audit, Redis: rdb, Logger: logger, TTL: ttl}
}

// cachedSession is the redis value behind a session token.
type cachedSession struct {
	User      entity.PublicUser `json:"user"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Login verifies the credentials and issues a session. Every failure is
// reported as ErrInvalidCredentials; a burn comparison keeps the
// unknown-email path as slow as the wrong-password path.
func (s *AuthService) Login(ctx context.Context, email, password string, meta RequestMeta) (*entity.User, *entity.Session, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		helpers.BurnCompare(password)
		s.audit(ctx, "", email, "login", meta, map[string]any{"success": false})
		return nil, nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		s.audit(ctx, u.ID, u.Email, "login", meta, map[string]any{"success": false})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := helpers.NewSessionToken()
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	sess := &entity.Session{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: now.Add(s.TTL),
		CreatedAt: now,
	}
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, nil, err
	}

	s.cachePut(ctx, sess, u)
	s.audit(ctx, u.ID, u.Email, "login", meta, map[string]any{"success": true})
	return u, sess, nil
}

// ValidateSession resolves a token to its user. Unknown and expired tokens
// both return ErrUnauthenticated; callers should clear any stored cookie.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*entity.PublicUser, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	if s.Redis != nil {
		var cached cachedSession
		hit, err := helpers.RedisGetJSON(ctx, s.Redis, helpers.KeySession(token), &cached)
		if err == nil && hit {
			if cached.ExpiresAt.After(time.Now()) {
				return &cached.User, nil
			}
			_ = helpers.RedisDel(ctx, s.Redis, helpers.KeySession(token))
			return nil, ErrUnauthenticated
		}
	}

	sess, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrUnauthenticated
	}

	// A session must always reference a live user.
	u, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil || u == nil {
		return nil, ErrUnauthenticated
	}

	s.cachePut(ctx, sess, u)
	return u.Public(), nil
}

// Logout revokes the session. Revoking an unknown token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string, meta RequestMeta) error {
	if token == "" {
		return nil
	}

	// Resolve the actor before the row disappears.
	var actorID, actorEmail string
	if sess, err := s.Sessions.Get(ctx, token); err == nil && sess != nil {
		actorID = sess.UserID
		if u, err := s.Users.GetByID(ctx, sess.UserID); err == nil && u != nil {
			actorEmail = u.Email
		}
	}

	if s.Redis != nil {
		_ = helpers.RedisDel(ctx, s.Redis, helpers.KeySession(token))
	}
	if err := s.Sessions.Delete(ctx, token); err != nil {
		return err
	}
	s.audit(ctx, actorID, actorEmail, "logout", meta, map[string]any{"success": true})
	return nil
}

// Sweep deletes expired session rows. Run daily by the sync worker.
func (s *AuthService) Sweep(ctx context.Context) (int64, error) {
	return s.Sessions.DeleteExpired(ctx)
}

func (s *AuthService) cachePut(ctx context.Context, sess *entity.Session, u *entity.User) {
	if s.Redis == nil {
		return
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return
	}
	val := cachedSession{User: *u.Public(), ExpiresAt: sess.ExpiresAt}
	if err := helpers.RedisSetJSON(ctx, s.Redis, helpers.KeySession(sess.Token), val, ttl); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("session cache write failed")
	}
}

// audit appends a log record; failures are logged and never block the
// primary operation.
func (s *AuthService) audit(ctx context.Context, userID, email, action string, meta RequestMeta, extra map[string]any) {
	if s.Audit == nil {
		return
	}
	err := s.Audit.Insert(ctx, &entity.AuditLog{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  extra,
	})
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("action", action).Warn("audit log write failed")
	}
}
