package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	repo "github.com/wicaksana/ledgeraudit/internal/domain/repository"
	"github.com/wicaksana/ledgeraudit/internal/integration/provider"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
)

// refreshSkew is how close to expiry a token may get before a refresh is
// forced ahead of an API call.
const refreshSkew = 5 * time.Minute

// OAuthClient is the subset of the provider client used by the connection
// flow, abstracted for tests.
type OAuthClient interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*provider.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*provider.TokenSet, error)
	Companies(ctx context.Context, accessToken string) ([]provider.Company, error)
}

// ConnectionService runs the OAuth connect flow and hands out fresh access
// tokens for provider calls. Tokens live sealed in Postgres; the vault key
// never leaves the process.
type ConnectionService struct {
	Companies   repo.CompanyRepository
	Connections repo.ConnectionRepository
	Client      OAuthClient
	Vault       *provider.TokenVault
	States      *provider.StateSigner
	Redis       *redis.Client
	Logger      *logrus.Logger
}

func NewConnectionService(companies repo.CompanyRepository, connections repo.ConnectionRepository, client OAuthClient, vault *provider.TokenVault, states *provider.StateSigner, rdb *redis.Client, logger *logrus.Logger) *ConnectionService {
	return &ConnectionService{
		Companies:   companies,
		Connections: connections,
		Client:      client,
		Vault:       vault,
		States:      states,
		Redis:       rdb,
		Logger:      logger,
	}
}

// BeginAuthorize returns the provider consent URL for the company. The
// signed state carries a nonce that is parked in redis for single use.
func (s *ConnectionService) BeginAuthorize(ctx context.Context, companyID string, stateTTL time.Duration) (string, error) {
	if _, err := s.Companies.GetByID(ctx, companyID); err != nil {
		return "", ErrCompanyNotFound
	}

	nonce := uuid.NewString()
	state, err := s.States.Sign(companyID, nonce)
	if err != nil {
		return "", err
	}
	if s.Redis != nil {
		if err := s.Redis.Set(ctx, helpers.KeyOAuthState(nonce), companyID, stateTTL).Err(); err != nil {
			return "", err
		}
	}

	return s.Client.AuthorizeURL(state), nil
}

// HandleCallback verifies the state, exchanges the code, seals the tokens
// and upserts the connection. It also pulls the provider company id into
// the local company record on first connect.
func (s *ConnectionService) HandleCallback(ctx context.Context, code, state string) (*entity.Company, error) {
	claims, err := s.States.Verify(state)
	if err != nil {
		return nil, ErrInvalidState
	}
	if s.Redis != nil {
		// single use: the nonce must still be parked, and is burned here
		n, err := s.Redis.Del(ctx, helpers.KeyOAuthState(claims.Nonce)).Result()
		if err != nil || n == 0 {
			return nil, ErrInvalidState
		}
	}

	company, err := s.Companies.GetByID(ctx, claims.CompanyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}

	tokens, err := s.Client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.storeTokens(ctx, company.ID, tokens); err != nil {
		return nil, err
	}

	if company.ExternalID == "" {
		if err := s.adoptExternalCompany(ctx, company, tokens.AccessToken); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("company_id", company.ID).Warn("could not adopt provider company id")
		}
	}

	return company, nil
}

// adoptExternalCompany links the first provider company to the local record.
func (s *ConnectionService) adoptExternalCompany(ctx context.Context, company *entity.Company, accessToken string) error {
	remote, err := s.Client.Companies(ctx, accessToken)
	if err != nil {
		return err
	}
	if len(remote) == 0 {
		return nil
	}
	company.ExternalID = remote[0].ID
	if remote[0].FiscalYearStartMonth >= 1 && remote[0].FiscalYearStartMonth <= 12 {
		company.FiscalYearStartMonth = remote[0].FiscalYearStartMonth
	}
	return s.Companies.Update(ctx, company)
}

// AccessToken returns a usable access token for the company, refreshing it
// first when it is inside the expiry skew.
func (s *ConnectionService) AccessToken(ctx context.Context, companyID string) (string, error) {
	conn, err := s.Connections.Get(ctx, companyID)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", ErrNotConnected
	}

	if time.Until(conn.TokenExpiresAt) > refreshSkew {
		return s.Vault.Open(conn.AccessTokenEnc)
	}

	refresh, err := s.Vault.Open(conn.RefreshTokenEnc)
	if err != nil {
		return "", err
	}
	tokens, err := s.Client.Refresh(ctx, refresh)
	if err != nil {
		return "", err
	}
	if err := s.storeTokens(ctx, companyID, tokens); err != nil {
		return "", err
	}
	return tokens.AccessToken, nil
}

func (s *ConnectionService) storeTokens(ctx context.Context, companyID string, tokens *provider.TokenSet) error {
	accessEnc, err := s.Vault.Seal(tokens.AccessToken)
	if err != nil {
		return err
	}
	refreshEnc, err := s.Vault.Seal(tokens.RefreshToken)
	if err != nil {
		return err
	}
	return s.Connections.Upsert(ctx, &entity.Connection{
		CompanyID:       companyID,
		AccessTokenEnc:  accessEnc,
		RefreshTokenEnc: refreshEnc,
		TokenExpiresAt:  tokens.ExpiresAt(time.Now()),
	})
}
