package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/integration/provider"
)

const testVaultKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

type fakeConnectionRepo struct {
	conns map[string]*entity.Connection
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{conns: map[string]*entity.Connection{}}
}

func (r *fakeConnectionRepo) Upsert(ctx context.Context, c *entity.Connection) error {
	r.conns[c.CompanyID] = c
	return nil
}

func (r *fakeConnectionRepo) Get(ctx context.Context, companyID string) (*entity.Connection, error) {
	return r.conns[companyID], nil
}

func (r *fakeConnectionRepo) Delete(ctx context.Context, companyID string) error {
	delete(r.conns, companyID)
	return nil
}

type fakeOAuth struct {
	exchanged []string
	refreshed []string
	companies []provider.Company
}

func (f *fakeOAuth) AuthorizeURL(state string) string {
	return "https://provider.example.com/oauth/authorize?state=" + state
}

func (f *fakeOAuth) Exchange(ctx context.Context, code string) (*provider.TokenSet, error) {
	f.exchanged = append(f.exchanged, code)
	return &provider.TokenSet{AccessToken: "access-" + code, RefreshToken: "refresh-" + code, ExpiresIn: 3600}, nil
}

func (f *fakeOAuth) Refresh(ctx context.Context, refreshToken string) (*provider.TokenSet, error) {
	f.refreshed = append(f.refreshed, refreshToken)
	return &provider.TokenSet{AccessToken: "access-new", RefreshToken: "refresh-new", ExpiresIn: 3600}, nil
}

func (f *fakeOAuth) Companies(ctx context.Context, accessToken string) ([]provider.Company, error) {
	return f.companies, nil
}

func newConnectionService(t *testing.T, companies *fakeCompanyRepo, conns *fakeConnectionRepo, client *fakeOAuth) *ConnectionService {
	t.Helper()
	vault, err := provider.NewTokenVault(testVaultKey)
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	states := provider.NewStateSigner("test-secret", 10*time.Minute)
	return NewConnectionService(companies, conns, client, vault, states, nil, nil)
}

func TestAuthorizeAndCallbackFlow(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1", Name: "Demo"})
	conns := newFakeConnectionRepo()
	client := &fakeOAuth{companies: []provider.Company{{ID: "ext-c1", Name: "Demo", FiscalYearStartMonth: 4}}}
	svc := newConnectionService(t, companies, conns, client)
	ctx := context.Background()

	url, err := svc.BeginAuthorize(ctx, "c1", 10*time.Minute)
	if err != nil {
		t.Fatalf("begin authorize: %v", err)
	}
	_, state, ok := strings.Cut(url, "state=")
	if !ok || state == "" {
		t.Fatalf("authorize url %q carries no state", url)
	}

	company, err := svc.HandleCallback(ctx, "the-code", state)
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if company.ExternalID != "ext-c1" {
		t.Errorf("external id = %q, want ext-c1", company.ExternalID)
	}
	if company.FiscalYearStartMonth != 4 {
		t.Errorf("fiscal year start = %d, want 4", company.FiscalYearStartMonth)
	}

	conn := conns.conns["c1"]
	if conn == nil {
		t.Fatal("no connection stored")
	}
	// tokens must not land in the store as plaintext
	if strings.Contains(string(conn.AccessTokenEnc), "access-the-code") {
		t.Error("access token stored unsealed")
	}

	got, err := svc.AccessToken(ctx, "c1")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	if got != "access-the-code" {
		t.Errorf("access token = %q, want access-the-code", got)
	}
	if len(client.refreshed) != 0 {
		t.Errorf("fresh token was refreshed anyway: %v", client.refreshed)
	}
}

func TestHandleCallbackRejectsBadState(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1"})
	svc := newConnectionService(t, companies, newFakeConnectionRepo(), &fakeOAuth{})

	if _, err := svc.HandleCallback(context.Background(), "code", "not-a-state"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}

	// state signed with a different secret
	other := provider.NewStateSigner("other-secret", 10*time.Minute)
	forged, err := other.Sign("c1", "nonce")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.HandleCallback(context.Background(), "code", forged); !errors.Is(err, ErrInvalidState) {
		t.Errorf("forged state err = %v, want ErrInvalidState", err)
	}
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1", ExternalID: "ext-c1"})
	conns := newFakeConnectionRepo()
	client := &fakeOAuth{}
	svc := newConnectionService(t, companies, conns, client)
	ctx := context.Background()

	if err := svc.storeTokens(ctx, "c1", &provider.TokenSet{
		AccessToken:  "stale-access",
		RefreshToken: "the-refresh",
		ExpiresIn:    60, // inside the refresh skew
	}); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := svc.AccessToken(ctx, "c1")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	if got != "access-new" {
		t.Errorf("access token = %q, want refreshed access-new", got)
	}
	if len(client.refreshed) != 1 || client.refreshed[0] != "the-refresh" {
		t.Errorf("refreshed with %v, want [the-refresh]", client.refreshed)
	}
}

func TestAccessTokenNotConnected(t *testing.T) {
	companies := newFakeCompanyRepo(&entity.Company{ID: "c1"})
	svc := newConnectionService(t, companies, newFakeConnectionRepo(), &fakeOAuth{})

	if _, err := svc.AccessToken(context.Background(), "c1"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}
