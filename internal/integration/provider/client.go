// Package provider is the client for the external accounting SaaS API:
// OAuth2 authorization-code flow, token refresh, and resource fetches
// (companies, journals, trial balance). Calls are sequential HTTP with
// no retry policy; a failure propagates to the caller immediately.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the accounting platform.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	HTTP         *http.Client
}

func NewClient(baseURL, clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		HTTP:         &http.Client{Timeout: 30 * time.Second},
	}
}

// TokenSet is the provider's token response.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ExpiresAt converts ExpiresIn into an absolute deadline.
func (t *TokenSet) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Company is a company record on the provider side.
type Company struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	FiscalYearStartMonth int    `json:"fiscal_year_start_month"`
}

// Journal is one journal entry as the provider reports it.
type Journal struct {
	ID          string        `json:"id"`
	EntryDate   string        `json:"entry_date"` // YYYY-MM-DD
	Description string        `json:"description"`
	PostedAt    time.Time     `json:"posted_at"`
	Lines       []JournalLine `json:"lines"`
}

// JournalLine is a debit or credit leg.
type JournalLine struct {
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name"`
	Side        string `json:"side"` // "debit" or "credit"
	Amount      int64  `json:"amount"`
}

// JournalPage is one page of journal results.
type JournalPage struct {
	Journals []Journal `json:"journals"`
	NextPage int       `json:"next_page"` // 0 when exhausted
}

// TrialBalanceRow is one account aggregate in the trial balance report.
type TrialBalanceRow struct {
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

// AuthorizeURL builds the provider's consent URL with the given state.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURL)
	q.Set("state", state)
	return c.BaseURL + "/oauth/authorize?" + q.Encode()
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.RedirectURL)
	return c.tokenRequest(ctx, form)
}

// Refresh trades a refresh token for a new token set. No coordination or
// backoff: call the endpoint, store the result.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.tokenRequest(ctx, form)
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*TokenSet, error) {
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("provider token endpoint: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	ts := &TokenSet{}
	if err := json.NewDecoder(resp.Body).Decode(ts); err != nil {
		return nil, err
	}
	if ts.AccessToken == "" {
		return nil, fmt.Errorf("provider returned empty access token")
	}
	return ts, nil
}

// Companies lists the companies visible to the token.
func (c *Client) Companies(ctx context.Context, accessToken string) ([]Company, error) {
	var out struct {
		Companies []Company `json:"companies"`
	}
	if err := c.get(ctx, accessToken, "/api/1/companies", nil, &out); err != nil {
		return nil, err
	}
	return out.Companies, nil
}

// Journals fetches one page of journal entries updated since the given date.
func (c *Client) Journals(ctx context.Context, accessToken, companyID string, since time.Time, page, pageSize int) (*JournalPage, error) {
	q := url.Values{}
	q.Set("company_id", companyID)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(pageSize))
	if !since.IsZero() {
		q.Set("updated_since", since.Format("2006-01-02"))
	}

	out := &JournalPage{}
	if err := c.get(ctx, accessToken, "/api/1/journals", q, out); err != nil {
		return nil, err
	}
	return out, nil
}

// TrialBalance fetches the trial balance for the fiscal year containing now.
func (c *Client) TrialBalance(ctx context.Context, accessToken, companyID string, fiscalYearStartMonth int) ([]TrialBalanceRow, error) {
	q := url.Values{}
	q.Set("company_id", companyID)
	q.Set("fiscal_year_start_month", strconv.Itoa(fiscalYearStartMonth))

	var out struct {
		Balances []TrialBalanceRow `json:"balances"`
	}
	if err := c.get(ctx, accessToken, "/api/1/reports/trial_balance", q, &out); err != nil {
		return nil, err
	}
	return out.Balances, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, q url.Values, dest any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("provider %s: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
