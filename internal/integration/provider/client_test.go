package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExchangeSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "the-code" {
			t.Errorf("code = %q", got)
		}
		if got := r.PostForm.Get("client_id"); got != "cid" {
			t.Errorf("client_id = %q", got)
		}
		_ = json.NewEncoder(w).Encode(TokenSet{
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresIn:    3600,
			TokenType:    "bearer",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "cs", "http://localhost/cb")
	ts, err := c.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if ts.AccessToken != "at" || ts.RefreshToken != "rt" {
		t.Errorf("tokens = %+v", ts)
	}

	now := time.Now()
	if exp := ts.ExpiresAt(now); !exp.Equal(now.Add(time.Hour)) {
		t.Errorf("expires at = %v, want now+1h", exp)
	}
}

func TestExchangeSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "cs", "http://localhost/cb")
	if _, err := c.Exchange(context.Background(), "bad"); err == nil {
		t.Error("provider error did not propagate")
	}
}

func TestJournalsPassesAuthAndPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("company_id") != "ext-c1" || q.Get("page") != "2" || q.Get("per_page") != "50" {
			t.Errorf("query = %v", q)
		}
		if q.Get("updated_since") != "2026-08-01" {
			t.Errorf("updated_since = %q", q.Get("updated_since"))
		}
		_ = json.NewEncoder(w).Encode(JournalPage{
			Journals: []Journal{{ID: "j1", EntryDate: "2026-08-02"}},
			NextPage: 0,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "cs", "http://localhost/cb")
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	page, err := c.Journals(context.Background(), "tok", "ext-c1", since, 2, 50)
	if err != nil {
		t.Fatalf("journals: %v", err)
	}
	if len(page.Journals) != 1 || page.Journals[0].ID != "j1" {
		t.Errorf("page = %+v", page)
	}
}

func TestAuthorizeURL(t *testing.T) {
	c := NewClient("https://p.example.com/", "cid", "cs", "http://localhost/cb")
	u := c.AuthorizeURL("the-state")
	want := "https://p.example.com/oauth/authorize?client_id=cid&redirect_uri=http%3A%2F%2Flocalhost%2Fcb&response_type=code&state=the-state"
	if u != want {
		t.Errorf("url = %q\nwant %q", u, want)
	}
}
