package strava

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testOAuthConfig(t *testing.T, handler http.HandlerFunc) *oauth2.Config {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  srv.URL + "/authorize",
			TokenURL: srv.URL + "/token",
		},
	}
}

func TestTokenSourceCapturesRotatedRefreshToken(t *testing.T) {
	t.Parallel()

	var refreshCalls int
	cfg := testOAuthConfig(t, func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}

		wantRefresh := "refresh-0"
		if refreshCalls == 2 {
			wantRefresh = "refresh-1"
		}
		if got := r.Form.Get("refresh_token"); got != wantRefresh {
			t.Errorf("refresh call %d used token %q, want %q (rotation not captured)", refreshCalls, got, wantRefresh)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"access-%d","refresh_token":"refresh-%d","token_type":"Bearer","expires_in":-1}`,
			refreshCalls, refreshCalls)
	})

	cred := &Credential{RefreshToken: "refresh-0"}
	src := NewTokenSource(cfg, cred)

	// expires_in is negative, so every Token() call refreshes.
	if _, err := src.Token(); err != nil {
		t.Fatalf("first Token() error = %v", err)
	}
	if cred.RefreshToken != "refresh-1" {
		t.Fatalf("RefreshToken = %q, want refresh-1", cred.RefreshToken)
	}

	if _, err := src.Token(); err != nil {
		t.Fatalf("second Token() error = %v", err)
	}
	if cred.RefreshToken != "refresh-2" {
		t.Errorf("RefreshToken = %q, want refresh-2", cred.RefreshToken)
	}
}

func TestTokenSourceValidTokenSkipsRefresh(t *testing.T) {
	t.Parallel()

	cfg := testOAuthConfig(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint must not be called for a valid access token")
	})

	cred := &Credential{
		AccessToken:  "still-good",
		RefreshToken: "refresh-0",
		Expiry:       time.Now().Add(time.Hour),
	}

	token, err := NewTokenSource(cfg, cred).Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token.AccessToken != "still-good" {
		t.Errorf("AccessToken = %q, want still-good", token.AccessToken)
	}
}

func TestTokenSourceRefreshFailureIsCredentialError(t *testing.T) {
	t.Parallel()

	cfg := testOAuthConfig(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})

	src := NewTokenSource(cfg, &Credential{RefreshToken: "revoked"})
	if _, err := src.Token(); !IsCredentialError(err) {
		t.Errorf("Token() error = %v, want credential error", err)
	}
}

func TestTokenSourceNoRefreshToken(t *testing.T) {
	t.Parallel()

	cfg := testOAuthConfig(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint must not be called without a refresh token")
	})

	src := NewTokenSource(cfg, &Credential{})
	if _, err := src.Token(); !IsCredentialError(err) {
		t.Errorf("Token() error = %v, want credential error", err)
	}
}
