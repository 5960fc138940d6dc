package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestAuthURL(t *testing.T) {
	a := NewAuthenticator(Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:3000/callback",
	})

	url := a.AuthURL("state-value")

	if !strings.Contains(url, "client_id=client-id") {
		t.Errorf("auth URL missing client id: %q", url)
	}
	if !strings.Contains(url, "state=state-value") {
		t.Errorf("auth URL missing state: %q", url)
	}
	if !strings.Contains(url, "gmail.send") {
		t.Errorf("auth URL missing gmail.send scope: %q", url)
	}
}

func TestExchange(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"issued-token","token_type":"Bearer"}`))
	}))
	defer tokenSrv.Close()

	userInfoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer issued-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"jane@example.com"}`))
	}))
	defer userInfoSrv.Close()

	a := NewAuthenticator(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token"},
		UserInfoURL:  userInfoSrv.URL,
	})

	email, token, err := a.Exchange(context.Background(), "one-time-code")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if email != "jane@example.com" {
		t.Errorf("email = %q, want jane@example.com", email)
	}
	if token != "issued-token" {
		t.Errorf("token = %q, want issued-token", token)
	}
}

func TestExchange_UserInfoFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"issued-token","token_type":"Bearer"}`))
	}))
	defer tokenSrv.Close()

	userInfoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer userInfoSrv.Close()

	a := NewAuthenticator(Config{
		Endpoint:    oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token"},
		UserInfoURL: userInfoSrv.URL,
	})

	_, _, err := a.Exchange(context.Background(), "one-time-code")
	if err == nil {
		t.Fatal("expected error when user info lookup fails")
	}
}

func TestGenerateState_Unique(t *testing.T) {
	if GenerateState() == GenerateState() {
		t.Error("expected unique state values")
	}
}
