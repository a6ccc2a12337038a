package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"capex-approval/internal/config"
	"capex-approval/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAzureConfig() config.AzureConfig {
	return config.AzureConfig{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		AdminGroupID: "admin-group-1",
	}
}

func TestGetLoginURL(t *testing.T) {
	client := NewAzureADClient(testAzureConfig(), 5*time.Second)

	loginURL := client.GetLoginURL("http://localhost:3000/callback")

	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(loginURL, "https://login.microsoftonline.com/tenant-1/oauth2/v2.0/authorize?"))
	q := parsed.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:3000/callback", q.Get("redirect_uri"))
	assert.NotEmpty(t, q.Get("state"))
}

func TestExchangeCode(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresIn:    3600,
		})
	}))
	defer srv.Close()

	client := NewAzureADClient(testAzureConfig(), 5*time.Second)
	client.LoginBase = srv.URL

	resp, err := client.ExchangeCode(context.Background(), "auth-code", "http://localhost:3000/callback")
	require.NoError(t, err)

	assert.Equal(t, "access-1", resp.AccessToken)
	assert.Equal(t, "refresh-1", resp.RefreshToken)
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "auth-code", gotForm.Get("code"))
	assert.Equal(t, "client-1", gotForm.Get("client_id"))
}

func TestExchangeCodeOAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"AADSTS70008: expired code"}`))
	}))
	defer srv.Close()

	client := NewAzureADClient(testAzureConfig(), 5*time.Second)
	client.LoginBase = srv.URL

	_, err := client.ExchangeCode(context.Background(), "bad-code", "http://localhost:3000/callback")
	require.Error(t, err)
	require.True(t, domain.IsUpstreamError(err))
	assert.Contains(t, err.Error(), "AADSTS70008")
}

func TestGetProfilePrefersMail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Profile{
			ID:                "user-id-1",
			Mail:              "user@company.com",
			UserPrincipalName: "user_company.com#EXT@tenant.onmicrosoft.com",
			DisplayName:       "General User",
		})
	}))
	defer srv.Close()

	client := NewAzureADClient(testAzureConfig(), 5*time.Second)
	client.GraphBase = srv.URL

	profile, err := client.GetProfile(context.Background(), "access-1")
	require.NoError(t, err)

	assert.Equal(t, "user@company.com", profile.Email())
	assert.Equal(t, "General User", profile.DisplayName)
}

func TestProfileEmailFallsBackToUPN(t *testing.T) {
	p := &Profile{UserPrincipalName: "user@tenant.onmicrosoft.com"}
	assert.Equal(t, "user@tenant.onmicrosoft.com", p.Email())
}

func TestCheckAdminRole(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		status int
		want   bool
	}{
		{"member of admin group", []string{"other-group", "admin-group-1"}, http.StatusOK, true},
		{"not a member", []string{"other-group"}, http.StatusOK, false},
		{"lookup failure degrades to non-admin", nil, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
					return
				}
				groups := make([]map[string]string, 0, len(tt.groups))
				for _, id := range tt.groups {
					groups = append(groups, map[string]string{"id": id})
				}
				json.NewEncoder(w).Encode(map[string]interface{}{"value": groups})
			}))
			defer srv.Close()

			client := NewAzureADClient(testAzureConfig(), 5*time.Second)
			client.GraphBase = srv.URL

			assert.Equal(t, tt.want, client.CheckAdminRole(context.Background(), "access-1"))
		})
	}
}

func TestCheckAdminRoleNoGroupConfigured(t *testing.T) {
	cfg := testAzureConfig()
	cfg.AdminGroupID = ""
	client := NewAzureADClient(cfg, 5*time.Second)

	assert.False(t, client.CheckAdminRole(context.Background(), "access-1"))
}

func TestAppTokenCached(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "app-token", ExpiresIn: 3600})
	}))
	defer srv.Close()

	client := NewAzureADClient(testAzureConfig(), 5*time.Second)
	client.LoginBase = srv.URL

	for i := 0; i < 3; i++ {
		token, err := client.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "app-token", token)
	}

	assert.Equal(t, 1, calls)
}
