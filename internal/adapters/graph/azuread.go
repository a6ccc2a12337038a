package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"capex-approval/internal/config"
	"capex-approval/internal/core/domain"

	"github.com/google/uuid"
)

const (
	defaultLoginBase = "https://login.microsoftonline.com"
	defaultGraphBase = "https://graph.microsoft.com/v1.0"
	graphScope       = "https://graph.microsoft.com/.default"
)

// AzureADClient talks to the Azure AD OAuth2 endpoints and the Graph
// identity APIs (/me, /me/memberOf).
type AzureADClient struct {
	cfg        config.AzureConfig
	httpClient *http.Client

	// Base URLs are overridable for tests
	LoginBase string
	GraphBase string

	mu       sync.Mutex
	appToken string
	appExp   time.Time
}

// NewAzureADClient creates a new Azure AD client
func NewAzureADClient(cfg config.AzureConfig, timeout time.Duration) *AzureADClient {
	return &AzureADClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		LoginBase:  defaultLoginBase,
		GraphBase:  defaultGraphBase,
	}
}

// TokenResponse represents an Azure AD token response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// Profile represents the Graph /me response
type Profile struct {
	ID                string `json:"id"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	DisplayName       string `json:"displayName"`
}

// Email returns the best available email address for the profile
func (p *Profile) Email() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

// GetLoginURL builds the authorization-code login URL for the given
// redirect URI. The state parameter is random per call.
func (c *AzureADClient) GetLoginURL(redirectURI string) string {
	params := url.Values{}
	params.Add("client_id", c.cfg.ClientID)
	params.Add("response_type", "code")
	params.Add("redirect_uri", redirectURI)
	params.Add("scope", graphScope)
	params.Add("response_mode", "query")
	params.Add("state", uuid.New().String())

	return fmt.Sprintf("%s/%s/oauth2/v2.0/authorize?%s", c.LoginBase, c.cfg.TenantID, params.Encode())
}

// ExchangeCode exchanges an authorization code for tokens
func (c *AzureADClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("grant_type", "authorization_code")
	data.Set("scope", graphScope)

	return c.tokenRequest(ctx, data)
}

// RefreshToken exchanges a refresh token for a new access token
func (c *AzureADClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")
	data.Set("scope", graphScope)

	return c.tokenRequest(ctx, data)
}

// tokenRequest posts a form-encoded request to the tenant token endpoint
func (c *AzureADClient) tokenRequest(ctx context.Context, data url.Values) (*TokenResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.LoginBase, c.cfg.TenantID)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "azuread", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "azuread", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Service: "azuread",
			Status:  resp.StatusCode,
			Detail:  extractOAuthError(body),
		}
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &domain.UpstreamError{Service: "azuread", Err: err}
	}

	return &tokenResp, nil
}

// GetProfile fetches the signed-in user's profile from Graph /me
func (c *AzureADClient) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.GraphBase+"/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "azuread", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "azuread", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Service: "azuread",
			Status:  resp.StatusCode,
			Detail:  extractGraphError(body),
		}
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &domain.UpstreamError{Service: "azuread", Err: err}
	}

	return &profile, nil
}

// CheckAdminRole reports whether the signed-in user belongs to the
// configured admin group. Lookup failures degrade to non-admin rather
// than failing the login.
func (c *AzureADClient) CheckAdminRole(ctx context.Context, accessToken string) bool {
	if c.cfg.AdminGroupID == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.GraphBase+"/me/memberOf", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	for _, group := range result.Value {
		if group.ID == c.cfg.AdminGroupID {
			return true
		}
	}
	return false
}

// Token returns an app-only access token for record store calls,
// acquired with the client-credentials grant and cached until shortly
// before expiry.
func (c *AzureADClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.appToken != "" && time.Now().Before(c.appExp) {
		return c.appToken, nil
	}

	data := url.Values{}
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("grant_type", "client_credentials")
	data.Set("scope", graphScope)

	tokenResp, err := c.tokenRequest(ctx, data)
	if err != nil {
		return "", err
	}

	c.appToken = tokenResp.AccessToken
	// renew one minute early
	c.appExp = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)

	return c.appToken, nil
}

// extractOAuthError pulls error_description out of an OAuth error body
func extractOAuthError(body []byte) string {
	var oauthErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Description != "" {
		return oauthErr.Description
	}
	return string(body)
}
