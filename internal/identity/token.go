package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/josepatrial/studioapviagem-sub000/internal/common"
)

// RoleAdmin is the elevated role allowed to pull the whole organizational
// scope.
const RoleAdmin = "admin"

// expirySlack refreshes tokens slightly before their actual expiry so an
// in-flight request does not race the deadline.
const expirySlack = 30 * time.Second

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenProvider implements Provider with a bearer token pair issued by the
// backend's auth endpoint. Claims (subject, role, expiry) are read from the
// access token without signature verification: the client is not the party
// the signature protects, the backend re-validates every request.
type TokenProvider struct {
	authURL string
	client  *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	claims       accessClaims
}

func NewTokenProvider(authURL string) *TokenProvider {
	return &TokenProvider{
		authURL: authURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTokens installs a token pair obtained at login.
func (p *TokenProvider) SetTokens(accessToken, refreshToken string) error {
	claims, err := parseAccessClaims(accessToken)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessToken = accessToken
	p.refreshToken = refreshToken
	p.claims = claims
	return nil
}

func parseAccessClaims(token string) (accessClaims, error) {
	var claims accessClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return accessClaims{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return accessClaims{}, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	return claims, nil
}

func (p *TokenProvider) SubjectID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claims.Subject
}

func (p *TokenProvider) Elevated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claims.Role == RoleAdmin
}

func (p *TokenProvider) Authenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken != ""
}

func (p *TokenProvider) expiringSoon() bool {
	if p.claims.ExpiresAt == nil {
		return false
	}
	return time.Now().Add(expirySlack).After(p.claims.ExpiresAt.Time)
}

// Token returns a valid access token, refreshing the pair first when the
// current one is about to expire.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	token := p.accessToken
	needsRefresh := token == "" || p.expiringSoon()
	p.mu.Unlock()

	if !needsRefresh {
		return token, nil
	}

	if err := p.Refresh(ctx); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the backend and installs the returned token
// pair.
func (p *TokenProvider) Login(ctx context.Context, email string, password []byte) error {
	body, err := json.Marshal(loginRequest{Email: email, Password: string(password)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL+"/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return common.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed: %s: %s", resp.Status, string(data))
	}

	var rr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}

	return p.SetTokens(rr.AccessToken, rr.RefreshToken)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges the refresh token for a new pair.
func (p *TokenProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	refreshToken := p.refreshToken
	p.mu.Unlock()

	if refreshToken == "" {
		return common.ErrUnauthorized
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL+"/v1/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return common.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("refresh failed: %s: %s", resp.Status, string(data))
	}

	var rr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}

	return p.SetTokens(rr.AccessToken, rr.RefreshToken)
}
