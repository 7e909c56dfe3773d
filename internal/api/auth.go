package api

import (
	"context"
	"net/http"
	"time"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/golang-jwt/jwt/v4"
)

// fallbackTokenLifetime is assumed when an access token carries no exp
// claim.
const fallbackTokenLifetime = 15 * time.Minute

// AuthServiceClient implements domain.AuthService against /auth.
type AuthServiceClient struct {
	client *Client
}

func NewAuthService(client *Client) *AuthServiceClient {
	return &AuthServiceClient{client: client}
}

type authResponse struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (s *AuthServiceClient) Register(ctx context.Context, name, email, password, university string) (*domain.User, *domain.Tokens, error) {
	body := map[string]string{
		"name":       name,
		"email":      email,
		"password":   password,
		"university": university,
	}
	var resp authResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/register", nil, body, &resp); err != nil {
		return nil, nil, err
	}
	tokens := tokensFromResponse(resp)
	return &resp.User, &tokens, nil
}

func (s *AuthServiceClient) Login(ctx context.Context, email, password string) (*domain.User, *domain.Tokens, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp authResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, nil, err
	}
	tokens := tokensFromResponse(resp)
	return &resp.User, &tokens, nil
}

func (s *AuthServiceClient) Refresh(ctx context.Context, refreshToken string) (*domain.Tokens, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var resp authResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/refresh", nil, body, &resp); err != nil {
		return nil, err
	}
	tokens := tokensFromResponse(resp)
	return &tokens, nil
}

func (s *AuthServiceClient) Logout(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func tokensFromResponse(resp authResponse) domain.Tokens {
	return domain.Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    tokenExpiry(resp.AccessToken),
	}
}

// tokenExpiry reads the exp claim from the access token. The client has no
// signing key, so the token is parsed without verification; the server
// remains the authority and the claim only drives proactive refresh timing.
func tokenExpiry(raw string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(fallbackTokenLifetime)
}
