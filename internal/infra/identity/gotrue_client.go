// File: internal/infra/identity/gotrue_client.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nexus-ai-portal/internal/config"
	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/ports/adapter"
)

var _ adapter.IdentityProvider = (*GoTrueClient)(nil)

// GoTrueClient talks to a GoTrue-compatible identity service over its REST
// API. The service owns credentials and token issuance; we only mirror its
// user ids into profiles.
type GoTrueClient struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewGoTrueClient(cfg config.IdentityConfig) (*GoTrueClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("identity base url empty")
	}
	return &GoTrueClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type gotrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Username string `json:"username"`
	} `json:"user_metadata"`
}

func (u *gotrueUser) toPort() *adapter.IdentityUser {
	return &adapter.IdentityUser{ID: u.ID, Email: u.Email, Username: u.UserMetadata.Username}
}

type gotrueError struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func (e *gotrueError) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

func (c *GoTrueClient) post(ctx context.Context, path string, admin bool, payload, out any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var ge gotrueError
		_ = json.NewDecoder(resp.Body).Decode(&ge)
		switch resp.StatusCode {
		case http.StatusUnprocessableEntity, http.StatusConflict:
			return domain.ErrAlreadyExists
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("identity: %s: %w", ge.text(), domain.ErrInvalidArgument)
		default:
			return fmt.Errorf("identity http %d: %s: %w", resp.StatusCode, ge.text(), domain.ErrOperationFailed)
		}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *GoTrueClient) SignUp(ctx context.Context, email, password, username string) (*adapter.IdentityUser, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"username": username},
	}
	var u gotrueUser
	if err := c.post(ctx, "/signup", false, payload, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("identity: signup returned no user id: %w", domain.ErrOperationFailed)
	}
	return u.toPort(), nil
}

func (c *GoTrueClient) SignInWithPassword(ctx context.Context, email, password string) (string, *adapter.IdentityUser, error) {
	payload := map[string]string{"email": email, "password": password}
	var out struct {
		AccessToken string     `json:"access_token"`
		User        gotrueUser `json:"user"`
	}
	if err := c.post(ctx, "/token?grant_type=password", false, payload, &out); err != nil {
		return "", nil, err
	}
	if out.AccessToken == "" || out.User.ID == "" {
		return "", nil, fmt.Errorf("identity: incomplete token response: %w", domain.ErrOperationFailed)
	}
	return out.AccessToken, out.User.toPort(), nil
}

func (c *GoTrueClient) GetUser(ctx context.Context, userID string) (*adapter.IdentityUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("identity http %d: %w", resp.StatusCode, domain.ErrOperationFailed)
	}
	var u gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, err
	}
	return u.toPort(), nil
}

func (c *GoTrueClient) AdminCreateUser(ctx context.Context, email, password string) (*adapter.IdentityUser, error) {
	payload := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	var u gotrueUser
	if err := c.post(ctx, "/admin/users", true, payload, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("identity: admin create returned no user id: %w", domain.ErrOperationFailed)
	}
	return u.toPort(), nil
}
