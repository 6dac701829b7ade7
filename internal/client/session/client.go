// Package session is the HTTP client side of the auth boundary. It keeps
// the bearer token in a Store, sends it with every request and forgets it
// as soon as the server answers 401.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthenticated means there is no usable session: none was stored or
// the server rejected it. The stored token has been cleared.
var ErrUnauthenticated = errors.New("not authenticated")

// FieldError is one entry of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%d %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Message, strings.Join(parts, "; "))
}

// User is the account as the server returns it.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	FullName  string    `json:"fullName" yaml:"fullName"`
	Email     string    `json:"email" yaml:"email"`
	Bio       string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	Location  string    `json:"location,omitempty" yaml:"location,omitempty"`
	JobTitle  string    `json:"jobTitle,omitempty" yaml:"jobTitle,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Client talks to the taskboard API.
type Client struct {
	baseURL string
	http    *http.Client
	store   Store
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the server at baseURL (scheme and host, no /api).
func New(baseURL string, store Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account and stores its token.
func (c *Client) Register(ctx context.Context, fullName, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/register", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	})
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*User, error) {
	var resp authResponse
	if err := c.Do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%s: response carried no token", path)
	}
	if err := c.store.Save(resp.Token); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return resp.User, nil
}

// Logout forgets the stored token. Tokens are stateless, so the server is
// not contacted.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Me returns the user the stored token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Health returns nil when the server and its database are up.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.Do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return fmt.Errorf("health: status %q", resp.Status)
	}
	return nil
}

// Do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). The stored token, if any, goes in the Authorization header. A
// 401 clears the store and returns an error matching ErrUnauthenticated.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.store.Load()
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+token)
	case errors.Is(err, ErrNoSession):
	default:
		return fmt.Errorf("load session: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			if err := c.store.Clear(); err != nil {
				return fmt.Errorf("clear session after 401: %w", err)
			}
			return fmt.Errorf("%w: %w", ErrUnauthenticated, apiErr)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
