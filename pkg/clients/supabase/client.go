package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stockroom/internal/config"
)

// ErrUnauthorized is returned when sign-in fails or the session is rejected.
var ErrUnauthorized = errors.New("supabase: unauthorized")

// Client exposes the PostgREST and auth operations used by the database backend.
type Client interface {
	SignIn(ctx context.Context) (Session, error)
	Select(ctx context.Context, table string, query url.Values) ([]json.RawMessage, error)
	Upsert(ctx context.Context, table, onConflict string, rows any) error
	Insert(ctx context.Context, table string, rows any) error
}

// Session is the authenticated user context returned by password sign-in.
type Session struct {
	AccessToken string
	UserID      string
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	email      string
	password   string

	mu      sync.Mutex
	session *Session
}

// NewClient builds a Supabase client using the provided configuration values.
func NewClient(cfg config.SupabaseConfig) *APIClient {
	base := strings.TrimSuffix(cfg.URL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		email:      cfg.Email,
		password:   cfg.Password,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID string `json:"id"`
	} `json:"user"`
}

// apiError represents an auth or PostgREST error payload.
type apiError struct {
	Message          string `json:"message"`
	Code             string `json:"code"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e *apiError) text() string {
	for _, s := range []string{e.Message, e.ErrorDescription, e.Msg, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignIn exchanges email and password for an access token. The session is cached.
func (c *APIClient) SignIn(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return *c.session, nil
	}

	result := new(tokenResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": c.email, "password": c.password}).
		SetResult(result).
		SetError(apiErr).
		Post("/auth/v1/token")
	if err != nil {
		return Session{}, fmt.Errorf("supabase sign in: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return Session{}, fmt.Errorf("%w: sign in status=%d, message=%s", ErrUnauthorized, resp.StatusCode(), apiErr.text())
	}
	if result.AccessToken == "" || result.User.ID == "" {
		return Session{}, fmt.Errorf("%w: sign in returned no session", ErrUnauthorized)
	}

	c.session = &Session{AccessToken: result.AccessToken, UserID: result.User.ID}
	return *c.session, nil
}

// Select reads rows from a table. Rows are returned undecoded so callers can skip bad records.
func (c *APIClient) Select(ctx context.Context, table string, query url.Values) ([]json.RawMessage, error) {
	req, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	apiErr := new(apiError)
	resp, err := req.
		SetQueryParamsFromValues(query).
		SetResult(&rows).
		SetError(apiErr).
		Get("/rest/v1/" + table)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	if err := c.checkStatus(resp, apiErr, "select "+table); err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert writes rows in one statement, merging on the onConflict columns.
func (c *APIClient) Upsert(ctx context.Context, table, onConflict string, rows any) error {
	req, err := c.authorized(ctx)
	if err != nil {
		return err
	}

	apiErr := new(apiError)
	resp, err := req.
		SetQueryParam("on_conflict", onConflict).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(rows).
		SetError(apiErr).
		Post("/rest/v1/" + table)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return c.checkStatus(resp, apiErr, "upsert "+table)
}

// Insert appends rows in one statement.
func (c *APIClient) Insert(ctx context.Context, table string, rows any) error {
	req, err := c.authorized(ctx)
	if err != nil {
		return err
	}

	apiErr := new(apiError)
	resp, err := req.
		SetHeader("Prefer", "return=minimal").
		SetBody(rows).
		SetError(apiErr).
		Post("/rest/v1/" + table)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return c.checkStatus(resp, apiErr, "insert "+table)
}

func (c *APIClient) authorized(ctx context.Context) (*resty.Request, error) {
	session, err := c.SignIn(ctx)
	if err != nil {
		return nil, err
	}
	return c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(session.AccessToken), nil
}

func (c *APIClient) checkStatus(resp *resty.Response, apiErr *apiError, op string) error {
	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		return fmt.Errorf("%w: %s status=%d, message=%s", ErrUnauthorized, op, code, apiErr.text())
	}
	return fmt.Errorf("supabase %s: status=%d, code=%s, message=%s", op, code, apiErr.Code, apiErr.text())
}
