// Package taskapi implements the service.Service interface against the
// Task Manager Pro HTTP API.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskpro/internal/config"
	"taskpro/internal/credstore"
	"taskpro/internal/service"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	public  *http.Client // unauthenticated endpoints
	authed  *http.Client // bearer token attached by oauth2.Transport
	log     *slog.Logger
}

// New creates a client for the configured API. The bearer token is read
// from store on every authenticated request.
func New(cfg *config.Config, store credstore.Store, logger *slog.Logger) (*Client, error) {
	baseURL, err := cfg.ResolveAPIURL()
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	return NewWithHTTPClient(baseURL, httpClient, StoreTokenSource(store), logger), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and token
// source (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, tokens oauth2.TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	authed := &http.Client{
		Timeout: httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: tokens,
			Base:   httpClient.Transport,
		},
	}
	return &Client{
		baseURL: baseURL,
		public:  httpClient,
		authed:  authed,
		log:     logger,
	}
}

// SSOStatus implements service.Service.
func (c *Client) SSOStatus(ctx context.Context) (service.SSOStatus, error) {
	var result service.SSOStatus
	if err := c.do(ctx, c.public, http.MethodGet, "/auth/sso-status", nil, &result); err != nil {
		return service.SSOStatus{}, err
	}
	return result, nil
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, username, password string) (service.LoginResult, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var result service.LoginResult
	if err := c.do(ctx, c.public, http.MethodPost, "/auth/login", body, &result); err != nil {
		return service.LoginResult{}, err
	}
	if result.AccessToken == "" {
		return service.LoginResult{}, errors.New("POST /auth/login: response carries no access token")
	}
	return result, nil
}

// Logout implements service.Service.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.authed, http.MethodPost, "/auth/logout", nil, nil)
}

// Me implements service.Service.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var result service.User
	if err := c.do(ctx, c.authed, http.MethodGet, "/auth/me", nil, &result); err != nil {
		return service.User{}, err
	}
	return result, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var result []service.Task
	if err := c.do(ctx, c.authed, http.MethodGet, "/tasks", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int) (service.Task, error) {
	var result service.Task
	if err := c.do(ctx, c.authed, http.MethodGet, taskPath(id), nil, &result); err != nil {
		return service.Task{}, err
	}
	return result, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var result service.Task
	if err := c.do(ctx, c.authed, http.MethodPost, "/tasks", in, &result); err != nil {
		return service.Task{}, err
	}
	return result, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int, upd service.TaskUpdate) (service.Task, error) {
	var result service.Task
	if err := c.do(ctx, c.authed, http.MethodPut, taskPath(id), upd, &result); err != nil {
		return service.Task{}, err
	}
	return result, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, c.authed, http.MethodDelete, taskPath(id), nil, nil)
}

// Stats implements service.Service.
func (c *Client) Stats(ctx context.Context) (service.Stats, error) {
	var result service.Stats
	if err := c.do(ctx, c.authed, http.MethodGet, "/stats", nil, &result); err != nil {
		return service.Stats{}, err
	}
	return result, nil
}

// ListUsers implements service.Service.
func (c *Client) ListUsers(ctx context.Context) ([]service.User, error) {
	var result []service.User
	if err := c.do(ctx, c.authed, http.MethodGet, "/users", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func taskPath(id int) string {
	return "/tasks/" + strconv.Itoa(id)
}

// do sends one JSON request and decodes the response into result.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("api request", "method", method, "path", path)
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)

	if err := googleapi.CheckResponse(resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, wrapError(err))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// wrapError converts a googleapi error into a service.APIError carrying the
// server's detail message.
func wrapError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	detail := parseDetail(gerr.Body)
	if detail == "" {
		detail = gerr.Message
	}
	return &service.APIError{
		Status: gerr.Code,
		Detail: detail,
		Err:    gerr,
	}
}

// parseDetail extracts {"detail": "..."} from an error body. Validation
// errors carry a list instead of a string and yield "".
func parseDetail(body string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err != nil {
		return ""
	}
	return s
}
