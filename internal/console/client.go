package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rentfolio/rentfolio/internal/applications"
	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/maintenance"
	"github.com/rentfolio/rentfolio/internal/properties"
)

// PageMeta mirrors the backend's pagination block.
type PageMeta struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
	Limit int `json:"limit"`
}

// wire is the backend response envelope. Auth endpoints put user and token at
// the top level; everything else rides in data.
type wire struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       json.RawMessage  `json:"data"`
	Pagination *PageMeta        `json:"pagination"`
	User       *authz.Principal `json:"user"`
	Token      string           `json:"token"`
}

// Client is the HTTP collaborator for one console. Every call runs under the
// console's path prefix. A 401 on an authenticated call fires the
// session-expired hook exactly once per incident and yields
// SessionExpiredError; a 403 yields AuthorizationError and leaves the session
// alone.
type Client struct {
	baseURL string
	console authz.Console
	httpc   *http.Client
	tokens  TokenStore
	logger  *slog.Logger

	mu               sync.Mutex
	onSessionExpired func()
}

// NewClient constructs a Client for the console.
func NewClient(baseURL string, console authz.Console, tokens TokenStore, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		console: console,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		logger:  logger,
	}
}

// OnSessionExpired registers the hook fired when an authenticated call
// receives 401.
func (c *Client) OnSessionExpired(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionExpired = hook
}

func (c *Client) fireSessionExpired() {
	c.mu.Lock()
	hook := c.onSessionExpired
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// do issues a request and decodes the envelope. authenticated controls
// whether the stored bearer token is attached; login runs without it so a
// credential failure is never mistaken for session expiry.
func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool) (*wire, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("console: encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+c.console.PathPrefix()+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("console: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		token, err := c.tokens.Load()
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	defer resp.Body.Close()

	var envelope wire
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && c.logger != nil {
		c.logger.Debug("decode response envelope", slog.Any("error", err))
	}

	message := envelope.Message
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if !authenticated {
			if message == "" {
				message = "invalid credentials"
			}
			return nil, &AuthenticationError{Message: message}
		}
		c.fireSessionExpired()
		return nil, &SessionExpiredError{}
	case resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "access denied"
		}
		if !authenticated {
			return nil, &AuthenticationError{Message: message}
		}
		return nil, &AuthorizationError{Message: message}
	case resp.StatusCode >= 400 || !envelope.Success:
		if message == "" {
			message = "request failed"
		}
		return nil, fmt.Errorf("%s", message)
	}
	return &envelope, nil
}

// Login authenticates credentials against the console's auth endpoint.
func (c *Client) Login(ctx context.Context, email, password string) (*authz.Principal, string, error) {
	envelope, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return nil, "", err
	}
	return envelope.User, envelope.Token, nil
}

// Profile fetches the authenticated principal.
func (c *Client) Profile(ctx context.Context) (*authz.Principal, error) {
	envelope, err := c.do(ctx, http.MethodGet, "/auth/profile", nil, true)
	if err != nil {
		return nil, err
	}
	return envelope.User, nil
}

// Logout revokes the session token server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, true)
	return err
}

// ListProperties fetches a page of properties.
func (c *Client) ListProperties(ctx context.Context, page int) ([]properties.Property, PageMeta, error) {
	return listPage[properties.Property](c, ctx, "/properties", page)
}

// ApproveProperty requests a moderation approval.
func (c *Client) ApproveProperty(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPut, "/properties/"+id+"/approve", nil, true)
	return err
}

// RejectProperty requests a moderation rejection with a reason.
func (c *Client) RejectProperty(ctx context.Context, id, reason string) error {
	_, err := c.do(ctx, http.MethodPut, "/properties/"+id+"/reject", map[string]string{"reason": reason}, true)
	return err
}

// ListApplications fetches a page of applications.
func (c *Client) ListApplications(ctx context.Context, page int) ([]applications.Application, PageMeta, error) {
	return listPage[applications.Application](c, ctx, "/applications", page)
}

// SetApplicationStatus requests a review transition.
func (c *Client) SetApplicationStatus(ctx context.Context, id, status, notes string) error {
	_, err := c.do(ctx, http.MethodPut, "/applications/"+id+"/status", map[string]string{
		"status": status,
		"notes":  notes,
	}, true)
	return err
}

// ListMaintenance fetches a page of maintenance requests.
func (c *Client) ListMaintenance(ctx context.Context, page int) ([]maintenance.Request, PageMeta, error) {
	return listPage[maintenance.Request](c, ctx, "/maintenance", page)
}

// SetMaintenanceStatus requests a lifecycle transition.
func (c *Client) SetMaintenanceStatus(ctx context.Context, id, status, notes string) error {
	_, err := c.do(ctx, http.MethodPut, "/maintenance/"+id+"/status", map[string]string{
		"status": status,
		"notes":  notes,
	}, true)
	return err
}

// AssignTechnician sets the technician on a maintenance request.
func (c *Client) AssignTechnician(ctx context.Context, id, technicianID string) error {
	_, err := c.do(ctx, http.MethodPut, "/maintenance/"+id+"/assign", map[string]string{
		"assignedTo": technicianID,
	}, true)
	return err
}

func listPage[T any](c *Client, ctx context.Context, path string, page int) ([]T, PageMeta, error) {
	envelope, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s?page=%d", path, page), nil, true)
	if err != nil {
		return nil, PageMeta{}, err
	}
	var items []T
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &items); err != nil {
			return nil, PageMeta{}, fmt.Errorf("console: decode list: %w", err)
		}
	}
	meta := PageMeta{Page: page}
	if envelope.Pagination != nil {
		meta = *envelope.Pagination
	}
	return items, meta, nil
}
