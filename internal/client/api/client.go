// Package api is the thin HTTP transport to the back office REST service:
// one paginated collection endpoint per entity, bearer-token injection, and
// 401-triggered session teardown. It knows nothing about the local store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmarques/obrafield/internal/common"
)

// Page is the shape of a paginated list response.
type Page struct {
	Results []Record `json:"results"`
	Count   int      `json:"count"`
	Next    *string  `json:"next"`
}

// Client talks to one back office server.
type Client struct {
	http           *http.Client
	baseURL        string
	deviceID       string
	token          func() string
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom
// timeouts).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the session token provider consulted on every request.
func WithToken(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

// WithUnauthorizedHook sets the callback invoked when the server answers 401.
// The session layer uses it to drop the stored token and force re-login.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithDeviceID sets the device identifier sent on every request.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAll fetches the full collection at path, following pagination to
// completion. The sync engine never reconciles against a partial window, so
// a failure on any page fails the whole listing.
func (c *Client) ListAll(ctx context.Context, path string, query url.Values) ([]Record, error) {
	next := c.baseURL + path
	if len(query) > 0 {
		next += "?" + query.Encode()
	}

	var all []Record
	for next != "" {
		var page Page
		if err := c.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		next = ""
		if page.Next != nil && *page.Next != "" {
			u, err := c.resolve(*page.Next)
			if err != nil {
				return nil, err
			}
			next = u
		}
	}
	return all, nil
}

// Create POSTs a new record to the collection and returns the server's copy,
// including the assigned id.
func (c *Client) Create(ctx context.Context, path string, payload any) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPost, c.baseURL+path, payload, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update PUTs the full payload to the record's detail endpoint.
func (c *Client) Update(ctx context.Context, path string, serverID int64, payload any) (Record, error) {
	var rec Record
	u := fmt.Sprintf("%s%s%d/", c.baseURL, path, serverID)
	if err := c.do(ctx, http.MethodPut, u, payload, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Remove deletes the record at the detail endpoint. A 404 counts as success:
// the remote copy is already gone, which is all the tombstone needs.
func (c *Client) Remove(ctx context.Context, path string, serverID int64) error {
	u := fmt.Sprintf("%s%s%d/", c.baseURL, path, serverID)
	err := c.do(ctx, http.MethodDelete, u, nil, nil)
	if err != nil && errorStatus(err) == http.StatusNotFound {
		return nil
	}
	return err
}

// Ping issues a cheap GET against the API root. Any HTTP answer, even an
// error status, proves the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/token/", payload, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", common.ErrorRejected)
	}
	return out.Token, nil
}

// resolve normalizes a pagination link. The server hands back absolute URLs;
// relative ones are resolved against the base.
func (c *Client) resolve(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("bad pagination link %q: %w", link, err)
	}
	if u.IsAbs() {
		return link, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set(common.AuthHeaderName, "Token "+tok)
		}
	}
	if c.deviceID != "" {
		req.Header.Set(common.DeviceHeaderName, c.deviceID)
	}
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError carries the HTTP status alongside the mapped sentinel so
// callers can special-case a code (e.g. Remove treating 404 as done) while
// still matching with errors.Is.
type statusError struct {
	status int
	err    error
	detail string
}

func (e *statusError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%v (HTTP %d): %s", e.err, e.status, e.detail)
	}
	return fmt.Sprintf("%v (HTTP %d)", e.err, e.status)
}

func (e *statusError) Unwrap() error { return e.err }

func errorStatus(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &statusError{status: resp.StatusCode, err: common.ErrorUnauthorized}
	case resp.StatusCode >= 500:
		return &statusError{status: resp.StatusCode, err: common.ErrorUnavailable}
	default:
		// 400/404/409 and friends: the server refused this particular
		// request; the row stays pending and is retried next cycle.
		return &statusError{
			status: resp.StatusCode,
			err:    common.ErrorRejected,
			detail: strings.TrimSpace(string(snippet)),
		}
	}
}
