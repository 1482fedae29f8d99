// Package client provides a shared Go client for the coredeckd HTTP API.
// Used by the CLI and the tray app.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coredeck/coredeck/internal/version"
)

// Client talks to coredeckd over a unix socket.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client connected to the coredeckd unix socket at socketPath.
func New(socketPath string) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					d.Timeout = 5 * time.Second
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
			Timeout: 60 * time.Second,
		},
		baseURL: "http://coredeck",
	}
}

// DefaultSocketPath returns the default coredeckd socket path (~/.coredeck/coredeckd.sock).
func DefaultSocketPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".coredeck", "coredeckd.sock")
}

// NewDefault creates a client using the default socket path.
func NewDefault() *Client {
	return New(DefaultSocketPath())
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.doJSON(ctx, "GET", "/v1/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Normalization ---

// Normalize normalizes an encoded image without storing it.
func (c *Client) Normalize(ctx context.Context, req NormalizeRequest) (*NormalizeResponse, error) {
	var out NormalizeResponse
	if err := c.doJSON(ctx, "POST", "/v1/normalize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NormalizeBytes posts raw image bytes and returns the encoded result and
// its media type. A source without visible content comes back unchanged.
func (c *Client) NormalizeBytes(ctx context.Context, data []byte, mediaType string, opts NormalizeOptions) ([]byte, string, error) {
	q := url.Values{}
	if opts.FinalSize != nil {
		q.Set("final_size", strconv.Itoa(*opts.FinalSize))
	}
	if opts.Border != nil {
		q.Set("border", strconv.Itoa(*opts.Border))
	}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	if opts.Format != "" {
		q.Set("format", opts.Format)
	}
	path := "/v1/normalize"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", mediaType)
	resp, err := c.do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	return out, resp.Header.Get("Content-Type"), nil
}

// --- Icons ---

// CreateIcon normalizes and saves an icon under a unique name.
func (c *Client) CreateIcon(ctx context.Context, req CreateIconRequest) (*Icon, error) {
	var out Icon
	if err := c.doJSON(ctx, "POST", "/v1/icons", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListIcons returns all saved icons, newest first.
func (c *Client) ListIcons(ctx context.Context) ([]Icon, error) {
	var out []Icon
	if err := c.doJSON(ctx, "GET", "/v1/icons", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetIcon returns a single icon by ID or name.
func (c *Client) GetIcon(ctx context.Context, idOrName string) (*Icon, error) {
	var out Icon
	if err := c.doJSON(ctx, "GET", "/v1/icons/"+url.PathEscape(idOrName), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IconImage returns the normalized image of an icon, re-encoded as format
// ("png", "ico") when given.
func (c *Client) IconImage(ctx context.Context, idOrName, format string) ([]byte, string, error) {
	path := "/v1/icons/" + url.PathEscape(idOrName) + "/image"
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}
	resp, err := c.doRaw(ctx, "GET", path, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read icon image: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// DeleteIcon removes an icon by ID or name.
func (c *Client) DeleteIcon(ctx context.Context, idOrName string) error {
	return c.doJSON(ctx, "DELETE", "/v1/icons/"+url.PathEscape(idOrName), nil, nil)
}

// --- HTTP helpers ---

// doJSON makes an HTTP request and decodes the JSON response into result.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	resp, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// doRaw makes an HTTP request and returns the raw response.
// Caller is responsible for closing resp.Body.
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseError(resp)
	}
	return resp, nil
}

// parseError reads an error response body and returns an APIError.
func parseError(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// BaseURL returns the base URL used for requests.
func (c *Client) BaseURL() string {
	return c.baseURL
}
