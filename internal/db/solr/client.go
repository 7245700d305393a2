// Package solr implements db.Backend over the Solr HTTP API.
package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openviglet/sitesearch/internal/db"
)

// Compile-time check: Client implements db.Backend.
var _ db.Backend = (*Client)(nil)

const (
	defaultTimeout = 10 * time.Second
	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// Config holds connection parameters for a Solr server.
type Config struct {
	// URL is the server base, e.g. http://localhost:8983/solr.
	URL      string
	Timeout  time.Duration
	Username string
	Password string
}

// Client executes queries against Solr cores.
type Client struct {
	base *url.URL
	http *http.Client
	cfg  Config
}

// NewClient creates a Solr client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("solr url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse solr url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("solr url must be http or https: %s", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}, nil
}

// Ping checks that the server answers its system info endpoint.
func (c *Client) Ping(ctx context.Context) error {
	u := c.endpoint("admin", "info", "system")
	u.RawQuery = url.Values{"wt": {"json"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	var out struct{}
	if err := c.do(req, &out); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Search runs q against its core's select handler.
func (c *Client) Search(ctx context.Context, q *db.Query) (*db.Response, error) {
	if q.Core == "" {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: core is required", db.ErrBadQuery)}
	}
	form := buildParams(q)
	u := c.endpoint(q.Core, "select")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var raw selectResponse
	if err := c.do(req, &raw); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("core %s: %w", q.Core, err)}
	}
	resp, err := convert(&raw, q)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("core %s: %w", q.Core, err)}
	}
	return resp, nil
}

func (c *Client) endpoint(parts ...string) *url.URL {
	u := *c.base
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(escaped, "/")
	return &u
}

// do sends req and decodes a successful JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", db.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps a failed response onto the db sentinels.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))

	var e struct {
		Error struct {
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Msg != "" {
		msg = e.Error.Msg
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		sentinel = db.ErrBadQuery
	case resp.StatusCode == http.StatusNotFound:
		sentinel = db.ErrIndexNotFound
	default:
		sentinel = db.ErrUnavailable
	}
	return fmt.Errorf("%w: status %d: %s", sentinel, resp.StatusCode, msg)
}
