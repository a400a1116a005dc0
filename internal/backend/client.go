// Package backend is the credentialed REST client for the retail backend.
// The backend owns every business rule; this package only moves JSON and maps
// HTTP outcomes onto the console's error taxonomy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"MiniStoreConsole/internal/session"
)

// Endpoints are absolute URLs of each backend route.
type Endpoints struct {
	Base string

	Catalog        string
	Sell           string
	SalesSummary   string
	Products       string
	AllUsers       string
	PendingUsers   string
	ApproveUser    string
	RejectUser     string
	SignIn         string
	SignUpAdmin    string
	SignUpEmployee string
}

type Client struct {
	ep   Endpoints
	hc   *http.Client
	log  *zap.Logger
	sess *session.Session
}

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.hc.Transport = rt }
}

// New returns an anonymous client, good for sign-in and sign-up only.
func New(ep Endpoints, opts ...Option) *Client {
	c := &Client{
		ep:  ep,
		hc:  &http.Client{},
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ForSession returns a client whose requests carry s's credentials as cookies
// on every backend host.
func (c *Client) ForSession(s *session.Session) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	cookies := sessionCookies(s)
	for _, raw := range c.ep.all() {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		jar.SetCookies(&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, cookies)
	}

	hc := *c.hc
	hc.Jar = jar

	return &Client{
		ep:   c.ep,
		hc:   &hc,
		log:  c.log.With(zap.String("session_id", s.ID)),
		sess: s,
	}, nil
}

func (c *Client) Session() *session.Session { return c.sess }

// Ping reports whether the backend answers at all. Any status below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ep.Base, nil)
	if err != nil {
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status=%d", ErrNetwork, resp.StatusCode)
	}
	return nil
}

type call struct {
	method string
	url    string
	body   any
	out    any

	// public calls (sign-in, sign-up) report 401/403 as a rejection carrying
	// the backend's message rather than as an expired session.
	public bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("backend call failed",
			zap.String("method", cl.method), zap.String("url", cl.url), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend call",
		zap.String("method", cl.method),
		zap.String("url", cl.url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	switch {
	case !cl.public && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrAuthExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &RejectedError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func readMessage(r io.Reader) string {
	var m messageResp
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&m); err != nil {
		return ""
	}
	return strings.TrimSpace(m.Message)
}

func sessionCookies(s *session.Session) []*http.Cookie {
	out := make([]*http.Cookie, 0, 4)
	add := func(name, value string) {
		if value != "" {
			out = append(out, &http.Cookie{Name: name, Value: url.QueryEscape(value), Path: "/"})
		}
	}
	add("token", s.BackendToken)
	add("role", string(s.Role))
	add("email", s.Email)
	add("orgCode", s.OrgCode)
	return out
}

func (ep Endpoints) all() []string {
	return []string{
		ep.Base, ep.Catalog, ep.Sell, ep.SalesSummary, ep.Products, ep.AllUsers,
		ep.PendingUsers, ep.ApproveUser, ep.RejectUser, ep.SignIn, ep.SignUpAdmin, ep.SignUpEmployee,
	}
}
