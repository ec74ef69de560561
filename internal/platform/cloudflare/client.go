package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// DefaultBaseURL is the Cloudflare v4 API endpoint.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// Client is a minimal Cloudflare API client for DNS record management.
type Client struct {
	apiToken   string
	baseURL    string
	zone       string
	httpClient *http.Client

	mu    sync.Mutex
	zones map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithZone makes every record live in the named zone instead of the zone
// found for each domain.
func WithZone(zone string) Option {
	return func(c *Client) { c.zone = zone }
}

// Record represents a Cloudflare DNS record.
type Record struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl,omitempty"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type zoneResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewClient creates a new Cloudflare API client.
func NewClient(apiToken string, opts ...Option) *Client {
	c := &Client{
		apiToken:   apiToken,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		zones:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetZoneID returns the zone ID for the given domain. Without a zone
// override the domain and then each parent domain is tried in turn.
func (c *Client) GetZoneID(ctx context.Context, domain string) (string, error) {
	candidates := zoneCandidates(domain)
	if c.zone != "" {
		candidates = []string{c.zone}
	}

	c.mu.Lock()
	for _, name := range candidates {
		if id, ok := c.zones[name]; ok {
			c.mu.Unlock()
			return id, nil
		}
	}
	c.mu.Unlock()

	for _, name := range candidates {
		id, err := c.lookupZone(ctx, name)
		if err != nil {
			return "", err
		}
		if id != "" {
			c.mu.Lock()
			c.zones[name] = id
			c.mu.Unlock()
			return id, nil
		}
	}
	return "", fmt.Errorf("no zone found for domain %s", domain)
}

func (c *Client) lookupZone(ctx context.Context, name string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/zones?name="+url.QueryEscape(name), nil)
	if err != nil {
		return "", err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("get zone ID: %w", err)
	}

	var zones []zoneResult
	if err := json.Unmarshal(resp.Result, &zones); err != nil {
		return "", fmt.Errorf("parse zones: %w", err)
	}
	if len(zones) == 0 {
		return "", nil
	}
	return zones[0].ID, nil
}

// zoneCandidates returns domain and its parents down to two labels.
func zoneCandidates(domain string) []string {
	labels := strings.Split(strings.TrimSuffix(strings.ToLower(domain), "."), ".")
	var out []string
	for i := 0; i+2 <= len(labels); i++ {
		out = append(out, strings.Join(labels[i:], "."))
	}
	if len(out) == 0 {
		out = []string{domain}
	}
	return out
}

// FindTXT returns the TXT record with the exact name, or nil.
func (c *Client) FindTXT(ctx context.Context, zoneID, name string) (*Record, error) {
	q := url.Values{"type": {"TXT"}, "name": {name}}
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/zones/%s/dns_records?%s", zoneID, q.Encode()), nil)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("list TXT records %s: %w", name, err)
	}

	var records []Record
	if err := json.Unmarshal(resp.Result, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	for i := range records {
		if strings.EqualFold(records[i].Name, name) {
			return &records[i], nil
		}
	}
	return nil, nil
}

// LookupTXT returns the content of the TXT record name in domain's zone and
// whether it exists.
func (c *Client) LookupTXT(ctx context.Context, domain, name string) (string, bool, error) {
	zoneID, err := c.GetZoneID(ctx, domain)
	if err != nil {
		return "", false, err
	}
	rec, err := c.FindTXT(ctx, zoneID, name)
	if err != nil || rec == nil {
		return "", false, err
	}
	return unquote(rec.Content), true, nil
}

// UpsertTXT creates the TXT record name in domain's zone, or replaces the
// content of the existing one.
func (c *Client) UpsertTXT(ctx context.Context, domain, name, content string) error {
	zoneID, err := c.GetZoneID(ctx, domain)
	if err != nil {
		return err
	}
	existing, err := c.FindTXT(ctx, zoneID, name)
	if err != nil {
		return err
	}

	rec := Record{Type: "TXT", Name: name, Content: content, TTL: 1}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	method, path := http.MethodPost, fmt.Sprintf("/zones/%s/dns_records", zoneID)
	if existing != nil {
		method, path = http.MethodPut, fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, existing.ID)
	}

	req, err := c.newRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return fmt.Errorf("write TXT record %s: %w", name, err)
	}
	return nil
}

// unquote joins TXT content returned as one or more quoted character
// strings, such as a record longer than 255 bytes split into chunks.
// Content that is not entirely quoted strings is returned unchanged.
func unquote(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, `"`) {
		return s
	}

	var out strings.Builder
	for i := 0; i < len(trimmed); {
		switch c := trimmed[i]; {
		case c == ' ' || c == '\t':
			i++
			continue
		case c != '"':
			return s
		}

		i++
		closed := false
		for i < len(trimmed) {
			c := trimmed[i]
			if c == '\\' && i+1 < len(trimmed) {
				out.WriteByte(trimmed[i+1])
				i += 2
				continue
			}
			i++
			if c == '"' {
				closed = true
				break
			}
			out.WriteByte(c)
		}
		if !closed {
			return s
		}
	}
	return out.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out *apiResponse) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.Success {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, errorMessages(out.Errors, body))
	}

	return nil
}

func errorMessages(errs []apiError, body []byte) string {
	if len(errs) == 0 {
		return string(body)
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%d %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}
