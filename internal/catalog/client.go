package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"posctl/internal/domain"
)

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 512

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// ClientOptions configures a Client
type ClientOptions struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	Resources  map[string]string // resource name -> endpoint path
	HTTPClient *http.Client      // optional, overrides Timeout
}

// Client talks to the paginated REST endpoints of the POS backend
type Client struct {
	baseURL   *url.URL
	token     string
	resources map[string]string
	http      *http.Client
}

// listResponse is the wire shape of a page
type listResponse struct {
	Data    []domain.Option `json:"data"`
	HasMore *bool           `json:"hasMore"`
	Total   int             `json:"total"`
}

// NewClient validates the base URL and returns a client
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	resources := make(map[string]string, len(opts.Resources))
	for name, path := range opts.Resources {
		resources[name] = path
	}

	return &Client{
		baseURL:   base,
		token:     opts.Token,
		resources: resources,
		http:      httpClient,
	}, nil
}

// Resources returns the configured resource names, sorted
func (c *Client) Resources() []string {
	names := make([]string, 0, len(c.resources))
	for name := range c.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resource returns the Loader for a configured resource
func (c *Client) Resource(name string) (Loader, error) {
	path, ok := c.resources[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	return c.Endpoint(path), nil
}

// Endpoint returns a Loader for an arbitrary list endpoint path
func (c *Client) Endpoint(path string) Loader {
	return LoaderFunc(func(ctx context.Context, q domain.Query) (domain.ResultPage, error) {
		return c.list(ctx, path, q)
	})
}

func (c *Client) list(ctx context.Context, path string, q domain.Query) (domain.ResultPage, error) {
	endpoint := c.endpointURL(path, q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ResultPage{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ResultPage{}, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.ResultPage{}, &StatusError{
			Method: http.MethodGet,
			URL:    endpoint,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.ResultPage{}, fmt.Errorf("decode %s: %w", endpoint, err)
	}

	log.Printf("catalog: GET %s -> %d items (total %d) in %s", endpoint, len(payload.Data), payload.Total, time.Since(start).Round(time.Millisecond))

	page := domain.ResultPage{
		Items: payload.Data,
		Total: payload.Total,
	}
	if payload.HasMore != nil {
		page.HasMore = *payload.HasMore
	} else {
		page.HasMore = q.Page*q.Limit < payload.Total
	}
	return page, nil
}

// endpointURL maps a query onto search, page and limit parameters plus filters
func (c *Client) endpointURL(path string, q domain.Query) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")

	params := url.Values{}
	for k, v := range q.Filters {
		if strings.TrimSpace(v) == "" {
			continue
		}
		params.Set(k, v)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	u.RawQuery = params.Encode()
	return u.String()
}
