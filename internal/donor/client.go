package donor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"almoner/internal/auth"
)

const (
	defaultBaseURL     = "http://localhost:8000"
	defaultHTTPTimeout = 30 * time.Second

	apiPrefix = "/api/v1/donors"
)

// RequestError is the single failure kind surfaced by the client: any
// non-success HTTP response, carrying the server's status text.
type RequestError struct {
	Op         string
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Status)
}

// IsRequestFailed reports whether err represents a non-success response.
func IsRequestFailed(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// ClientConfig describes the donor API client configuration.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Auth       auth.Provider
}

// Client wraps the donor REST API. It performs no caching, no retries, and
// no reordering: every call is an independent pass-through.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	auth    auth.Provider
}

// NewClient creates a Client from the supplied configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("donor: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("donor: base url %q is not absolute", base)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, http: client, auth: cfg.Auth}, nil
}

// List fetches a page of donors in server-provided order.
func (c *Client) List(ctx context.Context, skip, limit int) ([]Donor, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))
	var donors []Donor
	if err := c.do(ctx, http.MethodGet, apiPrefix, params, nil, &donors, "fetch donors"); err != nil {
		return nil, err
	}
	return donors, nil
}

// Get fetches a single donor by id.
func (c *Client) Get(ctx context.Context, id int64) (Donor, error) {
	var d Donor
	if err := c.do(ctx, http.MethodGet, c.idPath(id), nil, nil, &d, "fetch donor"); err != nil {
		return Donor{}, err
	}
	return d, nil
}

// Create registers a new donor record and returns the saved value.
func (c *Client) Create(ctx context.Context, payload Create) (Donor, error) {
	var d Donor
	if err := c.do(ctx, http.MethodPost, apiPrefix, nil, payload, &d, "create donor"); err != nil {
		return Donor{}, err
	}
	return d, nil
}

// Update replaces an existing donor's editable fields and returns the
// saved value.
func (c *Client) Update(ctx context.Context, id int64, payload Update) (Donor, error) {
	var d Donor
	if err := c.do(ctx, http.MethodPut, c.idPath(id), nil, payload, &d, "update donor"); err != nil {
		return Donor{}, err
	}
	return d, nil
}

// Search queries donors matching q, in server-provided order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Donor, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	var donors []Donor
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/search", params, nil, &donors, "search donors"); err != nil {
		return nil, err
	}
	return donors, nil
}

// FindDuplicates asks the backend for possible matches of the given donor.
// The candidate search itself lives server-side; callers only score and
// present what comes back.
func (c *Client) FindDuplicates(ctx context.Context, id int64) ([]Donor, error) {
	var donors []Donor
	if err := c.do(ctx, http.MethodGet, c.idPath(id)+"/duplicates", nil, nil, &donors, "find duplicates"); err != nil {
		return nil, err
	}
	return donors, nil
}

type mergeRequest struct {
	PrimaryDonorID   int64 `json:"primary_donor_id"`
	DuplicateDonorID int64 `json:"duplicate_donor_id"`
}

// Merge combines two donor records server-side. Irreversible.
func (c *Client) Merge(ctx context.Context, primaryID, duplicateID int64) (Donor, error) {
	var d Donor
	body := mergeRequest{PrimaryDonorID: primaryID, DuplicateDonorID: duplicateID}
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/merge", nil, body, &d, "merge donors"); err != nil {
		return Donor{}, err
	}
	return d, nil
}

// AddTag attaches a tag to a donor. Fire-and-forget: no local
// representation of tags exists.
func (c *Client) AddTag(ctx context.Context, id int64, tagName string) error {
	body := map[string]string{"tag_name": tagName}
	return c.do(ctx, http.MethodPost, c.idPath(id)+"/tags", nil, body, nil, "add tag")
}

// Delete removes a donor record.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.idPath(id), nil, nil, nil, "delete donor")
}

func (c *Client) idPath(id int64) string {
	return apiPrefix + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any, op string) error {
	if c == nil {
		return errors.New("donor: client is nil")
	}
	endpoint := c.baseURL.JoinPath(path)
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("donor: encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	var httpReq *http.Request
	var err error
	if reader != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, endpoint.String(), nil)
	}
	if err != nil {
		return fmt.Errorf("donor: build %s request: %w", op, err)
	}
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.auth != nil {
		if session, ok := c.auth.Current(); ok {
			httpReq.Header.Set("X-Requested-By", session.Email)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("donor: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Status: strings.TrimSpace(resp.Status)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("donor: decode %s response: %w", op, err)
	}
	return nil
}
