package dealerapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dealerfeed/internal/domain"
	"dealerfeed/pkg/feed"
)

const (
	DefaultTimeout = 10 * time.Second

	// A full feed is a few thousand records; anything larger is a broken upstream.
	maxBodyBytes = 64 << 20
)

// Query selects which part of the dealer inventory the upstream returns.
// Zero values are left out of the request.
type Query struct {
	EngineType  string
	VisibleOnly bool
	Make        string
	Model       string
	Category    string
	Limit       int
	Sort        string
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ErrorKind classifies upstream failures.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindTimeout   ErrorKind = "timeout"
	KindStatus    ErrorKind = "status"
	KindEmpty     ErrorKind = "empty"
	KindUpstream  ErrorKind = "upstream"
)

type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("feed: unexpected status code %d", e.StatusCode)
	case KindEmpty:
		return "feed: empty response body"
	case KindUpstream:
		return fmt.Sprintf("feed: upstream error: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("feed: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("feed: %s", e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is the structured outcome of one feed fetch, safe to hand to a
// presentation layer as is.
type Result struct {
	Success  bool             `json:"success" yaml:"success"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Vehicles []domain.Vehicle `json:"vehicles,omitempty" yaml:"vehicles,omitempty"`
}

func Failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

func (q Query) values() url.Values {
	params := url.Values{}
	if q.EngineType != "" {
		params.Set("engine", q.EngineType)
	}
	if q.VisibleOnly {
		params.Set("visible", "1")
	}
	if q.Make != "" {
		params.Set("make", q.Make)
	}
	if q.Model != "" {
		params.Set("model", q.Model)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	return params
}

// Fetch returns the raw feed document. Every failure is a *FetchError; a
// body carrying an <error> tag is a failure even with a 2xx status.
func (c *Client) Fetch(ctx context.Context, q Query) (string, error) {
	params := q.values()
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	reqURL := c.baseURL
	if encoded := params.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(reqURL, "?") {
			sep = "&"
		}
		reqURL += sep + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", &FetchError{Kind: KindTransport, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &FetchError{Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", transportError(fmt.Errorf("reading body: %w", err))
	}

	body := string(data)
	if strings.TrimSpace(body) == "" {
		return "", &FetchError{Kind: KindEmpty, StatusCode: resp.StatusCode}
	}
	if msg, ok := feed.FindTag(body, "error"); ok {
		if msg == "" {
			msg = "unspecified error"
		}
		return "", &FetchError{Kind: KindUpstream, StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}

// FetchVehicles fetches and parses the feed, reporting failures as a value.
func (c *Client) FetchVehicles(ctx context.Context, q Query) Result {
	body, err := c.Fetch(ctx, q)
	if err != nil {
		return Failure(err)
	}
	return Result{Success: true, Vehicles: feed.Parse(body)}
}

func transportError(err error) *FetchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{Kind: KindTimeout, Err: err}
	}
	return &FetchError{Kind: KindTransport, Err: err}
}
