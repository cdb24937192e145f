// Package gamebackend is the typed HTTP client for the upstream game-data
// API that owns all persistent state (users, game accounts, alliances,
// rosters, war defense). The companion service never talks to the upstream
// directly; everything goes through the resource clients in this package.
package gamebackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go-warroom/pkg/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client represents an upstream game-backend client with all resource clients
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string

	// Resource clients
	Auth         *AuthClient
	Champions    *ChampionsClient
	GameAccounts *GameAccountsClient
	Alliances    *AlliancesClient
	Roster       *RosterClient
	Defense      *DefenseClient
}

// NewClient creates a new game-backend client
func NewClient() *Client {
	return NewClientWithBaseURL(config.GetBackendBaseURL())
}

// NewClientWithBaseURL creates a client against an explicit base URL (tests)
func NewClientWithBaseURL(baseURL string) *Client {
	var transport http.RoundTripper = http.DefaultTransport

	// Only add OpenTelemetry instrumentation if telemetry is enabled
	if config.GetBoolEnv("ENABLE_TELEMETRY", false) {
		transport = otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Host)
			}),
		)
	}

	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  config.GetEnv("BACKEND_USER_AGENT", "go-warroom/1.0"),
	}

	c.Auth = &AuthClient{c}
	c.Champions = &ChampionsClient{c}
	c.GameAccounts = &GameAccountsClient{c}
	c.Alliances = &AlliancesClient{c}
	c.Roster = &RosterClient{c}
	c.Defense = &DefenseClient{c}

	return c
}

// BaseURL returns the configured upstream base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client for advanced usage
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// APIError is a non-2xx reply from the upstream, carrying the HTTP status
// and the message extracted from the response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, statusCode int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == statusCode
}

// errorBody is the error payload shape the upstream uses; some endpoints
// return "message", others "detail".
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// do performs an upstream request. A non-nil body is sent as JSON; a
// non-nil out receives the decoded JSON response. 204 replies leave out
// untouched. Non-2xx replies return *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out interface{}) error {
	tracer := otel.Tracer("go-warroom/gamebackend")
	ctx, span := tracer.Start(ctx, "gamebackend."+method+" "+path)
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("backend.path", path),
	)

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(resp)}
		span.SetStatus(codes.Error, apiErr.Message)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to decode backend response: %w", err)
	}

	return nil
}

// extractErrorMessage pulls {message|detail} from a JSON error body, or
// falls back to the HTTP status text.
func extractErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(data) > 0 {
		var parsed errorBody
		if json.Unmarshal(data, &parsed) == nil {
			if parsed.Message != "" {
				return parsed.Message
			}
			if parsed.Detail != "" {
				return parsed.Detail
			}
		}
	}
	return http.StatusText(resp.StatusCode)
}

// Page is the upstream pagination envelope.
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// pageQuery builds the standard pagination query, appending filter pairs.
func pageQuery(page, pageSize int, filters map[string]string) url.Values {
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("page_size", fmt.Sprintf("%d", pageSize))
	for key, value := range filters {
		if value != "" {
			query.Set(key, value)
		}
	}
	return query
}
