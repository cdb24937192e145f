package services

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go-warroom/pkg/config"
	"go-warroom/pkg/handlers"
	"go-warroom/pkg/middleware"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// BackendTokenSource yields a usable upstream bearer token for a
// session, refreshing it first when needed.
type BackendTokenSource interface {
	BackendToken(ctx context.Context, sessionID string) (string, error)
}

// ProxyService forwards authenticated requests to the game backend. It
// injects the session's upstream bearer token and passes the reply
// through verbatim.
type ProxyService struct {
	validator  middleware.TokenValidator
	tokens     BackendTokenSource
	baseURL    string
	httpClient *http.Client
}

// NewProxyService creates a proxy service targeting the configured
// backend base URL.
func NewProxyService(validator middleware.TokenValidator, tokens BackendTokenSource) *ProxyService {
	return NewProxyServiceWithBaseURL(validator, tokens, config.GetBackendBaseURL())
}

// NewProxyServiceWithBaseURL creates a proxy service with an explicit
// backend base URL. Used by tests.
func NewProxyServiceWithBaseURL(validator middleware.TokenValidator, tokens BackendTokenSource, baseURL string) *ProxyService {
	var transport http.RoundTripper = http.DefaultTransport
	if config.GetBoolEnv("ENABLE_TELEMETRY", false) {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	return &ProxyService{
		validator: validator,
		tokens:    tokens,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
	}
}

// hop-by-hop headers are stripped in both directions.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forward handles one proxied request. The wildcard remainder of the
// route is the upstream path.
func (s *ProxyService) Forward(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer("go-warroom/proxy")
	ctx, span := tracer.Start(r.Context(), "proxy.forward")
	defer span.End()

	start := time.Now()

	token := middleware.TokenFromHeaders(r.Header.Get("Authorization"), r.Header.Get("Cookie"))
	if token == "" {
		handlers.UnauthorizedResponse(w)
		return
	}

	user, err := s.validator.ValidateToken(token)
	if err != nil {
		handlers.UnauthorizedResponse(w)
		return
	}

	bearer, err := s.tokens.BackendToken(ctx, user.SessionID)
	if err != nil {
		handlers.UnauthorizedResponse(w)
		return
	}

	upstreamPath := upstreamPathOf(r)
	upstreamURL := s.baseURL + upstreamPath
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	span.SetAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("proxy.upstream_path", upstreamPath),
	)

	req, err := http.NewRequestWithContext(ctx, r.Method, upstreamURL, r.Body)
	if err != nil {
		handlers.BadGatewayResponse(w)
		return
	}

	copyHeaders(req.Header, r.Header)
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "Backend request failed",
			"method", r.Method,
			"path", upstreamPath,
			"error", err)
		handlers.BadGatewayResponse(w)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.DebugContext(ctx, "Proxy response copy interrupted", "error", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	slog.DebugContext(ctx, "Proxied backend request",
		"method", r.Method,
		"path", upstreamPath,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
}

// upstreamPathOf extracts the backend path from the proxy route. Routes
// mount the handler under a prefix ending in /back, so everything after
// that prefix is forwarded as-is.
func upstreamPathOf(r *http.Request) string {
	path := r.URL.Path
	if idx := strings.Index(path, "/back/"); idx >= 0 {
		return path[idx+len("/back"):]
	}
	return path
}

// copyHeaders copies all headers except hop-by-hop ones and the
// caller's credentials.
func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopHeader(key) || http.CanonicalHeaderKey(key) == "Authorization" || http.CanonicalHeaderKey(key) == "Cookie" {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func isHopHeader(key string) bool {
	canonical := http.CanonicalHeaderKey(key)
	for _, h := range hopHeaders {
		if canonical == h {
			return true
		}
	}
	return false
}
