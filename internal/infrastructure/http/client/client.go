// Package client provides the HTTP client for the remote personalization service
package client

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
)

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

// Metrics receives per-request measurements
type Metrics interface {
	RemoteRequest(endpoint, outcome string, duration time.Duration)
	BreakerState(name string, state int)
}

type nopMetrics struct{}

func (nopMetrics) RemoteRequest(string, string, time.Duration) {}
func (nopMetrics) BreakerState(string, int)                    {}

// StatusError is returned for a non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: status %d", e.StatusCode)
}

// Client implements outbound.PersonalizationService over HTTP
type Client struct {
	baseURL    string
	apiBaseURL string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[interface{}]
	metrics    Metrics
	logger     *zap.Logger
}

var _ outbound.PersonalizationService = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics attaches a metrics sink
func WithMetrics(m Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a client for the service described by cfg
func NewClient(cfg *config.RemoteConfig, logger *zap.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: nopMetrics{},
		logger:  logger.Named("remote-client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	if cfg.Breaker.Enabled {
		c.breaker = c.newBreaker(cfg.Breaker)
	}

	return c
}

func (c *Client) newBreaker(cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[interface{}] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "personalization",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Client errors say nothing about the health of the service
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if stderrors.As(err, &statusErr) {
				return statusErr.StatusCode < 500
			}
			return err == nil || stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.BreakerState(name, int(to))
			c.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

// Like notifies the service that userID liked recipeID
func (c *Client) Like(ctx context.Context, userID user.ID, recipeID recipe.ID) error {
	body := LikeRequest{IDUser: userID, IDRecipe: recipeID}
	return c.post(ctx, "like", c.baseURL+PathLike, body, nil)
}

// Search returns the identifiers matching text
func (c *Client) Search(ctx context.Context, text string) ([]recipe.ID, error) {
	query := url.Values{"search_bar": []string{text}}

	var resp SearchResponse
	if err := c.get(ctx, "search", c.apiBaseURL+PathSearch+"?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Recipes, nil
}

// Recommend returns the personalized identifier list for userID
func (c *Client) Recommend(ctx context.Context, userID user.ID) ([]recipe.ID, error) {
	query := url.Values{"id": []string{userID.String()}}

	var resp RecommendationResponse
	if err := c.get(ctx, "recommendation", c.apiBaseURL+PathRecommendation+"?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.RecipeList, nil
}

// RecipesByQuery calls the legacy catalog endpoint and keeps only the identifiers
func (c *Client) RecipesByQuery(ctx context.Context, query string) ([]recipe.ID, error) {
	var resp []LegacyRecipe
	if err := c.get(ctx, "recipes", c.baseURL+PathRecipes+url.PathEscape(query), &resp); err != nil {
		return nil, err
	}

	ids := make([]recipe.ID, len(resp))
	for i, r := range resp {
		ids[i] = r.RecipeID
	}
	return ids, nil
}

// Ingredients returns the ingredient names known to the service
func (c *Client) Ingredients(ctx context.Context) ([]string, error) {
	var resp []IngredientResponse
	if err := c.get(ctx, "ingredients", c.baseURL+PathIngredients, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp))
	for _, ing := range resp {
		if ing.Name != "" {
			names = append(names, ing.Name)
		}
	}
	return names, nil
}

func (c *Client) post(ctx context.Context, endpoint, rawURL string, body interface{}, response interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.execute(endpoint, req, response)
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, response interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.execute(endpoint, req, response)
}

// execute applies the rate limit and circuit breaker, then converts any
// failure into a NetworkError or CircuitOpenError
func (c *Client) execute(endpoint string, req *http.Request, response interface{}) error {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			c.metrics.RemoteRequest(endpoint, "rate_limited", time.Since(start))
			return errors.NewNetworkError(endpoint, err)
		}
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doRequest(req, response)
		})
	} else {
		err = c.doRequest(req, response)
	}

	duration := time.Since(start)
	switch {
	case err == nil:
		c.metrics.RemoteRequest(endpoint, "success", duration)
		return nil
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.RemoteRequest(endpoint, "circuit_open", duration)
		return errors.NewCircuitOpenError(endpoint, err)
	default:
		c.metrics.RemoteRequest(endpoint, "failure", duration)
		return errors.NewNetworkError(endpoint, err)
	}
}

func (c *Client) doRequest(req *http.Request, response interface{}) error {
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug("API error response",
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
			zap.String("body", string(body)),
		)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if response == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
