package statshub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/scoutline/scoutline/internal/domain/rawdata"
	"github.com/scoutline/scoutline/internal/platform/logging"
	"github.com/scoutline/scoutline/internal/platform/resilience"
	"github.com/scoutline/scoutline/internal/usecase"
)

const (
	sourceName     = "statshub"
	defaultBaseURL = "https://api.statshub.io/v2"
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errStatsHubTransient = crerr.New("statshub transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the statshub REST API. One method call is one billed
// provider request; callers meter them through the run budget.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Source() string {
	return sourceName
}

func (c *Client) SearchPlayers(ctx context.Context, name string) ([]usecase.ProviderSearchResult, []rawdata.Payload, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, fmt.Errorf("search name is required")
	}

	path := "/players/search"
	query := map[string]string{"name": name}

	var envelope searchEnvelope
	raw, err := c.doJSON(ctx, path, query, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("search players name=%q: %w", name, err)
	}

	out := make([]usecase.ProviderSearchResult, 0, len(envelope.Data))
	for _, hit := range envelope.Data {
		if hit.ID <= 0 {
			continue
		}
		out = append(out, mapSearchHit(hit))
	}

	return out, []rawdata.Payload{c.buildAPIPayload(path, query, "", raw)}, nil
}

func (c *Client) FetchProfile(ctx context.Context, sourceID string) (usecase.ProviderProfile, []rawdata.Payload, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return usecase.ProviderProfile{}, nil, fmt.Errorf("source id is required")
	}

	path := "/players/" + url.PathEscape(sourceID)

	var envelope profileEnvelope
	raw, err := c.doJSON(ctx, path, nil, &envelope)
	if err != nil {
		return usecase.ProviderProfile{}, nil, fmt.Errorf("fetch profile source_id=%s: %w", sourceID, err)
	}

	out := usecase.ProviderProfile{
		Raw:    raw,
		Fields: mapProfileFields(envelope.Data),
	}

	return out, []rawdata.Payload{c.buildAPIPayload(path, nil, sourceID, raw)}, nil
}

func (c *Client) FetchSeasonStats(ctx context.Context, sourceID string) ([]usecase.ProviderSeasonStat, []rawdata.Payload, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, nil, fmt.Errorf("source id is required")
	}

	path := "/players/" + url.PathEscape(sourceID) + "/season-stats"

	var envelope seasonStatsEnvelope
	raw, err := c.doJSON(ctx, path, nil, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch season stats source_id=%s: %w", sourceID, err)
	}

	out := make([]usecase.ProviderSeasonStat, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		out = append(out, mapSeasonStat(row))
	}

	return out, []rawdata.Payload{c.buildAPIPayload(path, nil, sourceID, raw)}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "statshub circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: statistics provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errStatsHubTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errStatsHubTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errStatsHubTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(retryBackoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "statshub request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) buildAPIPayload(path string, query map[string]string, playerSourceID string, raw []byte) rawdata.Payload {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	entityKey := strings.TrimSpace(path)
	if encoded := values.Encode(); encoded != "" {
		entityKey += "?" + encoded
	}

	hash := sha256.Sum256(raw)
	return rawdata.Payload{
		Source:         sourceName,
		EntityType:     "api_response",
		EntityKey:      entityKey,
		PlayerPublicID: playerSourceID,
		PayloadJSON:    string(raw),
		PayloadHash:    hex.EncodeToString(hash[:]),
		FetchedAt:      time.Now().UTC(),
	}
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errStatsHubTransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// retryBackoff grows linearly with a deterministic half-second stagger so
// colliding retries from parallel runs spread out.
func retryBackoff(attempt int) time.Duration {
	base := time.Duration(attempt+1) * time.Second
	return base + time.Duration(attempt%2)*500*time.Millisecond
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiTokenParamRegex.ReplaceAllString(fullURL, "api_token=REDACTED")
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 280 {
		return body[:280] + "..."
	}
	return body
}
