package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mersey-rowing/condition-checker/internal/config"
	"github.com/mersey-rowing/condition-checker/internal/domain"
	"github.com/mersey-rowing/condition-checker/internal/observability"
)

// Client implements domain.WeatherProvider using the OpenWeather One Call API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	lat        float64
	lon        float64
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client for the configured club location.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: cfg.OpenWeatherAPIKey,
		httpClient: &http.Client{
			Timeout: cfg.OpenWeatherTimeout,
		},
		baseURL: cfg.OpenWeatherBaseURL,
		lat:     cfg.ClubLat,
		lon:     cfg.ClubLon,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchWeather returns the conditions at the club for the given time.
func (c *Client) FetchWeather(ctx context.Context, at time.Time) (domain.OpenWeatherResponse, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(c.lat, 'f', 4, 64)},
		"lon":   {strconv.FormatFloat(c.lon, 'f', 4, 64)},
		"dt":    {strconv.FormatInt(at.Unix(), 10)},
		"appid": {c.apiKey},
	}
	fullURL := c.baseURL + "/onecall/timemachine?" + params.Encode()

	start := time.Now()
	resp, err := c.doRequest(ctx, fullURL)
	c.metrics.ProviderAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.ProviderRequests.WithLabelValues("error").Inc()
		c.logger.Warn("openweather request failed", "dt", at.Unix(), "error", err)
	case len(resp.Data) == 0:
		c.metrics.ProviderRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.ProviderRequests.WithLabelValues("success").Inc()
	}
	return resp, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.OpenWeatherResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.OpenWeatherResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.OpenWeatherResponse{}, fmt.Errorf("timemachine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.OpenWeatherResponse{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp domain.OpenWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.OpenWeatherResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return owResp, nil
}
