// Package checker runs boat checks against live weather data.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mersey-rowing/condition-checker/internal/domain"
	"github.com/mersey-rowing/condition-checker/internal/observability"
)

// Publisher forwards completed checks downstream.
type Publisher interface {
	Publish(ctx context.Context, check domain.BoatCheck) error
}

// Checker fetches weather, evaluates the boat limits, and publishes the result.
type Checker struct {
	provider  domain.WeatherProvider
	limits    domain.BoatLimits
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu          sync.Mutex
	providerErr error
}

// New creates a Checker. Pass a nil publisher to disable publishing.
func New(provider domain.WeatherProvider, limits domain.BoatLimits, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Checker {
	return &Checker{
		provider:  provider,
		limits:    limits,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Limits returns the limits every check is evaluated against.
func (c *Checker) Limits() domain.BoatLimits {
	return c.limits
}

// Check decides which boats may go out at the given time.
func (c *Checker) Check(ctx context.Context, at time.Time) (domain.BoatCheck, error) {
	resp, err := c.provider.FetchWeather(ctx, at)
	c.setProviderErr(err)
	if err != nil {
		c.metrics.CheckErrors.Inc()
		return domain.BoatCheck{}, fmt.Errorf("fetch weather: %w", err)
	}

	check, err := domain.CheckBoats(resp, c.limits, c.logger)
	if err != nil {
		c.metrics.CheckErrors.Inc()
		return domain.BoatCheck{}, err
	}

	outcome := check.BoatsAllowed.Outcome()
	c.metrics.ChecksTotal.WithLabelValues(outcome).Inc()
	c.logger.Info("boat check",
		"at", at.UTC(),
		"outcome", outcome,
		"condition_code", check.ConditionCode,
		"feels_like_kelvin", check.WeatherConditions.TempFeelsLike,
		"wind_speed", check.WeatherConditions.WindSpeed,
	)

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, check); err != nil {
			c.metrics.PublishErrors.Inc()
			c.logger.Warn("publish boat check failed", "error", err)
		}
	}
	return check, nil
}

// CheckReadiness returns an error while the most recent weather fetch failed.
func (c *Checker) CheckReadiness(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.providerErr != nil {
		return errors.Join(errors.New("weather provider unavailable"), c.providerErr)
	}
	return nil
}

func (c *Checker) setProviderErr(err error) {
	// A cancelled request says nothing about the provider.
	if errors.Is(err, context.Canceled) {
		return
	}
	c.mu.Lock()
	c.providerErr = err
	c.mu.Unlock()
}
