package domain

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"
)

// windTier is one row of the wind gate. Rows are ordered from most to least
// tolerant and evaluation stops at the first row that fails.
type windTier struct {
	category BoatCategory
	within   func(wind, limit int) bool
	allow    func(*BoatsAllowed)
}

func notAbove(wind, limit int) bool { return wind <= limit }

// Singles need wind strictly below their limit; the larger boats go out at the limit.
func below(wind, limit int) bool { return wind < limit }

var windTiers = []windTier{
	{SeniorFourAndAbove, notAbove, func(b *BoatsAllowed) { b.SeniorFourAndAbove = true }},
	{NoviceFourAndAbove, notAbove, func(b *BoatsAllowed) { b.NoviceFourAndAbove = true }},
	{Double, notAbove, func(b *BoatsAllowed) { b.Doubles = true }},
	{Single, below, func(b *BoatsAllowed) { b.Single = true }},
}

// Evaluate decides which boats may go out. It never fails: any rejection
// yields an all-false (or partially allowed) decision.
func Evaluate(obs WeatherObservation, limits BoatLimits, logger *slog.Logger) BoatsAllowed {
	if !readable(obs) {
		logger.Warn("all boats cancelled",
			"reason", "unreadable observation",
			"feels_like_kelvin", obs.FeelsLike,
			"wind_speed", obs.WindSpeed,
		)
		return BoatsAllowed{}
	}

	feelsLike := truncate(obs.FeelsLike)
	if feelsLike <= limits.FeelsLikeTempMinKelvin || feelsLike >= limits.FeelsLikeTempMaxKelvin {
		logger.Info("all boats cancelled",
			"reason", "feels-like temperature outside limits",
			"feels_like_kelvin", feelsLike,
			"min_kelvin", limits.FeelsLikeTempMinKelvin,
			"max_kelvin", limits.FeelsLikeTempMaxKelvin,
		)
		return BoatsAllowed{}
	}

	code := strconv.Itoa(obs.ConditionCode)
	if !IsConditionAcceptable(code, limits.UnacceptableConditionCodes, limits.ConditionCodeExceptions) {
		logger.Info("all boats cancelled",
			"reason", "unacceptable weather condition",
			"condition_code", code,
			"description", obs.Description,
		)
		return BoatsAllowed{}
	}

	return evaluateWind(truncate(obs.WindSpeed), limits.WindLimits, logger)
}

// readable rejects values no sensor reports: non-finite readings and negative wind.
func readable(obs WeatherObservation) bool {
	for _, v := range []float64{obs.FeelsLike, obs.WindSpeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return obs.WindSpeed >= 0
}

// truncate drops the fractional part, saturating at the int32 range. NaN yields 0.
func truncate(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

func evaluateWind(wind int, windLimits map[BoatCategory]int, logger *slog.Logger) BoatsAllowed {
	var allowed BoatsAllowed
	for i, tier := range windTiers {
		limit := windLimits[tier.category]
		if !tier.within(wind, limit) {
			msg := "some boats cancelled"
			if i == 0 {
				msg = "all boats cancelled"
			}
			logger.Info(msg,
				"reason", "wind too high",
				"category", tier.category,
				"wind_speed", wind,
				"limit", limit,
			)
			return allowed
		}
		tier.allow(&allowed)
	}
	return allowed
}

// BoatCheck is a decision together with the conditions it was based on.
type BoatCheck struct {
	BoatsAllowed      BoatsAllowed      `json:"boatsAllowed"`
	WeatherConditions WeatherConditions `json:"weatherConditions"`
	ConditionCode     int               `json:"conditionCode"`
	ObservedAt        time.Time         `json:"observedAt"`
	CheckedAt         time.Time         `json:"checkedAt"`
}

// CheckBoats turns a provider response into a BoatCheck. A data point without
// a timestamp is treated as observed at check time.
func CheckBoats(resp OpenWeatherResponse, limits BoatLimits, logger *slog.Logger) (BoatCheck, error) {
	obs, err := ObservationFromResponse(resp)
	if err != nil {
		return BoatCheck{}, fmt.Errorf("check boats: %w", err)
	}
	if len(resp.Data) > 1 || len(resp.Data[0].Weather) > 1 {
		logger.Warn("only the first weather data point and condition are evaluated",
			"data_points", len(resp.Data),
			"conditions", len(resp.Data[0].Weather),
		)
	}

	checkedAt := clock.Now().UTC()
	observedAt := obs.ObservedAt
	if observedAt.IsZero() {
		observedAt = checkedAt
	}

	return BoatCheck{
		BoatsAllowed:      Evaluate(obs, limits, logger),
		WeatherConditions: ConditionsFromObservation(obs),
		ConditionCode:     obs.ConditionCode,
		ObservedAt:        observedAt,
		CheckedAt:         checkedAt,
	}, nil
}
