package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoWeatherData is returned when a provider response has nothing to evaluate.
var ErrNoWeatherData = errors.New("no weather data")

// OpenWeatherResponse mirrors the One Call "timemachine" payload.
type OpenWeatherResponse struct {
	Lat            float64       `json:"lat"`
	Lon            float64       `json:"lon"`
	Timezone       string        `json:"timezone"`
	TimezoneOffset int           `json:"timezone_offset"`
	Data           []WeatherData `json:"data"`
}

// WeatherData is one hourly data point. Temperatures are Kelvin, wind m/s.
type WeatherData struct {
	Dt        int64            `json:"dt"`
	Temp      float64          `json:"temp"`
	FeelsLike float64          `json:"feels_like"`
	Humidity  int              `json:"humidity"`
	WindSpeed float64          `json:"wind_speed"`
	WindGust  float64          `json:"wind_gust,omitempty"`
	Weather   []ConditionEntry `json:"weather"`
}

// ConditionEntry is a provider weather condition, e.g. {800, "Clear", "clear sky"}.
type ConditionEntry struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// WeatherProvider fetches the weather at a point in time for the club location.
type WeatherProvider interface {
	FetchWeather(ctx context.Context, at time.Time) (OpenWeatherResponse, error)
}

// WeatherObservation is the normalized input to Evaluate.
type WeatherObservation struct {
	FeelsLike     float64
	WindSpeed     float64
	ConditionCode int
	Description   string
	ObservedAt    time.Time
}

// WeatherConditions is the display summary returned next to a decision.
type WeatherConditions struct {
	Description   string `json:"description"`
	TempFeelsLike int    `json:"tempFeelsLike"`
	WindSpeed     int    `json:"windSpeed"`
}

// ObservationFromResponse takes the first data point and its first condition
// entry. An empty response is an error, never a zero observation.
func ObservationFromResponse(resp OpenWeatherResponse) (WeatherObservation, error) {
	if len(resp.Data) == 0 {
		return WeatherObservation{}, fmt.Errorf("observation from response: %w: empty data", ErrNoWeatherData)
	}
	point := resp.Data[0]
	if len(point.Weather) == 0 {
		return WeatherObservation{}, fmt.Errorf("observation from response: %w: first data point has no conditions", ErrNoWeatherData)
	}
	cond := point.Weather[0]

	obs := WeatherObservation{
		FeelsLike:     point.FeelsLike,
		WindSpeed:     point.WindSpeed,
		ConditionCode: cond.ID,
		Description:   cond.Description,
	}
	if point.Dt > 0 {
		obs.ObservedAt = time.Unix(point.Dt, 0).UTC()
	}
	return obs, nil
}

// ConditionsFromObservation truncates the observation for display.
func ConditionsFromObservation(obs WeatherObservation) WeatherConditions {
	return WeatherConditions{
		Description:   obs.Description,
		TempFeelsLike: truncate(obs.FeelsLike),
		WindSpeed:     truncate(obs.WindSpeed),
	}
}
