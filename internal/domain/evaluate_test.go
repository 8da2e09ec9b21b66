package domain

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// clubLimits are the thresholds used in the worked examples.
func clubLimits() BoatLimits {
	return BoatLimits{
		FeelsLikeTempMinKelvin: 260,
		FeelsLikeTempMaxKelvin: 305,
		WindLimits: map[BoatCategory]int{
			SeniorFourAndAbove: 15,
			NoviceFourAndAbove: 12,
			Double:             9,
			Single:             6,
		},
	}
}

var (
	noneAllowed = BoatsAllowed{}
	seniorOnly  = BoatsAllowed{SeniorFourAndAbove: true}
	foursOnly   = BoatsAllowed{SeniorFourAndAbove: true, NoviceFourAndAbove: true}
	noSingles   = BoatsAllowed{SeniorFourAndAbove: true, NoviceFourAndAbove: true, Doubles: true}
	allAllowed  = BoatsAllowed{SeniorFourAndAbove: true, NoviceFourAndAbove: true, Doubles: true, Single: true}
)

func TestEvaluate_WorkedExamples(t *testing.T) {
	t.Run("moderate wind keeps the fours out", func(t *testing.T) {
		obs := WeatherObservation{FeelsLike: 290, WindSpeed: 10, ConditionCode: 800}
		assert.Equal(t, foursOnly, Evaluate(obs, clubLimits(), discardLogger()))
	})

	t.Run("cold cancels everything", func(t *testing.T) {
		obs := WeatherObservation{FeelsLike: 250, WindSpeed: 0, ConditionCode: 800}
		assert.Equal(t, noneAllowed, Evaluate(obs, clubLimits(), discardLogger()))
	})

	t.Run("exception passes a rejected family", func(t *testing.T) {
		limits := clubLimits()
		limits.UnacceptableConditionCodes = []string{"2xx"}
		limits.ConditionCodeExceptions = []string{"210"}
		obs := WeatherObservation{FeelsLike: 290, WindSpeed: 3, ConditionCode: 210}
		assert.Equal(t, allAllowed, Evaluate(obs, limits, discardLogger()))
	})
}

func TestEvaluate_TemperatureGate(t *testing.T) {
	tests := []struct {
		name      string
		feelsLike float64
		want      BoatsAllowed
	}{
		{name: "at min", feelsLike: 260, want: noneAllowed},
		{name: "fraction above min truncates to min", feelsLike: 260.9, want: noneAllowed},
		{name: "just above min", feelsLike: 261, want: allAllowed},
		{name: "just below max", feelsLike: 304.99, want: allAllowed},
		{name: "at max", feelsLike: 305, want: noneAllowed},
		{name: "above max", feelsLike: 320, want: noneAllowed},
		{name: "zero", feelsLike: 0, want: noneAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := WeatherObservation{FeelsLike: tt.feelsLike, WindSpeed: 1, ConditionCode: 800}
			assert.Equal(t, tt.want, Evaluate(obs, clubLimits(), discardLogger()))
		})
	}
}

func TestEvaluate_ConditionGate(t *testing.T) {
	limits := clubLimits()
	limits.UnacceptableConditionCodes = []string{"2xx", "781"}
	limits.ConditionCodeExceptions = []string{"200"}

	tests := []struct {
		code int
		want BoatsAllowed
	}{
		{code: 200, want: allAllowed},
		{code: 202, want: noneAllowed},
		{code: 781, want: noneAllowed},
		{code: 701, want: allAllowed},
		{code: 800, want: allAllowed},
	}

	for _, tt := range tests {
		obs := WeatherObservation{FeelsLike: 285, WindSpeed: 2, ConditionCode: tt.code}
		assert.Equal(t, tt.want, Evaluate(obs, limits, discardLogger()), "code %d", tt.code)
	}
}

func TestEvaluate_WindTiers(t *testing.T) {
	tests := []struct {
		name string
		wind float64
		want BoatsAllowed
	}{
		{name: "calm", wind: 0, want: allAllowed},
		{name: "below single limit", wind: 5.9, want: allAllowed},
		{name: "at single limit", wind: 6, want: noSingles},
		{name: "at double limit", wind: 9, want: noSingles},
		{name: "fraction above double limit truncates", wind: 9.99, want: noSingles},
		{name: "above double limit", wind: 10, want: foursOnly},
		{name: "at novice limit", wind: 12, want: foursOnly},
		{name: "above novice limit", wind: 13, want: seniorOnly},
		{name: "at senior limit", wind: 15, want: seniorOnly},
		{name: "above senior limit", wind: 16, want: noneAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := WeatherObservation{FeelsLike: 285, WindSpeed: tt.wind, ConditionCode: 800}
			got := Evaluate(obs, clubLimits(), discardLogger())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluate_Monotone(t *testing.T) {
	limitSets := []BoatLimits{clubLimits()}
	// A misordered configuration still cannot produce a non-prefix decision.
	inverted := clubLimits()
	inverted.WindLimits = map[BoatCategory]int{
		SeniorFourAndAbove: 4,
		NoviceFourAndAbove: 8,
		Double:             12,
		Single:             16,
	}
	limitSets = append(limitSets, inverted)

	for _, limits := range limitSets {
		for wind := 0; wind <= 20; wind++ {
			obs := WeatherObservation{FeelsLike: 285, WindSpeed: float64(wind), ConditionCode: 800}
			got := Evaluate(obs, limits, discardLogger())

			if got.Single {
				assert.True(t, got.Doubles, "wind %d", wind)
			}
			if got.Doubles {
				assert.True(t, got.NoviceFourAndAbove, "wind %d", wind)
			}
			if got.NoviceFourAndAbove {
				assert.True(t, got.SeniorFourAndAbove, "wind %d", wind)
			}
		}
	}
}

func TestEvaluate_UnreadableObservation(t *testing.T) {
	tests := []struct {
		name      string
		feelsLike float64
		wind      float64
	}{
		{name: "huge wind", feelsLike: 290, wind: 1e30},
		{name: "infinite wind", feelsLike: 290, wind: math.Inf(1)},
		{name: "negative infinite wind", feelsLike: 290, wind: math.Inf(-1)},
		{name: "NaN wind", feelsLike: 290, wind: math.NaN()},
		{name: "negative wind", feelsLike: 290, wind: -3},
		{name: "huge negative wind", feelsLike: 290, wind: -1e30},
		{name: "huge feels-like", feelsLike: 1e30, wind: 1},
		{name: "huge negative feels-like", feelsLike: -1e30, wind: 1},
		{name: "infinite feels-like", feelsLike: math.Inf(1), wind: 1},
		{name: "NaN feels-like", feelsLike: math.NaN(), wind: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := WeatherObservation{FeelsLike: tt.feelsLike, WindSpeed: tt.wind, ConditionCode: 800}
			assert.Equal(t, noneAllowed, Evaluate(obs, clubLimits(), discardLogger()))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, 9, truncate(9.99))
	assert.Equal(t, -2, truncate(-2.7))
	assert.Equal(t, math.MaxInt32, truncate(1e30))
	assert.Equal(t, math.MaxInt32, truncate(math.Inf(1)))
	assert.Equal(t, math.MinInt32, truncate(-1e30))
	assert.Equal(t, 0, truncate(math.NaN()))
}

func TestEvaluate_LogsCancellation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Evaluate(WeatherObservation{FeelsLike: 285, WindSpeed: 20, ConditionCode: 800}, clubLimits(), logger)
	assert.Contains(t, buf.String(), "all boats cancelled")

	buf.Reset()
	Evaluate(WeatherObservation{FeelsLike: 285, WindSpeed: 10, ConditionCode: 800}, clubLimits(), logger)
	assert.Contains(t, buf.String(), "some boats cancelled")
	assert.Contains(t, buf.String(), "category=DOUBLE")
}

func TestCheckBoats(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC)))
	defer SetClock(nil)

	resp := OpenWeatherResponse{
		Data: []WeatherData{
			{
				Dt:        1717225200,
				FeelsLike: 290.7,
				WindSpeed: 10.4,
				Weather:   []ConditionEntry{{ID: 800, Main: "Clear", Description: "clear sky"}},
			},
			{
				Dt:        1717228800,
				FeelsLike: 250,
				WindSpeed: 30,
				Weather:   []ConditionEntry{{ID: 202, Description: "thunderstorm with heavy rain"}},
			},
		},
	}

	check, err := CheckBoats(resp, clubLimits(), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, foursOnly, check.BoatsAllowed)
	assert.Equal(t, WeatherConditions{Description: "clear sky", TempFeelsLike: 290, WindSpeed: 10}, check.WeatherConditions)
	assert.Equal(t, 800, check.ConditionCode)
	assert.Equal(t, time.Unix(1717225200, 0).UTC(), check.ObservedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC), check.CheckedAt)
}

func TestCheckBoats_MissingTimestampUsesCheckTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	resp := OpenWeatherResponse{Data: []WeatherData{{
		FeelsLike: 290,
		WindSpeed: 3,
		Weather:   []ConditionEntry{{ID: 800, Description: "clear sky"}},
	}}}

	check, err := CheckBoats(resp, clubLimits(), discardLogger())
	require.NoError(t, err)
	assert.Equal(t, now, check.ObservedAt)
	assert.Equal(t, check.CheckedAt, check.ObservedAt)
}

func TestCheckBoats_WarnsOnExtraData(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	resp := OpenWeatherResponse{Data: []WeatherData{{
		Dt:        1717225200,
		FeelsLike: 290,
		WindSpeed: 3,
		Weather:   []ConditionEntry{{ID: 800}, {ID: 500}},
	}}}

	_, err := CheckBoats(resp, clubLimits(), logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "only the first weather data point and condition are evaluated")
	assert.Contains(t, buf.String(), "conditions=2")
}

func TestCheckBoats_NoData(t *testing.T) {
	_, err := CheckBoats(OpenWeatherResponse{}, clubLimits(), discardLogger())
	require.ErrorIs(t, err, ErrNoWeatherData)
}
