// Package domain decides which rowing boats may go out given the weather.
//
// # Data Source
//
// Observations come from the OpenWeather One Call "timemachine" endpoint. A
// response carries a list of data points, each with its own list of weather
// condition entries. Only the first data point and its first condition entry
// are evaluated; any further points or entries are ignored and reported in the
// logs so callers relying on multi-point data notice.
//
// # Units
//
//	Feels-like temperature: Kelvin (the provider default when no "units" is sent).
//	Wind speed: metres per second.
//	Both values are truncated to whole numbers before any comparison, so
//	259.9K is treated as 259K and a 9.8 m/s wind as 9 m/s.
//
// # Decision Procedure
//
// Three gates run in order and the first rejection wins:
//
//	Temperature:    min < feels-like < max (strict on both bounds)
//	Condition code: see [IsConditionAcceptable]
//	Wind:           boat categories from most to least tolerant,
//	                stopping at the first category whose limit is exceeded
//
// Boat categories, most tolerant first:
//
//	SENIOR_FOUR_AND_ABOVE | NOVICE_FOUR_AND_ABOVE | DOUBLE | SINGLE
//
// The first three categories are allowed while wind <= limit; singles only
// while wind < limit. Because the wind gate stops at the first failure, a
// decision always allows a prefix of that ordering.
//
// # Condition Codes
//
// OpenWeather condition ids are three digit numbers grouped by family: 2xx
// thunderstorm, 3xx drizzle, 5xx rain, 6xx snow, 7xx atmosphere (fog, mist,
// smoke), 800 clear, 80x clouds. Configured unacceptable codes may name a
// single id ("781") or a whole family ("7xx"); exceptions name single ids that
// are always acceptable ("701" to allow mist inside a rejected 7xx family).
package domain
