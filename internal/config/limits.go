package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mersey-rowing/condition-checker/internal/domain"
)

// DefaultLimits returns the club's standing thresholds.
func DefaultLimits() domain.BoatLimits {
	return domain.BoatLimits{
		FeelsLikeTempMinKelvin: 260,
		FeelsLikeTempMaxKelvin: 305,
		WindLimits: map[domain.BoatCategory]int{
			domain.SeniorFourAndAbove: 15,
			domain.NoviceFourAndAbove: 12,
			domain.Double:             9,
			domain.Single:             6,
		},
		UnacceptableConditionCodes: []string{"2xx", "3xx", "5xx", "6xx", "7xx"},
		ConditionCodeExceptions:    []string{},
	}
}

// limitsFile is the on-disk shape of BOAT_LIMITS_FILE. Absent keys keep the
// default value.
type limitsFile struct {
	FeelsLikeTempMinKelvin     *int           `yaml:"feels_like_temp_min_kelvin"`
	FeelsLikeTempMaxKelvin     *int           `yaml:"feels_like_temp_max_kelvin"`
	BoatWindLimits             map[string]int `yaml:"boat_wind_limits"`
	UnacceptableConditionCodes *[]string      `yaml:"unacceptable_condition_codes"`
	ConditionCodeExceptions    *[]string      `yaml:"condition_code_exceptions"`
}

// LoadLimits builds the boat limits from defaults, then BOAT_LIMITS_FILE,
// then individual environment variables, and validates the result.
func LoadLimits() (domain.BoatLimits, error) {
	limits := DefaultLimits()

	if path := os.Getenv("BOAT_LIMITS_FILE"); path != "" {
		if err := applyLimitsFile(&limits, path); err != nil {
			return domain.BoatLimits{}, err
		}
	}
	if err := applyLimitsEnv(&limits); err != nil {
		return domain.BoatLimits{}, err
	}

	if err := limits.Validate(); err != nil {
		return domain.BoatLimits{}, err
	}
	return limits, nil
}

// LoadLimitsFile reads a limits file on top of the defaults, ignoring the environment.
func LoadLimitsFile(path string) (domain.BoatLimits, error) {
	limits := DefaultLimits()
	if err := applyLimitsFile(&limits, path); err != nil {
		return domain.BoatLimits{}, err
	}
	if err := limits.Validate(); err != nil {
		return domain.BoatLimits{}, err
	}
	return limits, nil
}

func applyLimitsFile(limits *domain.BoatLimits, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read BOAT_LIMITS_FILE: %w", err)
	}

	var f limitsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse BOAT_LIMITS_FILE %s: %w", path, err)
	}

	if f.FeelsLikeTempMinKelvin != nil {
		limits.FeelsLikeTempMinKelvin = *f.FeelsLikeTempMinKelvin
	}
	if f.FeelsLikeTempMaxKelvin != nil {
		limits.FeelsLikeTempMaxKelvin = *f.FeelsLikeTempMaxKelvin
	}
	for name, limit := range f.BoatWindLimits {
		c := domain.BoatCategory(strings.ToUpper(name))
		if !slices.Contains(domain.Categories(), c) {
			return fmt.Errorf("parse BOAT_LIMITS_FILE %s: unknown boat category %q", path, name)
		}
		limits.WindLimits[c] = limit
	}
	if f.UnacceptableConditionCodes != nil {
		limits.UnacceptableConditionCodes = *f.UnacceptableConditionCodes
	}
	if f.ConditionCodeExceptions != nil {
		limits.ConditionCodeExceptions = *f.ConditionCodeExceptions
	}
	return nil
}

var windLimitEnv = map[domain.BoatCategory]string{
	domain.SeniorFourAndAbove: "WIND_LIMIT_SENIOR_FOUR",
	domain.NoviceFourAndAbove: "WIND_LIMIT_NOVICE_FOUR",
	domain.Double:             "WIND_LIMIT_DOUBLE",
	domain.Single:             "WIND_LIMIT_SINGLE",
}

func applyLimitsEnv(limits *domain.BoatLimits) error {
	if err := envInt("FEELS_LIKE_TEMP_MIN_KELVIN", &limits.FeelsLikeTempMinKelvin); err != nil {
		return err
	}
	if err := envInt("FEELS_LIKE_TEMP_MAX_KELVIN", &limits.FeelsLikeTempMaxKelvin); err != nil {
		return err
	}
	for _, c := range domain.Categories() {
		limit := limits.WindLimits[c]
		if err := envInt(windLimitEnv[c], &limit); err != nil {
			return err
		}
		limits.WindLimits[c] = limit
	}
	// An explicitly empty variable clears the list.
	if s, ok := os.LookupEnv("UNACCEPTABLE_CONDITION_CODES"); ok {
		limits.UnacceptableConditionCodes = splitList(s)
	}
	if s, ok := os.LookupEnv("CONDITION_CODE_EXCEPTIONS"); ok {
		limits.ConditionCodeExceptions = splitList(s)
	}
	return nil
}

func envInt(key string, dst *int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be an integer", key, s)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
