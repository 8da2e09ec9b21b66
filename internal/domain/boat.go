package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLimits is returned by BoatLimits.Validate.
var ErrInvalidLimits = errors.New("invalid boat limits")

// BoatCategory is a class of rowing boat with its own wind tolerance.
type BoatCategory string

const (
	SeniorFourAndAbove BoatCategory = "SENIOR_FOUR_AND_ABOVE"
	NoviceFourAndAbove BoatCategory = "NOVICE_FOUR_AND_ABOVE"
	Double             BoatCategory = "DOUBLE"
	Single             BoatCategory = "SINGLE"
)

// Categories returns every boat category ordered from most to least wind tolerant.
func Categories() []BoatCategory {
	return []BoatCategory{SeniorFourAndAbove, NoviceFourAndAbove, Double, Single}
}

// BoatLimits holds the club's go/no-go thresholds. It is loaded once at
// startup and never mutated afterwards.
type BoatLimits struct {
	FeelsLikeTempMinKelvin     int                  `json:"feelsLikeTempMinKelvin"`
	FeelsLikeTempMaxKelvin     int                  `json:"feelsLikeTempMaxKelvin"`
	WindLimits                 map[BoatCategory]int `json:"boatWindLimits"`
	UnacceptableConditionCodes []string             `json:"unacceptableConditionCodes"`
	ConditionCodeExceptions    []string             `json:"conditionCodeExceptions"`
}

// Validate reports configuration mistakes that would make every check fail
// or pass silently.
func (l BoatLimits) Validate() error {
	if l.FeelsLikeTempMinKelvin >= l.FeelsLikeTempMaxKelvin {
		return fmt.Errorf("%w: feels-like min %dK must be below max %dK",
			ErrInvalidLimits, l.FeelsLikeTempMinKelvin, l.FeelsLikeTempMaxKelvin)
	}
	for _, c := range Categories() {
		limit, ok := l.WindLimits[c]
		if !ok {
			return fmt.Errorf("%w: missing wind limit for %s", ErrInvalidLimits, c)
		}
		if limit < 0 {
			return fmt.Errorf("%w: negative wind limit %d for %s", ErrInvalidLimits, limit, c)
		}
	}
	for _, code := range l.UnacceptableConditionCodes {
		if err := validateCode(code, true); err != nil {
			return err
		}
	}
	for _, code := range l.ConditionCodeExceptions {
		if err := validateCode(code, false); err != nil {
			return err
		}
	}
	return nil
}

func validateCode(code string, allowFamily bool) error {
	if code == "" {
		return fmt.Errorf("%w: empty condition code", ErrInvalidLimits)
	}
	if isFamily(code) {
		if !allowFamily {
			return fmt.Errorf("%w: exception %q must name a single code", ErrInvalidLimits, code)
		}
		return nil
	}
	if strings.ContainsFunc(code, func(r rune) bool { return r < '0' || r > '9' }) {
		return fmt.Errorf("%w: condition code %q is not numeric", ErrInvalidLimits, code)
	}
	return nil
}

// isFamily reports whether code is a whole-family wildcard such as "7xx".
func isFamily(code string) bool {
	return len(code) == 3 && code[0] >= '0' && code[0] <= '9' && code[1:] == "xx"
}

// BoatsAllowed is the decision for one check. The zero value cancels everything.
type BoatsAllowed struct {
	Single             bool `json:"single"`
	Doubles            bool `json:"doubles"`
	NoviceFourAndAbove bool `json:"noviceFourAndAbove"`
	SeniorFourAndAbove bool `json:"seniorFourAndAbove"`
}

// Allowed reports the decision for a single category.
func (b BoatsAllowed) Allowed(c BoatCategory) bool {
	switch c {
	case SeniorFourAndAbove:
		return b.SeniorFourAndAbove
	case NoviceFourAndAbove:
		return b.NoviceFourAndAbove
	case Double:
		return b.Doubles
	case Single:
		return b.Single
	default:
		return false
	}
}

// Decision outcomes used for metrics and message headers.
const (
	OutcomeAllAllowed    = "all_allowed"
	OutcomeSomeCancelled = "some_cancelled"
	OutcomeAllCancelled  = "all_cancelled"
)

// Outcome summarises the decision.
func (b BoatsAllowed) Outcome() string {
	switch {
	case b.Single:
		return OutcomeAllAllowed
	case b.SeniorFourAndAbove:
		return OutcomeSomeCancelled
	default:
		return OutcomeAllCancelled
	}
}
