package enums

import "fmt"

// EcoLevel is the gamification tier a user has reached.
type EcoLevel string

const (
	EcoLevelApprentice EcoLevel = "apprentice"
	EcoLevelNinja      EcoLevel = "ninja"
	EcoLevelLegend     EcoLevel = "legend"
)

var validEcoLevels = []EcoLevel{
	EcoLevelApprentice,
	EcoLevelNinja,
	EcoLevelLegend,
}

// IsValid reports whether the value matches the canonical eco level enum.
func (l EcoLevel) IsValid() bool {
	for _, candidate := range validEcoLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

// Badge returns the display badge for the level.
func (l EcoLevel) Badge() string {
	switch l {
	case EcoLevelApprentice:
		return "Eco Apprentice"
	case EcoLevelNinja:
		return "Eco Ninja"
	case EcoLevelLegend:
		return "Eco Legend"
	}
	return string(l)
}

// ParseEcoLevel converts the raw string to EcoLevel.
func ParseEcoLevel(value string) (EcoLevel, error) {
	for _, candidate := range validEcoLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid eco level %q", value)
}
