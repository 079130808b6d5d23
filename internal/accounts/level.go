package accounts

import "github.com/ecofinds/ecofinds-backend/pkg/enums"

const (
	// NinjaThreshold is the eco point total promoting apprentice to ninja.
	NinjaThreshold = 1000
	// LegendThreshold is the eco point total promoting ninja to legend.
	LegendThreshold = 5000
)

// NextLevel evaluates the level after a credit. Promotion moves at most one
// tier per call, so a large first credit lands on ninja, not legend.
func NextLevel(current enums.EcoLevel, totalPoints int) enums.EcoLevel {
	switch {
	case current == enums.EcoLevelApprentice && totalPoints >= NinjaThreshold:
		return enums.EcoLevelNinja
	case current == enums.EcoLevelNinja && totalPoints >= LegendThreshold:
		return enums.EcoLevelLegend
	}
	return current
}
