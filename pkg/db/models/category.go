package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is immutable reference data carrying the sustainability inputs
// for smart pricing and CO2 derivation.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	Icon        string    `gorm:"column:icon;not null;default:'fas fa-tag'"`
	Color       string    `gorm:"column:color;not null;default:'primary'"`

	// AvgCO2PerKg is the average emissions avoided per kg of reused goods.
	AvgCO2PerKg decimal.Decimal `gorm:"column:avg_co2_per_kg;type:numeric(10,2);not null;default:0"`
	// DepreciationRate feeds the resale price derivation, in [0,1].
	DepreciationRate decimal.Decimal `gorm:"column:depreciation_rate;type:numeric(3,2);not null;default:0.20"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
