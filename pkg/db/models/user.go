package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// User is a marketplace account with gamification counters.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Bio          string    `gorm:"column:bio"`
	Location     string    `gorm:"column:location"`

	EcoPoints int             `gorm:"column:eco_points;not null;default:0"`
	EcoLevel  enums.EcoLevel  `gorm:"column:eco_level;not null;default:'apprentice'"`
	CO2Saved  decimal.Decimal `gorm:"column:co2_saved;type:numeric(10,2);not null;default:0"`

	IsVerified bool `gorm:"column:is_verified;not null;default:false"`
	TrustScore int  `gorm:"column:trust_score;not null;default:50"`

	Language             string `gorm:"column:language;not null;default:'en'"`
	NotificationsEnabled bool   `gorm:"column:notifications_enabled;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
