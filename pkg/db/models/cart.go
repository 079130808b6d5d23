package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart holds the staged purchases for one buyer. One cart per user.
type Cart struct {
	ID     uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID uuid.UUID  `gorm:"column:user_id;type:uuid;uniqueIndex;not null"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
