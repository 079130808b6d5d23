package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// Notification is a stored, best-effort message to a user.
type Notification struct {
	ID     uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Kind   enums.NotificationKind `gorm:"column:kind;not null"`
	Body   string                 `gorm:"column:body;not null"`
	Read   bool                   `gorm:"column:read;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
