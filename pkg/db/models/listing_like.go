package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingLike is one user liking one listing. The pair is unique so the
// likes counter on the listing moves at most once per user.
type ListingLike struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:idx_listing_user_like"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_listing_user_like"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *ListingLike) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
