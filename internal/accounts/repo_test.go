package accounts

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func seedUser(t *testing.T, db *gorm.DB, points int, level enums.EcoLevel) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "buyer@example.com",
		Username:     "buyer",
		PasswordHash: "x",
		EcoPoints:    points,
		EcoLevel:     level,
		TrustScore:   50,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestCreditPurchaseStepsOneLevel(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, 950, enums.EcoLevelApprentice)

	updated, err := repo.CreditPurchase(ctx, user.ID, 60, decimal.RequireFromString("12.5"))
	if err != nil {
		t.Fatalf("credit purchase: %v", err)
	}
	if updated.EcoPoints != 1010 {
		t.Fatalf("expected 1010 points, got %d", updated.EcoPoints)
	}
	if updated.EcoLevel != enums.EcoLevelNinja {
		t.Fatalf("expected ninja, got %s", updated.EcoLevel)
	}
	if !updated.CO2Saved.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected 12.5 co2, got %s", updated.CO2Saved)
	}

	var stored models.User
	if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.EcoPoints != 1010 || stored.EcoLevel != enums.EcoLevelNinja {
		t.Fatalf("persisted state mismatch: %d %s", stored.EcoPoints, stored.EcoLevel)
	}
}

func TestCreditPurchaseNeverSkipsNinja(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, 0, enums.EcoLevelApprentice)

	updated, err := repo.CreditPoints(ctx, user.ID, 6000)
	if err != nil {
		t.Fatalf("credit points: %v", err)
	}
	if updated.EcoLevel != enums.EcoLevelNinja {
		t.Fatalf("expected single-step promotion to ninja, got %s", updated.EcoLevel)
	}

	// A second credit completes the climb.
	updated, err = repo.CreditPoints(ctx, user.ID, 1)
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if updated.EcoLevel != enums.EcoLevelLegend {
		t.Fatalf("expected legend after second credit, got %s", updated.EcoLevel)
	}
}

func TestAdjustTrustScoreClamps(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, 0, enums.EcoLevelApprentice)

	updated, err := repo.AdjustTrustScore(ctx, user.ID, 500)
	if err != nil {
		t.Fatalf("adjust trust score: %v", err)
	}
	if updated.TrustScore != 100 {
		t.Fatalf("expected clamp at 100, got %d", updated.TrustScore)
	}

	updated, err = repo.AdjustTrustScore(ctx, user.ID, -500)
	if err != nil {
		t.Fatalf("adjust trust score down: %v", err)
	}
	if updated.TrustScore != 0 {
		t.Fatalf("expected clamp at 0, got %d", updated.TrustScore)
	}
}
