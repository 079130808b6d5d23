package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
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
	if err := conn.AutoMigrate(&models.User{}, &models.Category{}, &models.Listing{}, &models.ListingLike{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func seedSellerAndCategory(t *testing.T, db *gorm.DB) (*models.User, *models.Category) {
	t.Helper()
	seller := &models.User{
		Email:        "seller@example.com",
		Username:     "seller",
		PasswordHash: "x",
		EcoLevel:     enums.EcoLevelApprentice,
		TrustScore:   50,
	}
	if err := db.Create(seller).Error; err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	category := &models.Category{
		Name:             "Books",
		AvgCO2PerKg:      decimal.RequireFromString("1.5"),
		DepreciationRate: decimal.RequireFromString("0.1"),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return seller, category
}

func seedListing(t *testing.T, db *gorm.DB, seller *models.User, category *models.Category, title string, status enums.ListingStatus, createdAt time.Time) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		Title:      title,
		CategoryID: category.ID,
		Condition:  enums.ListingConditionGood,
		Price:      decimal.RequireFromString("10"),
		Currency:   enums.CurrencyUSD,
		SellerID:   seller.ID,
		Status:     status,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("seed listing %q: %v", title, err)
	}
	if err := db.Model(listing).UpdateColumn("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate listing %q: %v", title, err)
	}
	listing.CreatedAt = createdAt
	return listing
}

func TestListFiltersByStatusAndQuery(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller, category := seedSellerAndCategory(t, db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedListing(t, db, seller, category, "Vintage atlas", enums.ListingStatusAvailable, base)
	seedListing(t, db, seller, category, "Cookbook bundle", enums.ListingStatusAvailable, base.Add(time.Minute))
	seedListing(t, db, seller, category, "Atlas of birds", enums.ListingStatusSold, base.Add(2*time.Minute))

	available := enums.ListingStatusAvailable
	rows, next, err := repo.List(ctx, listListingsParams{Status: &available, Query: "atlas"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if next != nil {
		t.Fatal("unexpected next cursor")
	}
	if len(rows) != 1 || rows[0].Title != "Vintage atlas" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].Category == nil || rows[0].Category.Name != "Books" {
		t.Fatal("expected category preloaded")
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller, category := seedSellerAndCategory(t, db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedListing(t, db, seller, category, fmt.Sprintf("Listing %d", i), enums.ListingStatusAvailable, base.Add(time.Duration(i)*time.Minute))
	}

	first, next, err := repo.List(ctx, listListingsParams{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || next == nil {
		t.Fatalf("expected full page with cursor, got %d rows", len(first))
	}
	if first[0].Title != "Listing 4" || first[1].Title != "Listing 3" {
		t.Fatalf("unexpected order: %s, %s", first[0].Title, first[1].Title)
	}

	second, _, err := repo.List(ctx, listListingsParams{Limit: 2, Cursor: next})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 2 || second[0].Title != "Listing 2" {
		t.Fatalf("unexpected second page: %+v", second)
	}
}

func TestIncrementViews(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller, category := seedSellerAndCategory(t, db)
	listing := seedListing(t, db, seller, category, "Counter test", enums.ListingStatusAvailable, time.Now().UTC())

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViews(ctx, listing.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	var stored models.Listing
	if err := db.First(&stored, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if stored.ViewsCount != 3 {
		t.Fatalf("expected 3 views, got %d", stored.ViewsCount)
	}
}

func TestLikesMoveCounterOncePerUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller, category := seedSellerAndCategory(t, db)
	listing := seedListing(t, db, seller, category, "Liked lamp", enums.ListingStatusAvailable, time.Now().UTC())
	fan := uuid.New()

	created, err := repo.AddLike(ctx, listing.ID, fan)
	if err != nil || !created {
		t.Fatalf("first like should create: created=%v err=%v", created, err)
	}
	created, err = repo.AddLike(ctx, listing.ID, fan)
	if err != nil || created {
		t.Fatalf("second like must be a no-op: created=%v err=%v", created, err)
	}

	var stored models.Listing
	if err := db.First(&stored, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if stored.LikesCount != 1 {
		t.Fatalf("expected 1 like, got %d", stored.LikesCount)
	}

	removed, err := repo.RemoveLike(ctx, listing.ID, fan)
	if err != nil || !removed {
		t.Fatalf("unlike should remove: removed=%v err=%v", removed, err)
	}
	removed, err = repo.RemoveLike(ctx, listing.ID, fan)
	if err != nil || removed {
		t.Fatalf("second unlike must be a no-op: removed=%v err=%v", removed, err)
	}

	if err := db.First(&stored, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if stored.LikesCount != 0 {
		t.Fatalf("expected 0 likes after unlike, got %d", stored.LikesCount)
	}
}

func TestCountActiveBySeller(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller, category := seedSellerAndCategory(t, db)
	now := time.Now().UTC()
	seedListing(t, db, seller, category, "Active one", enums.ListingStatusAvailable, now)
	seedListing(t, db, seller, category, "Active two", enums.ListingStatusAvailable, now.Add(time.Second))
	seedListing(t, db, seller, category, "Gone", enums.ListingStatusSold, now.Add(2*time.Second))

	count, err := repo.CountActiveBySeller(ctx, seller.ID)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 active listings, got %d", count)
	}

	count, err = repo.CountActiveBySeller(ctx, uuid.New())
	if err != nil {
		t.Fatalf("count for stranger: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 for stranger, got %d", count)
	}
}
