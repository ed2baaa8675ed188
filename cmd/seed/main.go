package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mentorhive/achievements-backend/internal/config"
	"github.com/mentorhive/achievements-backend/internal/db"
	"github.com/mentorhive/achievements-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.UserLevel{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := seedCatalog(ctx, gdb); err != nil {
		return err
	}
	return seedDevUsers(ctx, gdb)
}

// seedCatalog upserts the reference catalog. Existing rows keep their id and
// get refreshed display fields, so the command is safe to re-run.
func seedCatalog(ctx context.Context, gdb *gorm.DB) error {
	catalog := []model.Achievement{
		{ID: "first-session", Title: "First Session", Description: "Complete your first mentorship session.", Category: "Sessions", Points: 25},
		{ID: "ten-sessions", Title: "Regular", Description: "Complete ten mentorship sessions.", Category: "Sessions", Points: 50},
		{ID: "fifty-sessions", Title: "Veteran", Description: "Complete fifty mentorship sessions.", Category: "Sessions", Points: 200},
		{ID: "profile-complete", Title: "All Set Up", Description: "Fill out every section of your profile.", Category: "Profile", Points: 25},
		{ID: "first-review", Title: "First Impressions", Description: "Receive your first review.", Category: "Community", Points: 25},
		{ID: "five-star-streak", Title: "Crowd Favorite", Description: "Receive five consecutive five-star reviews.", Category: "Community", Points: 100},
		{ID: "first-earnings", Title: "Open for Business", Description: "Receive your first payout.", Category: "Earnings", Points: 50},
		{ID: "messaging-debut", Title: "Icebreaker", Description: "Send your first message to a mentor or mentee.", Category: "Community", Points: 10},
	}
	for i := range catalog {
		if err := gdb.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"title":       catalog[i].Title,
				"description": catalog[i].Description,
				"category":    catalog[i].Category,
				"points":      catalog[i].Points,
			}),
		}).Create(&catalog[i]).Error; err != nil {
			return fmt.Errorf("seed achievement %s: %w", catalog[i].ID, err)
		}
	}
	log.Printf("seeded %d achievements", len(catalog))
	return nil
}

// seedDevUsers creates a throwaway admin and member for local testing. Skipped
// when any user already exists.
func seedDevUsers(ctx context.Context, gdb *gorm.DB) error {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.User{}).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		log.Printf("users already exist; skipping dev users")
		return nil
	}
	users := []model.User{
		{UID: uuid.NewString(), DisplayName: "Dev Admin", Role: model.RoleAdmin},
		{UID: uuid.NewString(), DisplayName: "Dev Member", Role: model.RoleMember},
	}
	for i := range users {
		if err := gdb.WithContext(ctx).Create(&users[i]).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].DisplayName, err)
		}
		log.Printf("created %s uid=%s", users[i].DisplayName, users[i].UID)
	}
	return nil
}
