package repository

import (
	"context"
	"errors"

	"github.com/mentorhive/achievements-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserLevelRepository interface {
	Get(ctx context.Context, userUID string) (*model.UserLevel, error)
	Save(ctx context.Context, lvl *model.UserLevel) error
}

type userLevelRepository struct {
	db *gorm.DB
}

func NewUserLevelRepository(db *gorm.DB) UserLevelRepository {
	return &userLevelRepository{db: db}
}

// Get returns the stored level row, or a fresh level-1 row if the user has
// never unlocked anything. The lazy row is not persisted here.
func (r *userLevelRepository) Get(ctx context.Context, userUID string) (*model.UserLevel, error) {
	var lvl model.UserLevel
	err := r.db.WithContext(ctx).Where("user_uid = ?", userUID).First(&lvl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserLevel{UserUID: userUID, Level: 1, TotalPoints: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (r *userLevelRepository) Save(ctx context.Context, lvl *model.UserLevel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_uid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"level":        lvl.Level,
			"total_points": lvl.TotalPoints,
		}),
	}).Create(lvl).Error
}
