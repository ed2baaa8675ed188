package repository

import (
	"context"
	"time"

	"github.com/mentorhive/achievements-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserAchievementRepository interface {
	// Upsert writes progress for the (user, achievement) pair in a single
	// atomic statement. It never touches unlocked_at; unlocking goes
	// through ClaimUnlock.
	Upsert(ctx context.Context, ua *model.UserAchievement) error
	// ClaimUnlock marks the pair unlocked if and only if it is not already.
	// The conditional update is the atomic fresh-unlock signal: exactly one
	// of any number of concurrent claimants gets true back.
	ClaimUnlock(ctx context.Context, userUID, achievementID string, at time.Time) (bool, error)
	Find(ctx context.Context, userUID, achievementID string) (*model.UserAchievement, error)
	ListByUser(ctx context.Context, userUID string) ([]model.UserAchievement, error)
	Delete(ctx context.Context, userUID, achievementID string) error
	UnlockedPoints(ctx context.Context, userUID string) (int, error)
	CountUnlocked(ctx context.Context, userUID string) (int64, error)
}

type userAchievementRepository struct {
	db *gorm.DB
}

func NewUserAchievementRepository(db *gorm.DB) UserAchievementRepository {
	return &userAchievementRepository{db: db}
}

func (r *userAchievementRepository) Upsert(ctx context.Context, ua *model.UserAchievement) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_uid"}, {Name: "achievement_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			// Once unlocked, progress stays pinned at 100 until an explicit
			// reset deletes the row.
			"progress": gorm.Expr("CASE WHEN unlocked_at IS NULL THEN ? ELSE progress END", ua.Progress),
		}),
	}).Create(ua).Error
}

func (r *userAchievementRepository) ClaimUnlock(ctx context.Context, userUID, achievementID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Where("user_uid = ? AND achievement_id = ? AND unlocked_at IS NULL", userUID, achievementID).
		Updates(map[string]interface{}{
			"unlocked_at": at,
			"progress":    100,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userAchievementRepository) Find(ctx context.Context, userUID, achievementID string) (*model.UserAchievement, error) {
	var ua model.UserAchievement
	if err := r.db.WithContext(ctx).
		Where("user_uid = ? AND achievement_id = ?", userUID, achievementID).
		First(&ua).Error; err != nil {
		return nil, err
	}
	return &ua, nil
}

func (r *userAchievementRepository) ListByUser(ctx context.Context, userUID string) ([]model.UserAchievement, error) {
	var list []model.UserAchievement
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userAchievementRepository) Delete(ctx context.Context, userUID, achievementID string) error {
	return r.db.WithContext(ctx).
		Where("user_uid = ? AND achievement_id = ?", userUID, achievementID).
		Delete(&model.UserAchievement{}).Error
}

func (r *userAchievementRepository) UnlockedPoints(ctx context.Context, userUID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Select("COALESCE(SUM(achievements.points), 0)").
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_uid = ? AND user_achievements.unlocked_at IS NOT NULL", userUID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *userAchievementRepository) CountUnlocked(ctx context.Context, userUID string) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Where("user_uid = ? AND unlocked_at IS NOT NULL", userUID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
