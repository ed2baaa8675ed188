package repository

import (
	"context"

	"github.com/mentorhive/achievements-backend/internal/model"
	"gorm.io/gorm"
)

type AchievementRepository interface {
	Create(ctx context.Context, a *model.Achievement) error
	FindByID(ctx context.Context, id string) (*model.Achievement, error)
	List(ctx context.Context) ([]model.Achievement, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, a *model.Achievement) error
	Delete(ctx context.Context, id string) error
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, a *model.Achievement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *achievementRepository) FindByID(ctx context.Context, id string) (*model.Achievement, error) {
	var a model.Achievement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *achievementRepository) List(ctx context.Context) ([]model.Achievement, error) {
	var list []model.Achievement
	if err := r.db.WithContext(ctx).
		Order("category asc, points asc, id asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *achievementRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Achievement{}).Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *achievementRepository) Update(ctx context.Context, a *model.Achievement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *achievementRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Achievement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
