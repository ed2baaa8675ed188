package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mentorhive/achievements-backend/internal/logger"
	"github.com/mentorhive/achievements-backend/internal/model"
	"github.com/mentorhive/achievements-backend/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type NotificationService interface {
	// NotifyUnlock and NotifyLevelUp are best-effort: a failed write is
	// logged and swallowed so it never rolls back the unlock that caused it.
	NotifyUnlock(ctx context.Context, userUID string, a *model.Achievement)
	NotifyLevelUp(ctx context.Context, userUID string, newLevel, totalPoints int)
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userUID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// unlockMetadata and levelUpMetadata are the structured payloads clients
// render from; the message text is display-only and must not be parsed.
type unlockMetadata struct {
	AchievementID string `json:"achievementId"`
	Title         string `json:"title"`
	Points        uint   `json:"points"`
}

type levelUpMetadata struct {
	Level       int `json:"level"`
	TotalPoints int `json:"totalPoints"`
}

func (s *notificationService) NotifyUnlock(ctx context.Context, userUID string, a *model.Achievement) {
	if userUID == "" || a == nil {
		return
	}
	meta, _ := json.Marshal(unlockMetadata{AchievementID: a.ID, Title: a.Title, Points: a.Points})
	s.create(ctx, &model.Notification{
		UserUID:     userUID,
		Type:        model.NotificationTypeAchievement,
		Title:       "Achievement unlocked",
		Message:     fmt.Sprintf("You unlocked %q (+%d pts)", a.Title, a.Points),
		IsImportant: true,
		Metadata:    datatypes.JSON(meta),
	})
}

func (s *notificationService) NotifyLevelUp(ctx context.Context, userUID string, newLevel, totalPoints int) {
	if userUID == "" {
		return
	}
	meta, _ := json.Marshal(levelUpMetadata{Level: newLevel, TotalPoints: totalPoints})
	s.create(ctx, &model.Notification{
		UserUID:     userUID,
		Type:        model.NotificationTypeLevelUp,
		Title:       "Level up",
		Message:     fmt.Sprintf("You reached level %d", newLevel),
		IsImportant: true,
		Metadata:    datatypes.JSON(meta),
	})
}

func (s *notificationService) create(ctx context.Context, n *model.Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		logger.WithFields(logrus.Fields{
			"user_uid": n.UserUID,
			"type":     n.Type,
		}).Warnf("failed to write notification: %v", err)
	}
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}
