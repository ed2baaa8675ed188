package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/mentorhive/achievements-backend/internal/model"
	"github.com/mentorhive/achievements-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidArgument = errors.New("invalid_argument")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyUnlocked = errors.New("already_unlocked")
)

// Stats is the aggregate view computed fresh from storage on every call.
type Stats struct {
	TotalPoints        int     `json:"totalPoints"`
	UnlockedCount      int64   `json:"unlockedCount"`
	TotalCount         int64   `json:"totalCount"`
	ProgressPercentage float64 `json:"progressPercentage"`
	CurrentLevel       int     `json:"currentLevel"`
	NextLevel          int     `json:"nextLevel"`
	PointsToNextLevel  int     `json:"pointsToNextLevel"`
}

// AchievementStatus is one catalog entry merged with the user's progress.
type AchievementStatus struct {
	Achievement model.Achievement `json:"achievement"`
	Progress    int               `json:"progress"`
	Unlocked    bool              `json:"unlocked"`
	UnlockedAt  *time.Time        `json:"unlockedAt,omitempty"`
}

// Overview is the GET response: full catalog with per-user state, the
// unlocked subset, and the aggregate stats.
type Overview struct {
	Catalog  []AchievementStatus `json:"catalog"`
	Unlocked []AchievementStatus `json:"unlocked"`
	Stats    Stats               `json:"stats"`
}

type AchievementService interface {
	SetProgress(ctx context.Context, userUID, achievementID string, progress int) (*model.UserAchievement, error)
	Unlock(ctx context.Context, userUID, achievementID string) (*model.UserAchievement, error)
	Reset(ctx context.Context, userUID, achievementID string) error
	Stats(ctx context.Context, userUID string) (*Stats, error)
	Overview(ctx context.Context, userUID string) (*Overview, error)
}

type achievementService struct {
	achievements repository.AchievementRepository
	progress     repository.UserAchievementRepository
	levels       repository.UserLevelRepository
	notifier     NotificationService
	now          func() time.Time
}

func NewAchievementService(
	achievements repository.AchievementRepository,
	progress repository.UserAchievementRepository,
	levels repository.UserLevelRepository,
	notifier NotificationService,
) AchievementService {
	return &achievementService{
		achievements: achievements,
		progress:     progress,
		levels:       levels,
		notifier:     notifier,
		now:          time.Now,
	}
}

// SetProgress upserts progress for the pair, clamping into [0,100]. A
// transition from below 100 to 100 is a fresh unlock: the level is
// recomputed first, then notifications are emitted. Re-submitting 100 for an
// already unlocked achievement is a no-op for unlock semantics.
func (s *achievementService) SetProgress(ctx context.Context, userUID, achievementID string, progress int) (*model.UserAchievement, error) {
	row, fresh, ach, err := s.writeProgress(ctx, userUID, achievementID, progress)
	if err != nil {
		return nil, err
	}
	if fresh {
		if err := s.afterUnlock(ctx, userUID, ach); err != nil {
			return nil, err
		}
	}
	return row, nil
}

// Unlock is the strict claim path: equivalent to SetProgress(..., 100) but
// fails with ErrAlreadyUnlocked when the achievement was unlocked before.
func (s *achievementService) Unlock(ctx context.Context, userUID, achievementID string) (*model.UserAchievement, error) {
	row, fresh, ach, err := s.writeProgress(ctx, userUID, achievementID, 100)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return row, ErrAlreadyUnlocked
	}
	if err := s.afterUnlock(ctx, userUID, ach); err != nil {
		return nil, err
	}
	return row, nil
}

// Reset deletes the progress row and recomputes the level, which may
// decrease. Resets are silent: no notification is emitted.
func (s *achievementService) Reset(ctx context.Context, userUID, achievementID string) error {
	if userUID == "" || achievementID == "" {
		return ErrInvalidArgument
	}
	if err := s.progress.Delete(ctx, userUID, achievementID); err != nil {
		return err
	}
	_, _, _, err := s.recomputeLevel(ctx, userUID)
	return err
}

// writeProgress validates, clamps and atomically upserts. The returned fresh
// flag reports whether this call is the one that unlocked the achievement:
// ClaimUnlock only matches a row whose unlocked_at is still NULL, so of any
// number of concurrent claimants exactly one sees the row flip. No clock
// comparison is involved.
func (s *achievementService) writeProgress(ctx context.Context, userUID, achievementID string, progress int) (*model.UserAchievement, bool, *model.Achievement, error) {
	if userUID == "" || achievementID == "" {
		return nil, false, nil, ErrInvalidArgument
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	ach, err := s.achievements.FindByID(ctx, achievementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil, ErrNotFound
		}
		return nil, false, nil, err
	}

	ua := &model.UserAchievement{
		UserUID:       userUID,
		AchievementID: achievementID,
		Progress:      progress,
	}
	if err := s.progress.Upsert(ctx, ua); err != nil {
		return nil, false, nil, err
	}

	fresh := false
	if progress >= 100 {
		fresh, err = s.progress.ClaimUnlock(ctx, userUID, achievementID, s.now())
		if err != nil {
			return nil, false, nil, err
		}
	}

	row, err := s.progress.Find(ctx, userUID, achievementID)
	if err != nil {
		return nil, false, nil, err
	}
	return row, fresh, ach, nil
}

// afterUnlock runs the unlock side effects in order: level recompute first,
// so the level-up notification describes the current level.
func (s *achievementService) afterUnlock(ctx context.Context, userUID string, ach *model.Achievement) error {
	oldLevel, newLevel, total, err := s.recomputeLevel(ctx, userUID)
	if err != nil {
		return err
	}
	s.notifier.NotifyUnlock(ctx, userUID, ach)
	if newLevel > oldLevel {
		s.notifier.NotifyLevelUp(ctx, userUID, newLevel, total)
	}
	return nil
}

// recomputeLevel derives level and total points from a full re-scan of the
// user's unlocked achievements and rewrites the stored row. Concurrent
// recomputations converge on the same answer, so races are harmless.
func (s *achievementService) recomputeLevel(ctx context.Context, userUID string) (oldLevel, newLevel, totalPoints int, err error) {
	prev, err := s.levels.Get(ctx, userUID)
	if err != nil {
		return 0, 0, 0, err
	}
	total, err := s.progress.UnlockedPoints(ctx, userUID)
	if err != nil {
		return 0, 0, 0, err
	}
	lvl := ComputeLevel(total)
	if err := s.levels.Save(ctx, &model.UserLevel{UserUID: userUID, Level: lvl, TotalPoints: total}); err != nil {
		return 0, 0, 0, err
	}
	return prev.Level, lvl, total, nil
}

func (s *achievementService) Stats(ctx context.Context, userUID string) (*Stats, error) {
	if userUID == "" {
		return nil, ErrInvalidArgument
	}
	total, err := s.progress.UnlockedPoints(ctx, userUID)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.progress.CountUnlocked(ctx, userUID)
	if err != nil {
		return nil, err
	}
	catalogSize, err := s.achievements.Count(ctx)
	if err != nil {
		return nil, err
	}
	pct := 0.0
	if catalogSize > 0 {
		pct = math.Round(float64(unlocked)/float64(catalogSize)*1000) / 10
	}
	level := ComputeLevel(total)
	return &Stats{
		TotalPoints:        total,
		UnlockedCount:      unlocked,
		TotalCount:         catalogSize,
		ProgressPercentage: pct,
		CurrentLevel:       level,
		NextLevel:          level + 1,
		PointsToNextLevel:  PointsToNextLevel(total),
	}, nil
}

func (s *achievementService) Overview(ctx context.Context, userUID string) (*Overview, error) {
	if userUID == "" {
		return nil, ErrInvalidArgument
	}
	catalog, err := s.achievements.List(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.ListByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.UserAchievement, len(rows))
	for _, r := range rows {
		byID[r.AchievementID] = r
	}

	statuses := make([]AchievementStatus, 0, len(catalog))
	unlocked := make([]AchievementStatus, 0, len(rows))
	for _, a := range catalog {
		st := AchievementStatus{Achievement: a}
		if r, ok := byID[a.ID]; ok {
			st.Progress = r.Progress
			st.Unlocked = r.Unlocked()
			st.UnlockedAt = r.UnlockedAt
		}
		statuses = append(statuses, st)
		if st.Unlocked {
			unlocked = append(unlocked, st)
		}
	}

	stats, err := s.Stats(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return &Overview{Catalog: statuses, Unlocked: unlocked, Stats: *stats}, nil
}
