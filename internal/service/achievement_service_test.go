package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorhive/achievements-backend/internal/model"
	"gorm.io/gorm"
)

type fakeAchievementRepo struct {
	byID map[string]model.Achievement
}

func (f *fakeAchievementRepo) Create(_ context.Context, a *model.Achievement) error {
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAchievementRepo) FindByID(_ context.Context, id string) (*model.Achievement, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := a
	return &cp, nil
}

func (f *fakeAchievementRepo) List(_ context.Context) ([]model.Achievement, error) {
	out := make([]model.Achievement, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAchievementRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeAchievementRepo) Update(_ context.Context, a *model.Achievement) error {
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAchievementRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byID, id)
	return nil
}

type progressKey struct {
	uid string
	aid string
}

type fakeProgressRepo struct {
	rows map[progressKey]*model.UserAchievement
	ach  *fakeAchievementRepo
}

// Upsert mirrors the SQL semantics: progress only, pinned once unlocked.
func (f *fakeProgressRepo) Upsert(_ context.Context, ua *model.UserAchievement) error {
	k := progressKey{ua.UserUID, ua.AchievementID}
	if existing, ok := f.rows[k]; ok {
		if existing.UnlockedAt == nil {
			existing.Progress = ua.Progress
		}
		return nil
	}
	cp := *ua
	f.rows[k] = &cp
	return nil
}

// ClaimUnlock mirrors the conditional update: only a still-locked row flips,
// and only that caller gets true.
func (f *fakeProgressRepo) ClaimUnlock(_ context.Context, userUID, achievementID string, at time.Time) (bool, error) {
	ua, ok := f.rows[progressKey{userUID, achievementID}]
	if !ok || ua.UnlockedAt != nil {
		return false, nil
	}
	ts := at
	ua.UnlockedAt = &ts
	ua.Progress = 100
	return true, nil
}

func (f *fakeProgressRepo) Find(_ context.Context, userUID, achievementID string) (*model.UserAchievement, error) {
	ua, ok := f.rows[progressKey{userUID, achievementID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ua
	return &cp, nil
}

func (f *fakeProgressRepo) ListByUser(_ context.Context, userUID string) ([]model.UserAchievement, error) {
	var out []model.UserAchievement
	for k, ua := range f.rows {
		if k.uid == userUID {
			out = append(out, *ua)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) Delete(_ context.Context, userUID, achievementID string) error {
	delete(f.rows, progressKey{userUID, achievementID})
	return nil
}

func (f *fakeProgressRepo) UnlockedPoints(_ context.Context, userUID string) (int, error) {
	total := 0
	for k, ua := range f.rows {
		if k.uid != userUID || ua.UnlockedAt == nil {
			continue
		}
		if a, ok := f.ach.byID[k.aid]; ok {
			total += int(a.Points)
		}
	}
	return total, nil
}

func (f *fakeProgressRepo) CountUnlocked(_ context.Context, userUID string) (int64, error) {
	var cnt int64
	for k, ua := range f.rows {
		if k.uid == userUID && ua.UnlockedAt != nil {
			cnt++
		}
	}
	return cnt, nil
}

type fakeLevelRepo struct {
	rows map[string]*model.UserLevel
}

func (f *fakeLevelRepo) Get(_ context.Context, userUID string) (*model.UserLevel, error) {
	if lvl, ok := f.rows[userUID]; ok {
		cp := *lvl
		return &cp, nil
	}
	return &model.UserLevel{UserUID: userUID, Level: 1, TotalPoints: 0}, nil
}

func (f *fakeLevelRepo) Save(_ context.Context, lvl *model.UserLevel) error {
	cp := *lvl
	f.rows[lvl.UserUID] = &cp
	return nil
}

type recordedLevelUp struct {
	level       int
	totalPoints int
}

type fakeNotifier struct {
	unlocks  []string
	levelUps []recordedLevelUp
}

func (f *fakeNotifier) NotifyUnlock(_ context.Context, _ string, a *model.Achievement) {
	f.unlocks = append(f.unlocks, a.ID)
}

func (f *fakeNotifier) NotifyLevelUp(_ context.Context, _ string, newLevel, totalPoints int) {
	f.levelUps = append(f.levelUps, recordedLevelUp{newLevel, totalPoints})
}

func (f *fakeNotifier) List(_ context.Context, _ string, _ bool, _ int) ([]model.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifier) MarkAllRead(_ context.Context, _ string) error {
	return nil
}

type fixture struct {
	svc      *achievementService
	ach      *fakeAchievementRepo
	progress *fakeProgressRepo
	levels   *fakeLevelRepo
	notifier *fakeNotifier
	now      *time.Time
}

func newFixture(catalog ...model.Achievement) *fixture {
	ach := &fakeAchievementRepo{byID: map[string]model.Achievement{}}
	for _, a := range catalog {
		ach.byID[a.ID] = a
	}
	progress := &fakeProgressRepo{rows: map[progressKey]*model.UserAchievement{}, ach: ach}
	levels := &fakeLevelRepo{rows: map[string]*model.UserLevel{}}
	notifier := &fakeNotifier{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{ach: ach, progress: progress, levels: levels, notifier: notifier, now: &now}
	f.svc = &achievementService{
		achievements: ach,
		progress:     progress,
		levels:       levels,
		notifier:     notifier,
		now:          func() time.Time { return *f.now },
	}
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func defaultCatalog() []model.Achievement {
	return []model.Achievement{
		{ID: "a", Title: "A", Description: "a", Category: "test", Points: 50},
		{ID: "b", Title: "B", Description: "b", Category: "test", Points: 75},
		{ID: "c", Title: "C", Description: "c", Category: "test", Points: 200},
	}
}

func TestSetProgressValidation(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.SetProgress(ctx, "", "a", 10); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing user: err=%v want ErrInvalidArgument", err)
	}
	if _, err := f.svc.SetProgress(ctx, "u1", "nope", 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown achievement: err=%v want ErrNotFound", err)
	}
}

func TestSetProgressClamps(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	row, err := f.svc.SetProgress(ctx, "u1", "a", -20)
	if err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if row.Progress != 0 || row.Unlocked() {
		t.Fatalf("progress=%d unlocked=%v, want 0/false", row.Progress, row.Unlocked())
	}

	row, err = f.svc.SetProgress(ctx, "u1", "a", 150)
	if err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if row.Progress != 100 || !row.Unlocked() {
		t.Fatalf("progress=%d unlocked=%v, want 100/true", row.Progress, row.Unlocked())
	}
}

func TestSetProgressSingleUnlockNotification(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.SetProgress(ctx, "u1", "a", 40); err != nil {
		t.Fatalf("SetProgress(40): %v", err)
	}
	if len(f.notifier.unlocks) != 0 {
		t.Fatalf("unlock notified below threshold")
	}
	f.advance(time.Minute)
	if _, err := f.svc.SetProgress(ctx, "u1", "a", 100); err != nil {
		t.Fatalf("SetProgress(100): %v", err)
	}
	if len(f.notifier.unlocks) != 1 {
		t.Fatalf("unlock notifications=%d want 1", len(f.notifier.unlocks))
	}
}

func TestSetProgressIdempotentAt100(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	first, err := f.svc.SetProgress(ctx, "u1", "a", 100)
	if err != nil {
		t.Fatalf("first SetProgress: %v", err)
	}
	f.advance(time.Hour)
	second, err := f.svc.SetProgress(ctx, "u1", "a", 100)
	if err != nil {
		t.Fatalf("second SetProgress: %v", err)
	}
	if !second.UnlockedAt.Equal(*first.UnlockedAt) {
		t.Fatalf("unlockedAt changed: %v -> %v", first.UnlockedAt, second.UnlockedAt)
	}
	if len(f.notifier.unlocks) != 1 {
		t.Fatalf("unlock notifications=%d want 1", len(f.notifier.unlocks))
	}
}

func TestSetProgressCannotDowngradeUnlocked(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.SetProgress(ctx, "u1", "a", 100); err != nil {
		t.Fatalf("SetProgress(100): %v", err)
	}
	f.advance(time.Minute)
	row, err := f.svc.SetProgress(ctx, "u1", "a", 40)
	if err != nil {
		t.Fatalf("SetProgress(40): %v", err)
	}
	if row.Progress != 100 || !row.Unlocked() {
		t.Fatalf("row=%+v want pinned at 100/unlocked", row)
	}
}

func TestUnlockTwiceFails(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.Unlock(ctx, "u1", "a"); err != nil {
		t.Fatalf("first Unlock: %v", err)
	}
	f.advance(time.Second)
	if _, err := f.svc.Unlock(ctx, "u1", "a"); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Fatalf("second Unlock: err=%v want ErrAlreadyUnlocked", err)
	}
	if len(f.notifier.unlocks) != 1 {
		t.Fatalf("unlock notifications=%d want 1", len(f.notifier.unlocks))
	}
}

func TestUnlockTwiceSameInstantFails(t *testing.T) {
	// Both calls see the same clock reading, as two racing claims would.
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.Unlock(ctx, "u1", "a"); err != nil {
		t.Fatalf("first Unlock: %v", err)
	}
	if _, err := f.svc.Unlock(ctx, "u1", "a"); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Fatalf("second Unlock: err=%v want ErrAlreadyUnlocked", err)
	}
	if len(f.notifier.unlocks) != 1 {
		t.Fatalf("unlock notifications=%d want 1", len(f.notifier.unlocks))
	}
}

func TestUnlockUnknownAchievement(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	if _, err := f.svc.Unlock(context.Background(), "u1", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestLevelUpNotification(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	// 50 points: still level 1, no level-up.
	if _, err := f.svc.Unlock(ctx, "u1", "a"); err != nil {
		t.Fatalf("Unlock(a): %v", err)
	}
	if len(f.notifier.levelUps) != 0 {
		t.Fatalf("level up notified at 50 points")
	}
	// 125 points: crosses the 100 threshold to level 2.
	f.advance(time.Second)
	if _, err := f.svc.Unlock(ctx, "u1", "b"); err != nil {
		t.Fatalf("Unlock(b): %v", err)
	}
	if len(f.notifier.levelUps) != 1 {
		t.Fatalf("level ups=%d want 1", len(f.notifier.levelUps))
	}
	if got := f.notifier.levelUps[0]; got.level != 2 || got.totalPoints != 125 {
		t.Fatalf("level up=%+v want level=2 totalPoints=125", got)
	}
}

func TestStatsScenario(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.Unlock(ctx, "u1", "a"); err != nil {
		t.Fatalf("Unlock(a): %v", err)
	}
	if _, err := f.svc.Unlock(ctx, "u1", "b"); err != nil {
		t.Fatalf("Unlock(b): %v", err)
	}

	stats, err := f.svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalPoints != 125 {
		t.Fatalf("totalPoints=%d want 125", stats.TotalPoints)
	}
	if stats.CurrentLevel != 2 || stats.NextLevel != 3 {
		t.Fatalf("levels=%d/%d want 2/3", stats.CurrentLevel, stats.NextLevel)
	}
	if stats.PointsToNextLevel != 75 {
		t.Fatalf("pointsToNextLevel=%d want 75", stats.PointsToNextLevel)
	}
	if stats.UnlockedCount != 2 || stats.TotalCount != 3 {
		t.Fatalf("counts=%d/%d want 2/3", stats.UnlockedCount, stats.TotalCount)
	}
	if stats.ProgressPercentage != 66.7 {
		t.Fatalf("progressPercentage=%v want 66.7", stats.ProgressPercentage)
	}
}

func TestStatsEmptyCatalog(t *testing.T) {
	f := newFixture()
	stats, err := f.svc.Stats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ProgressPercentage != 0 {
		t.Fatalf("progressPercentage=%v want 0", stats.ProgressPercentage)
	}
	if stats.CurrentLevel != 1 || stats.TotalPoints != 0 {
		t.Fatalf("level=%d points=%d want 1/0", stats.CurrentLevel, stats.TotalPoints)
	}
}

func TestResetIsSilentAndRecomputes(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.Unlock(ctx, "u1", "a"); err != nil {
		t.Fatalf("Unlock(a): %v", err)
	}
	if _, err := f.svc.Unlock(ctx, "u1", "b"); err != nil {
		t.Fatalf("Unlock(b): %v", err)
	}
	unlocksBefore := len(f.notifier.unlocks)
	levelUpsBefore := len(f.notifier.levelUps)

	if err := f.svc.Reset(ctx, "u1", "b"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	stats, err := f.svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalPoints != 50 || stats.CurrentLevel != 1 {
		t.Fatalf("after reset points=%d level=%d want 50/1", stats.TotalPoints, stats.CurrentLevel)
	}
	lvl, err := f.levels.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("levels.Get: %v", err)
	}
	if lvl.Level != 1 || lvl.TotalPoints != 50 {
		t.Fatalf("stored level=%+v want level=1 totalPoints=50", lvl)
	}
	if len(f.notifier.unlocks) != unlocksBefore || len(f.notifier.levelUps) != levelUpsBefore {
		t.Fatalf("reset emitted notifications")
	}
}

func TestOverviewMergesProgress(t *testing.T) {
	f := newFixture(defaultCatalog()...)
	ctx := context.Background()

	if _, err := f.svc.Unlock(ctx, "u1", "a"); err != nil {
		t.Fatalf("Unlock(a): %v", err)
	}
	if _, err := f.svc.SetProgress(ctx, "u1", "b", 40); err != nil {
		t.Fatalf("SetProgress(b): %v", err)
	}

	ov, err := f.svc.Overview(ctx, "u1")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(ov.Catalog) != 3 {
		t.Fatalf("catalog size=%d want 3", len(ov.Catalog))
	}
	if len(ov.Unlocked) != 1 || ov.Unlocked[0].Achievement.ID != "a" {
		t.Fatalf("unlocked=%+v want just a", ov.Unlocked)
	}
	byID := map[string]AchievementStatus{}
	for _, st := range ov.Catalog {
		byID[st.Achievement.ID] = st
	}
	if st := byID["b"]; st.Progress != 40 || st.Unlocked {
		t.Fatalf("b status=%+v want progress=40 locked", st)
	}
	if st := byID["c"]; st.Progress != 0 || st.Unlocked {
		t.Fatalf("c status=%+v want untouched", st)
	}
	if ov.Stats.TotalPoints != 50 {
		t.Fatalf("stats totalPoints=%d want 50", ov.Stats.TotalPoints)
	}
}
