package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniapp-rewards-system/storage"
)

func newTestUserService(base time.Time) (*UserService, *time.Time) {
	now := base
	svc := NewUserService(storage.NewMemoryStore())
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestGetOrCreateNewUser(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	svc, _ := newTestUserService(base)

	user, err := svc.GetOrCreate(ctx, 42, "Alice", "Alice_W")
	require.NoError(t, err)

	assert.Equal(t, int64(42), user.UserID)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "alice_w", user.Username)
	assert.Equal(t, int64(0), user.Balance)
	assert.Equal(t, int64(0), user.TasksCompleted)
	assert.Equal(t, int64(0), user.ReferralsCount)
	assert.Nil(t, user.ReferredBy)

	// First sighting counts as the first daily visit.
	assert.Equal(t, int64(DailyLoginExperienceReward), user.Experience)
	assert.Equal(t, 1, user.StreakCount)
	assert.Equal(t, "2025-06-01", user.LastDailyRewardDate)
	assert.Equal(t, 1, user.Level)
	assert.Equal(t, base, user.CreatedAt)
	assert.Equal(t, base, user.LastActive)
}

func TestDailyBonusGrantedOncePerCalendarDay(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc, now := newTestUserService(base)

	_, err := svc.GetOrCreate(ctx, 7, "Bob", "")
	require.NoError(t, err)

	// Late-evening visit on the same UTC day: no second bonus.
	*now = base.Add(14 * time.Hour)
	user, err := svc.GetOrCreate(ctx, 7, "Bob", "")
	require.NoError(t, err)
	assert.Equal(t, int64(DailyLoginExperienceReward), user.Experience)
	assert.Equal(t, 1, user.StreakCount)
	assert.Equal(t, *now, user.LastActive, "last_active still refreshes")
}

func TestDailyStreakContinuesNextDay(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	svc, now := newTestUserService(base)

	_, err := svc.GetOrCreate(ctx, 7, "Bob", "")
	require.NoError(t, err)

	// Ten minutes later, but across the UTC midnight boundary.
	*now = base.Add(20 * time.Minute)
	user, err := svc.GetOrCreate(ctx, 7, "Bob", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2*DailyLoginExperienceReward), user.Experience)
	assert.Equal(t, 2, user.StreakCount)
	assert.Equal(t, "2025-06-02", user.LastDailyRewardDate)
}

func TestDailyStreakResetsAfterGap(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, now := newTestUserService(base)

	_, err := svc.GetOrCreate(ctx, 7, "Bob", "")
	require.NoError(t, err)
	*now = base.AddDate(0, 0, 1)
	_, err = svc.GetOrCreate(ctx, 7, "Bob", "")
	require.NoError(t, err)

	// Two missed days: bonus still granted, streak back to 1.
	*now = base.AddDate(0, 0, 4)
	user, err := svc.GetOrCreate(ctx, 7, "Bob", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3*DailyLoginExperienceReward), user.Experience)
	assert.Equal(t, 1, user.StreakCount)
	assert.Equal(t, "2025-06-05", user.LastDailyRewardDate)
}

func TestGetOrCreateInvalidInput(t *testing.T) {
	svc, _ := newTestUserService(time.Now())
	_, err := svc.GetOrCreate(context.Background(), 0, "Alice", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.GetOrCreate(context.Background(), 5, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMissingUser(t *testing.T) {
	svc, _ := newTestUserService(time.Now())
	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
