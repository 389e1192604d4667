package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniapp-rewards-system/models"
	"miniapp-rewards-system/storage"
)

func newTestReferralService(base time.Time) (*ReferralService, *storage.MemoryStore, *time.Time) {
	store := storage.NewMemoryStore()
	svc := NewReferralService(store)
	now := base
	svc.now = func() time.Time { return now }
	return svc, store, &now
}

func TestProcessReferral(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestReferralService(time.Now())
	seedUser(t, store, &models.User{UserID: 1, FirstName: "Rita", Level: 1})
	seedUser(t, store, &models.User{UserID: 2, FirstName: "Ned", Level: 1})

	ok, err := svc.Process(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	referrer, err := loadUser(ctx, store, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), referrer.ReferralsCount)
	assert.Equal(t, int64(ReferralPointsReward), referrer.Balance)
	assert.Equal(t, int64(ReferralExperienceReward), referrer.Experience)

	referred, err := loadUser(ctx, store, 2)
	require.NoError(t, err)
	require.NotNil(t, referred.ReferredBy)
	assert.Equal(t, int64(1), *referred.ReferredBy)
}

func TestReferredByIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestReferralService(time.Now())
	seedUser(t, store, &models.User{UserID: 1, FirstName: "Rita", Level: 1})
	seedUser(t, store, &models.User{UserID: 2, FirstName: "Ned", Level: 1})
	seedUser(t, store, &models.User{UserID: 3, FirstName: "Eve", Level: 1})

	_, err := svc.Process(ctx, 1, 2)
	require.NoError(t, err)

	ok, err := svc.Process(ctx, 3, 2)
	assert.ErrorIs(t, err, ErrAlreadyReferred)
	assert.False(t, ok)

	secondReferrer, err := loadUser(ctx, store, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), secondReferrer.ReferralsCount, "failed referral must not move counters")
	assert.Equal(t, int64(0), secondReferrer.Balance)

	referred, err := loadUser(ctx, store, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *referred.ReferredBy)
}

func TestSelfReferralRejected(t *testing.T) {
	svc, store, _ := newTestReferralService(time.Now())
	seedUser(t, store, &models.User{UserID: 1, FirstName: "Rita", Level: 1})

	ok, err := svc.Process(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, ok)
}

func TestReferredUserMissing(t *testing.T) {
	svc, store, _ := newTestReferralService(time.Now())
	seedUser(t, store, &models.User{UserID: 1, FirstName: "Rita", Level: 1})

	ok, err := svc.Process(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, ok)
}

func TestMissingReferrerLinkageStands(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestReferralService(time.Now())
	seedUser(t, store, &models.User{UserID: 2, FirstName: "Ned", Level: 1})

	// Referrer 1 has no record: linkage and referral edge stand, reward is
	// silently skipped.
	ok, err := svc.Process(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	referred, err := loadUser(ctx, store, 2)
	require.NoError(t, err)
	require.NotNil(t, referred.ReferredBy)
	assert.Equal(t, int64(1), *referred.ReferredBy)

	_, err = store.Get(ctx, models.ReferralKey(1, 2))
	assert.NoError(t, err, "referral record must exist")
}

func TestReferralHistory(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc, store, now := newTestReferralService(base.AddDate(0, 0, -3))
	seedUser(t, store, &models.User{UserID: 1, FirstName: "Rita", Level: 1})
	seedUser(t, store, &models.User{UserID: 2, FirstName: "Ned", Level: 1})
	seedUser(t, store, &models.User{UserID: 3, FirstName: "Eve", Level: 1})

	// One referral three days ago, one today.
	_, err := svc.Process(ctx, 1, 2)
	require.NoError(t, err)
	*now = base
	_, err = svc.Process(ctx, 1, 3)
	require.NoError(t, err)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, int64(3), history[0].ID, "newest first")
	assert.Equal(t, "Eve", history[0].Name)
	assert.Equal(t, int64(ReferralPointsReward), history[0].Earned)
	assert.Equal(t, "today", history[0].Date)

	assert.Equal(t, int64(2), history[1].ID)
	assert.Equal(t, "3 days ago", history[1].Date)
}

func TestReferralHistoryEmpty(t *testing.T) {
	svc, _, _ := newTestReferralService(time.Now())
	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, history)
}
