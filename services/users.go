package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"miniapp-rewards-system/models"
	"miniapp-rewards-system/storage"
	"miniapp-rewards-system/utils"
)

// dailyDateLayout is the stored form of LastDailyRewardDate (UTC date only).
const dailyDateLayout = "2006-01-02"

// UserService owns user records: get-or-create, activity refresh and the
// daily login streak bonus. Streak logic lives exclusively here; clients
// only render what the server returns.
type UserService struct {
	Store storage.Store

	now func() time.Time
}

func NewUserService(store storage.Store) *UserService {
	return &UserService{Store: store, now: time.Now}
}

// GetOrCreate returns the user for userID, creating it on first sighting.
// Every call refreshes last_active; at most once per UTC calendar day it
// also grants the daily visit bonus and advances (or resets) the streak.
// The record is persisted exactly once per invocation.
func (s *UserService) GetOrCreate(ctx context.Context, userID int64, firstName, username string) (*models.User, error) {
	if userID <= 0 || firstName == "" {
		return nil, ErrInvalidInput
	}

	unlock := userMu.lock(userID)
	defer unlock()

	now := s.now().UTC()

	user, err := loadUser(ctx, s.Store, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			UserID:    userID,
			FirstName: firstName,
			Username:  utils.NormalizeHandle(username),
			Balance:   0,
			Level:     1,
			CreatedAt: now,
		}
	}
	user.LastActive = now

	if granted, streak := s.applyDailyBonus(user, now); granted {
		log.Printf("🔥 Daily bonus for user %d (streak %d)", userID, streak)
	}

	user.Level = CalculateLevel(user.Experience).Level

	if err := saveUser(ctx, s.Store, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns the user record without mutating it.
func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return loadUser(ctx, s.Store, userID)
}

// applyDailyBonus grants the daily experience reward when the user has not
// been rewarded today. Gap of exactly one calendar day continues the streak,
// anything longer resets it to 1. Returns whether a bonus was granted.
func (s *UserService) applyDailyBonus(user *models.User, now time.Time) (bool, int) {
	today := now.Format(dailyDateLayout)

	if user.LastDailyRewardDate == "" {
		user.StreakCount = 1
		user.Experience += DailyLoginExperienceReward
		user.LastDailyRewardDate = today
		return true, user.StreakCount
	}

	gap := calendarDaysBetween(user.LastDailyRewardDate, today)
	switch {
	case gap <= 0:
		// Already rewarded today.
		return false, user.StreakCount
	case gap == 1:
		user.StreakCount++
	default:
		user.StreakCount = 1
	}
	user.Experience += DailyLoginExperienceReward
	user.LastDailyRewardDate = today
	return true, user.StreakCount
}

// calendarDaysBetween counts whole UTC calendar days from one stored date
// to another. Unparsable stored dates count as a full reset.
func calendarDaysBetween(from, to string) int {
	t1, err := time.ParseInLocation(dailyDateLayout, from, time.UTC)
	if err != nil {
		return 2
	}
	t2, err := time.ParseInLocation(dailyDateLayout, to, time.UTC)
	if err != nil {
		return 2
	}
	return int(t2.Sub(t1).Hours() / 24)
}

func loadUser(ctx context.Context, store storage.Store, userID int64) (*models.User, error) {
	raw, err := store.Get(ctx, models.UserKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storageErr("user lookup", err)
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, storageErr("user decode", err)
	}
	return &user, nil
}

func saveUser(ctx context.Context, store storage.Store, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return storageErr("user encode", err)
	}
	if err := store.Set(ctx, models.UserKey(user.UserID), raw); err != nil {
		return storageErr("user write", err)
	}
	return nil
}
