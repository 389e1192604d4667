package models

import (
	"fmt"
	"time"
)

// User is the progression ledger record for one Telegram user.
// It is the single source of truth for balance, experience and streak state.
// Level is persisted for read efficiency but is always recomputed from
// Experience on every write, never treated as independent truth.
type User struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`

	Balance        int64 `json:"balance"`
	Level          int   `json:"level"`
	Experience     int64 `json:"experience"`
	TasksCompleted int64 `json:"tasks_completed"`
	ReferralsCount int64 `json:"referrals_count"`

	// ReferredBy is write-once: set by the first accepted referral,
	// never cleared.
	ReferredBy *int64 `json:"referred_by,omitempty"`

	// LastDailyRewardDate holds a UTC calendar date ("2006-01-02"),
	// never a full timestamp: streak math is calendar-day based,
	// not 24-hour-window based.
	LastDailyRewardDate string `json:"last_daily_reward_date,omitempty"`
	StreakCount         int    `json:"streak_count"`

	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// UserKeyPrefix scans every user record (leaderboard, snapshot export).
const UserKeyPrefix = "user:"

// UserKey is the storage key for a user record.
func UserKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
