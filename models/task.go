package models

import (
	"fmt"
	"time"
)

// TaskCategory groups catalog tasks for the client tabs.
type TaskCategory string

const (
	TaskCategorySocial  TaskCategory = "social"
	TaskCategoryDaily   TaskCategory = "daily"
	TaskCategorySpecial TaskCategory = "special"
)

// Task is a completable catalog entry. The catalog is seeded once at
// bootstrap and read-only to end users afterwards.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Reward      int64        `json:"reward"`
	Category    TaskCategory `json:"type"`
	ActionURL   string       `json:"action_url,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
}

// UserTaskCompletion marks a (user, task) pair as completed.
// At most one record exists per pair; once Completed it is never reverted.
type UserTaskCompletion struct {
	UserID      int64      `json:"user_id"`
	TaskID      int64      `json:"task_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskKeyPrefix scans the whole catalog.
const TaskKeyPrefix = "task:"

// TaskKey is the storage key for a catalog task.
func TaskKey(taskID int64) string {
	return fmt.Sprintf("task:%d", taskID)
}

// UserTaskKey is the composite storage key for one completion record.
func UserTaskKey(userID, taskID int64) string {
	return fmt.Sprintf("usertask:%d:%d", userID, taskID)
}

// UserTaskPrefix scans all completion records of one user.
func UserTaskPrefix(userID int64) string {
	return fmt.Sprintf("usertask:%d:", userID)
}
