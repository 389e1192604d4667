package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"miniapp-rewards-system/models"
	"miniapp-rewards-system/storage"
)

// CompletionService enforces at-most-once task completion per (user, task)
// and applies the reward. Completion is a one-way ratchet: once completed,
// a task can never be completed again by the same user, regardless of later
// catalog changes.
type CompletionService struct {
	Store   storage.Store
	Catalog *CatalogService

	now func() time.Time
}

func NewCompletionService(store storage.Store, catalog *CatalogService) *CompletionService {
	return &CompletionService{Store: store, Catalog: catalog, now: time.Now}
}

// CompletionResult is returned to the caller directly; the API layer
// renders the reward and the fresh user snapshot from it.
type CompletionResult struct {
	Reward int64        `json:"reward"`
	User   *models.User `json:"user"`
}

// Complete records the completion and applies the reward to the user:
// balance += reward, tasks_completed += 1, experience += reward/10, level
// recomputed, last_active refreshed. A second call for the same pair fails
// with ErrAlreadyCompleted and pays nothing.
func (s *CompletionService) Complete(ctx context.Context, userID, taskID int64) (*CompletionResult, error) {
	if userID <= 0 || taskID <= 0 {
		return nil, ErrInvalidInput
	}

	task, err := s.Catalog.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	unlock := userMu.lock(userID)
	defer unlock()

	completionKey := models.UserTaskKey(userID, taskID)
	raw, err := s.Store.Get(ctx, completionKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, storageErr("completion lookup", err)
	}
	if err == nil {
		var existing models.UserTaskCompletion
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, storageErr("completion decode", err)
		}
		if existing.Completed {
			return nil, ErrAlreadyCompleted
		}
	}

	user, err := loadUser(ctx, s.Store, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	completion := models.UserTaskCompletion{
		UserID:      userID,
		TaskID:      taskID,
		Completed:   true,
		CompletedAt: &now,
		CreatedAt:   now,
	}
	encoded, err := json.Marshal(completion)
	if err != nil {
		return nil, storageErr("completion encode", err)
	}
	if err := s.Store.Set(ctx, completionKey, encoded); err != nil {
		return nil, storageErr("completion write", err)
	}

	user.Balance += task.Reward
	user.TasksCompleted++
	user.Experience += task.Reward / TaskExperienceDivisor
	user.Level = CalculateLevel(user.Experience).Level
	user.LastActive = now

	if err := saveUser(ctx, s.Store, user); err != nil {
		return nil, err
	}

	log.Printf("🎯 Task %d completed by user %d (+%d points)", taskID, userID, task.Reward)
	return &CompletionResult{Reward: task.Reward, User: user}, nil
}

// UserTasks lists a user's completion records in task id order.
func (s *CompletionService) UserTasks(ctx context.Context, userID int64) ([]models.UserTaskCompletion, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	values, err := s.Store.GetByPrefix(ctx, models.UserTaskPrefix(userID))
	if err != nil {
		return nil, storageErr("completion scan", err)
	}
	completions := make([]models.UserTaskCompletion, 0, len(values))
	for _, raw := range values {
		var c models.UserTaskCompletion
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, storageErr("completion decode", err)
		}
		completions = append(completions, c)
	}
	sort.Slice(completions, func(i, j int) bool { return completions[i].TaskID < completions[j].TaskID })
	return completions, nil
}
