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

// CatalogService is the read-only task catalog. Tasks are seeded once at
// bootstrap; edits made directly in storage afterwards survive re-seeding.
type CatalogService struct {
	Store storage.Store
}

func NewCatalogService(store storage.Store) *CatalogService {
	return &CatalogService{Store: store}
}

func defaultTasks(now time.Time) []models.Task {
	return []models.Task{
		{
			ID:          1,
			Title:       "Join our channel",
			Description: "Subscribe to our Telegram channel",
			Reward:      500,
			Category:    models.TaskCategorySocial,
			ActionURL:   "https://t.me/your_channel",
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          2,
			Title:       "Invite 5 friends",
			Description: "Invite 5 friends and get a bonus",
			Reward:      1000,
			Category:    models.TaskCategorySpecial,
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          3,
			Title:       "Daily check-in",
			Description: "Open the app every day",
			Reward:      100,
			Category:    models.TaskCategoryDaily,
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          4,
			Title:       "Share to your story",
			Description: "Share the app in your story",
			Reward:      300,
			Category:    models.TaskCategorySocial,
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          5,
			Title:       "Reach 10 referrals",
			Description: "Invite 10 active users",
			Reward:      2000,
			Category:    models.TaskCategorySpecial,
			IsActive:    true,
			CreatedAt:   now,
		},
	}
}

// SeedDefaults writes each built-in task only if its key is absent.
// Idempotent, safe to call on every process start.
func (s *CatalogService) SeedDefaults(ctx context.Context) error {
	seeded := 0
	for _, task := range defaultTasks(time.Now().UTC()) {
		key := models.TaskKey(task.ID)
		_, err := s.Store.Get(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return storageErr("catalog lookup", err)
		}
		raw, err := json.Marshal(task)
		if err != nil {
			return storageErr("task encode", err)
		}
		if err := s.Store.Set(ctx, key, raw); err != nil {
			return storageErr("task write", err)
		}
		seeded++
	}
	if seeded > 0 {
		log.Printf("✅ Seeded %d default tasks", seeded)
	}
	return nil
}

// ListActive returns active tasks in stable id order.
func (s *CatalogService) ListActive(ctx context.Context) ([]models.Task, error) {
	values, err := s.Store.GetByPrefix(ctx, models.TaskKeyPrefix)
	if err != nil {
		return nil, storageErr("catalog scan", err)
	}
	tasks := make([]models.Task, 0, len(values))
	for _, raw := range values {
		var task models.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return nil, storageErr("task decode", err)
		}
		if task.IsActive {
			tasks = append(tasks, task)
		}
	}
	// Prefix scans order by string key, which misorders numeric ids
	// past 9; re-sort numerically.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// GetTask returns one active catalog task. Inactive tasks are treated as
// absent so they can no longer be completed.
func (s *CatalogService) GetTask(ctx context.Context, taskID int64) (*models.Task, error) {
	raw, err := s.Store.Get(ctx, models.TaskKey(taskID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, storageErr("task lookup", err)
	}
	var task models.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, storageErr("task decode", err)
	}
	if !task.IsActive {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}
