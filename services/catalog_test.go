package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniapp-rewards-system/models"
	"miniapp-rewards-system/storage"
)

func TestSeedDefaultsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewCatalogService(store)

	require.NoError(t, svc.SeedDefaults(ctx))
	tasks, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 5)

	// An operator edit after seeding must survive a re-seed.
	edited := tasks[0]
	edited.Reward = 999
	raw, _ := json.Marshal(edited)
	require.NoError(t, store.Set(ctx, models.TaskKey(edited.ID), raw))

	require.NoError(t, svc.SeedDefaults(ctx))
	after, err := svc.GetTask(ctx, edited.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(999), after.Reward)

	tasks, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 5)
}

func TestListActiveFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewCatalogService(store)
	require.NoError(t, svc.SeedDefaults(ctx))

	// Deactivate task 2.
	task, err := svc.GetTask(ctx, 2)
	require.NoError(t, err)
	task.IsActive = false
	raw, _ := json.Marshal(task)
	require.NoError(t, store.Set(ctx, models.TaskKey(2), raw))

	tasks, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	var ids []int64
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int64{1, 3, 4, 5}, ids)
}

func TestGetTaskInactiveTreatedAsMissing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewCatalogService(store)
	require.NoError(t, svc.SeedDefaults(ctx))

	task, err := svc.GetTask(ctx, 3)
	require.NoError(t, err)
	task.IsActive = false
	raw, _ := json.Marshal(task)
	require.NoError(t, store.Set(ctx, models.TaskKey(3), raw))

	_, err = svc.GetTask(ctx, 3)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.GetTask(ctx, 77)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
