package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"miniapp-rewards-system/models"
	"miniapp-rewards-system/storage"
)

const (
	leaderboardCacheKey = "cache:leaderboard"
	leaderboardCacheTTL = 5 * time.Minute

	// DefaultLeaderboardLimit caps the board when no limit is configured.
	DefaultLeaderboardLimit = 50
)

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
	Balance   int64  `json:"balance"`
	Level     int    `json:"level"`
}

// LeaderboardService derives the top users by balance from a full user
// prefix scan. The result is purely derived data, cached as JSON in Redis
// when a cache client is configured.
type LeaderboardService struct {
	Store storage.Store
	Cache *redis.Client // optional
	Limit int
}

func NewLeaderboardService(store storage.Store, cache *redis.Client, limit int) *LeaderboardService {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return &LeaderboardService{Store: store, Cache: cache, Limit: limit}
}

// Top returns up to limit entries ordered by balance descending, user id
// ascending on ties. Serves from cache when fresh.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > s.Limit {
		limit = s.Limit
	}

	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, cacheKeyFor(limit)).Result(); err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.compute(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, limit, entries)
	return entries, nil
}

// Refresh recomputes and re-caches the default board. Called from the
// maintenance scheduler; a nil cache makes it a no-op.
func (s *LeaderboardService) Refresh(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	entries, err := s.compute(ctx, s.Limit)
	if err != nil {
		return err
	}
	s.cache(ctx, s.Limit, entries)
	return nil
}

func (s *LeaderboardService) compute(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	values, err := s.Store.GetByPrefix(ctx, models.UserKeyPrefix)
	if err != nil {
		return nil, storageErr("leaderboard scan", err)
	}
	users := make([]models.User, 0, len(values))
	for _, raw := range values {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, storageErr("user decode", err)
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Balance != users[j].Balance {
			return users[i].Balance > users[j].Balance
		}
		return users[i].UserID < users[j].UserID
	})
	if len(users) > limit {
		users = users[:limit]
	}
	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:      i + 1,
			UserID:    u.UserID,
			FirstName: u.FirstName,
			Username:  u.Username,
			Balance:   u.Balance,
			Level:     u.Level,
		}
	}
	return entries, nil
}

func (s *LeaderboardService) cache(ctx context.Context, limit int, entries []LeaderboardEntry) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, cacheKeyFor(limit), raw, leaderboardCacheTTL).Err(); err != nil {
		log.Printf("⚠️  Failed to cache leaderboard: %v", err)
	}
}

func cacheKeyFor(limit int) string {
	return fmt.Sprintf("%s:%d", leaderboardCacheKey, limit)
}
