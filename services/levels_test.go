package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLevelTable(t *testing.T) {
	cases := []struct {
		exp        int64
		level      int
		floor      int64
		next       int64
	}{
		{0, 1, 0, 500},
		{499, 1, 0, 500},
		{500, 2, 500, 1000},
		{999, 2, 500, 1000},
		{7500, 7, 7500, 10000},
		{19999, 9, 15000, 20000},
		{20000, 10, 20000, 20000},
		{1_000_000, 10, 20000, 20000},
	}
	for _, tc := range cases {
		info := CalculateLevel(tc.exp)
		assert.Equal(t, tc.level, info.Level, "exp=%d", tc.exp)
		assert.Equal(t, tc.floor, info.CurrentLevelFloor, "exp=%d", tc.exp)
		assert.Equal(t, tc.next, info.NextLevelThreshold, "exp=%d", tc.exp)
	}
}

func TestCalculateLevelMonotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for exp := int64(0); exp <= 25000; exp += 50 {
		info := CalculateLevel(exp)
		require.GreaterOrEqual(t, info.Level, prev.Level, "level regressed at exp=%d", exp)

		atMaxTier := info.Level == LevelThresholds[len(LevelThresholds)-1].Level
		require.LessOrEqual(t, info.CurrentLevelFloor, exp)
		if !atMaxTier {
			require.Less(t, exp, info.NextLevelThreshold, "exp=%d outside level window", exp)
		}
		prev = info
	}
}

func TestCalculateLevelNegativeInput(t *testing.T) {
	info := CalculateLevel(-10)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, int64(0), info.CurrentLevelFloor)
}
