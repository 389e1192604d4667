package services

// Reward constants shared by the engines. Experience from a task completion
// is derived from its point reward (reward / TaskExperienceDivisor).
const (
	ReferralPointsReward       = 500
	ReferralExperienceReward   = 50
	DailyLoginExperienceReward = 100
	TaskExperienceDivisor      = 10
)

// LevelThreshold maps a level to the cumulative experience that unlocks it.
type LevelThreshold struct {
	Level       int   `json:"level"`
	RequiredExp int64 `json:"required_exp"`
}

// LevelThresholds is the canonical progression table. Level 1 unlocks at 0;
// experience beyond the last tier stays at the max level with the progress
// bar reading 100%. The client renders this exact table, so server-computed
// levels must come from the same one.
var LevelThresholds = []LevelThreshold{
	{Level: 1, RequiredExp: 0},
	{Level: 2, RequiredExp: 500},
	{Level: 3, RequiredExp: 1000},
	{Level: 4, RequiredExp: 2000},
	{Level: 5, RequiredExp: 3000},
	{Level: 6, RequiredExp: 5000},
	{Level: 7, RequiredExp: 7500},
	{Level: 8, RequiredExp: 10000},
	{Level: 9, RequiredExp: 15000},
	{Level: 10, RequiredExp: 20000},
}

// LevelInfo is the result of a level computation: the reached level, the
// threshold that unlocked it and the threshold of the next level (clamped
// to the last tier).
type LevelInfo struct {
	Level              int   `json:"level"`
	CurrentLevelFloor  int64 `json:"current_level_floor"`
	NextLevelThreshold int64 `json:"next_level_threshold"`
}

// CalculateLevel maps cumulative experience to the highest unlocked level.
// Pure and deterministic; negative input is treated as zero.
func CalculateLevel(experience int64) LevelInfo {
	if experience < 0 {
		experience = 0
	}
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if experience >= LevelThresholds[i].RequiredExp {
			info := LevelInfo{
				Level:             LevelThresholds[i].Level,
				CurrentLevelFloor: LevelThresholds[i].RequiredExp,
			}
			if i+1 < len(LevelThresholds) {
				info.NextLevelThreshold = LevelThresholds[i+1].RequiredExp
			} else {
				// Max tier: clamp so progress reads as 100%.
				info.NextLevelThreshold = LevelThresholds[i].RequiredExp
			}
			return info
		}
	}
	return LevelInfo{Level: 1, CurrentLevelFloor: 0, NextLevelThreshold: LevelThresholds[1].RequiredExp}
}
