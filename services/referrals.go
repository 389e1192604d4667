package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"miniapp-rewards-system/models"
	"miniapp-rewards-system/storage"
	"miniapp-rewards-system/utils"
)

// ReferralService enforces at-most-one referrer per user and pays the
// referrer a fixed point and experience reward per accepted referral.
type ReferralService struct {
	Store storage.Store

	now func() time.Time
}

func NewReferralService(store storage.Store) *ReferralService {
	return &ReferralService{Store: store, now: time.Now}
}

// Process links referredID to referrerID and rewards the referrer.
// Self-referrals are rejected as invalid input. ReferredBy is write-once:
// an already-referred user fails with ErrAlreadyReferred and nothing moves.
// A missing referrer is tolerated: the linkage and the referral record
// stand, the reward is silently not granted.
func (s *ReferralService) Process(ctx context.Context, referrerID, referredID int64) (bool, error) {
	if referrerID <= 0 || referredID <= 0 || referrerID == referredID {
		return false, ErrInvalidInput
	}

	now := s.now().UTC()

	// Linkage step, under the referred user's lock.
	linked, err := s.linkReferred(ctx, referrerID, referredID)
	if err != nil || !linked {
		return false, err
	}

	record := models.ReferralRecord{
		ID:         uuid.NewString(),
		ReferrerID: referrerID,
		ReferredID: referredID,
		CreatedAt:  now,
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return false, storageErr("referral encode", err)
	}
	if err := s.Store.Set(ctx, models.ReferralKey(referrerID, referredID), encoded); err != nil {
		return false, storageErr("referral write", err)
	}

	// Reward step, under the referrer's lock. Taken after the referred
	// user's lock is released; the two are never nested.
	unlock := userMu.lock(referrerID)
	defer unlock()

	referrer, err := loadUser(ctx, s.Store, referrerID)
	if errors.Is(err, ErrUserNotFound) {
		log.Printf("⚠️  Referrer %d not found, linkage for %d stands unrewarded", referrerID, referredID)
		return true, nil
	}
	if err != nil {
		return false, err
	}

	referrer.ReferralsCount++
	referrer.Balance += ReferralPointsReward
	referrer.Experience += ReferralExperienceReward
	referrer.Level = CalculateLevel(referrer.Experience).Level

	if err := saveUser(ctx, s.Store, referrer); err != nil {
		return false, err
	}

	log.Printf("🤝 Referral accepted: %d referred %d (+%d points)", referrerID, referredID, ReferralPointsReward)
	return true, nil
}

func (s *ReferralService) linkReferred(ctx context.Context, referrerID, referredID int64) (bool, error) {
	unlock := userMu.lock(referredID)
	defer unlock()

	referred, err := loadUser(ctx, s.Store, referredID)
	if err != nil {
		return false, err
	}
	if referred.ReferredBy != nil {
		return false, ErrAlreadyReferred
	}
	referred.ReferredBy = &referrerID
	if err := saveUser(ctx, s.Store, referred); err != nil {
		return false, err
	}
	return true, nil
}

// ReferralDetail is one row of a referrer's history.
type ReferralDetail struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Earned int64  `json:"earned"`
	Date   string `json:"date"`
}

// History returns the user's referrals newest first, joined to the referred
// users' display names, with the record age bucketed into a coarse relative
// date. Referred users that no longer resolve are skipped.
func (s *ReferralService) History(ctx context.Context, userID int64) ([]ReferralDetail, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	values, err := s.Store.GetByPrefix(ctx, models.ReferralPrefix(userID))
	if err != nil {
		return nil, storageErr("referral scan", err)
	}

	records := make([]models.ReferralRecord, 0, len(values))
	for _, raw := range values {
		var rec models.ReferralRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, storageErr("referral decode", err)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })

	now := s.now().UTC()
	details := make([]ReferralDetail, 0, len(records))
	for _, rec := range records {
		referred, err := loadUser(ctx, s.Store, rec.ReferredID)
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		details = append(details, ReferralDetail{
			ID:     referred.UserID,
			Name:   referred.FirstName,
			Earned: ReferralPointsReward,
			Date:   utils.RelativeDate(rec.CreatedAt, now),
		})
	}
	return details, nil
}
