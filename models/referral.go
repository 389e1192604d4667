package models

import (
	"fmt"
	"time"
)

// ReferralRecord is a directed, one-time attribution edge from referrer to
// referred user. At most one record per ordered pair; a user appears as
// referred in at most one record system-wide (enforced via User.ReferredBy).
type ReferralRecord struct {
	ID            string    `json:"id"`
	ReferrerID    int64     `json:"referrer_id"`
	ReferredID    int64     `json:"referred_id"`
	RewardClaimed bool      `json:"reward_claimed"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReferralKey is the composite storage key for one referral edge.
func ReferralKey(referrerID, referredID int64) string {
	return fmt.Sprintf("referral:%d:%d", referrerID, referredID)
}

// ReferralPrefix scans all referrals made by one referrer.
func ReferralPrefix(referrerID int64) string {
	return fmt.Sprintf("referral:%d:", referrerID)
}

// ReferralKeyPrefix scans every referral edge (snapshot export).
const ReferralKeyPrefix = "referral:"
