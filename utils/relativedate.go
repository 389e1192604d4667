package utils

import (
	"fmt"
	"time"
)

// RelativeDate formats the age of t relative to now into the coarse buckets
// the referral history renders: "today", "yesterday", "N days ago" (2-6),
// "N weeks ago" (7-29 days), "N months ago" (30+ days).
func RelativeDate(t, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return fmt.Sprintf("%d months ago", days/30)
	}
}
