package utils

import "github.com/gosimple/slug"

// NormalizeHandle canonicalizes an optional Telegram username into a
// lowercase URL-safe form before it is stored. Empty stays empty; a handle
// is never invented for a user who has none.
func NormalizeHandle(username string) string {
	if username == "" {
		return ""
	}
	return slug.Make(username)
}
