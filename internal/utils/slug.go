package utils

import "strings"

// Slugify derives a URL-safe handle from a product name: lowercase, runs of
// anything outside [a-z0-9] collapsed to single hyphens, no leading or
// trailing hyphen.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
