package brickery

import "strings"

// CanonicalSetNum normalizes a set number to the suffixed form the catalog
// stores ("10305" becomes "10305-1", "10305-2" stays as is).
func CanonicalSetNum(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.Contains(trimmed, "-") {
		return trimmed
	}
	return trimmed + "-1"
}

// BaseSetNum strips the variant suffix ("10305-1" becomes "10305"). The
// wishlist ordering endpoint expects base numbers.
func BaseSetNum(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if idx := strings.Index(trimmed, "-"); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
