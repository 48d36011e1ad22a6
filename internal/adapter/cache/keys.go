package cache

import "strings"

const keySeparator = ":"

// GenerateKey joins prefix and parts with ":". It does not escape separators
// inside parts.
func GenerateKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + keySeparator + strings.Join(parts, keySeparator)
}
