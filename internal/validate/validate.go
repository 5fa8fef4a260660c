package validate

import (
	"regexp"
	"strings"
)

var (
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'.+\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reLabel = regexp.MustCompile(`^[A-Za-z0-9 ._()/+\-]{1,32}$`)
)

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (phone ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Label validates a variant label such as a color name or a storage size ("128GB").
func Label(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reLabel.MatchString(s)
}
