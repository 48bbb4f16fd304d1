package auth

import "time"

// DefaultGrace is the tolerance applied when judging a token expired.
const DefaultGrace = 5 * time.Second

// IsValid reports whether token decodes and has not expired, tolerating
// grace of clock skew.
func IsValid(token string, grace time.Duration) bool {
	return ValidAt(token, grace, time.Now())
}

// ValidAt is IsValid evaluated at now: exp must lie after now, truncated to
// the second, minus grace. It is never cached: every call decodes token again.
func ValidAt(token string, grace time.Duration, now time.Time) bool {
	if token == "" {
		return false
	}
	claims, err := Decode(token)
	if err != nil {
		return false
	}
	return claims.ExpiresAt.After(now.Truncate(time.Second).Add(-grace))
}
