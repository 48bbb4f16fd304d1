package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidAtGraceWindow(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{"expired beyond grace", now.Add(-10 * time.Second), false},
		{"inside grace", now.Add(-3 * time.Second), true},
		{"grace boundary", now.Add(-5 * time.Second), false},
		{"future", now.Add(100 * time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tokenExpiringAt(t, tt.exp)
			if got := ValidAt(token, DefaultGrace, now); got != tt.want {
				t.Fatalf("ValidAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidAtRejectsUnusableTokens(t *testing.T) {
	now := time.Now()
	if ValidAt("", DefaultGrace, now) {
		t.Fatalf("empty token must be invalid")
	}
	if ValidAt("not-a-token", DefaultGrace, now) {
		t.Fatalf("malformed token must be invalid")
	}
	if ValidAt("h."+segment(`{"sub":"x"}`)+".s", DefaultGrace, now) {
		t.Fatalf("token without exp must be invalid")
	}
}

func TestValidAtIsRepeatable(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	token := tokenExpiringAt(t, now.Add(time.Minute))
	for i := 0; i < 3; i++ {
		if !ValidAt(token, DefaultGrace, now) {
			t.Fatalf("call %d returned false", i)
		}
	}
	if ValidAt(token, DefaultGrace, now.Add(2*time.Minute)) {
		t.Fatalf("validity must be re-evaluated against the new time")
	}
}

func TestIsValidUsesWallClock(t *testing.T) {
	if !IsValid(tokenExpiringAt(t, time.Now().Add(time.Hour)), DefaultGrace) {
		t.Fatalf("token valid for an hour reported invalid")
	}
	if IsValid(tokenExpiringAt(t, time.Now().Add(-time.Hour)), DefaultGrace) {
		t.Fatalf("token expired an hour ago reported valid")
	}
}

func TestValidAtFractionalExpiry(t *testing.T) {
	now := time.Unix(1_800_000_000, int64(300*time.Millisecond))

	tests := []struct {
		name string
		exp  float64
		want bool
	}{
		{"fraction past the grace boundary", 1_799_999_995.9, true},
		{"exactly on the boundary", 1_799_999_995, false},
		{"fraction before the boundary", 1_799_999_994.9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := mintToken(t, jwt.MapClaims{"sub": "alice", "exp": tt.exp})
			if got := ValidAt(token, DefaultGrace, now); got != tt.want {
				t.Fatalf("ValidAt() = %v, want %v", got, tt.want)
			}
		})
	}
}
