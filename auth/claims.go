package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrDecode              = errors.New("auth: credential decode failed")
	ErrClaimsInvalidFormat = fmt.Errorf("%w: invalid format", ErrDecode)
	ErrClaimsMissingExpiry = fmt.Errorf("%w: missing exp claim", ErrDecode)
	ErrClaimsInvalid       = fmt.Errorf("%w: invalid claims", ErrDecode)
)

var alphabet = strings.NewReplacer("-", "+", "_", "/")

// DecodePayload returns the JSON object carried in the second segment of raw.
// The signature is never verified.
func DecodePayload(raw string) (jwt.MapClaims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, ErrClaimsInvalidFormat
	}

	segment := strings.TrimRight(alphabet.Replace(parts[1]), "=")
	data, err := base64.RawStdEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsInvalidFormat, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: payload is not utf-8", ErrClaimsInvalidFormat)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsInvalidFormat, err)
	}
	if claims == nil {
		return nil, ErrClaimsInvalidFormat
	}
	return claims, nil
}

// Decode extracts expiry and role claims from raw. A payload without a
// numeric exp is a decode failure. Fractional exp values keep their fraction.
func Decode(raw string) (Claims, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return Claims{}, err
	}

	exp, err := payload.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: exp: %v", ErrClaimsInvalid, err)
	}
	if exp == nil {
		return Claims{}, ErrClaimsMissingExpiry
	}

	expiresAt := exp.Time
	if f, ok := payload["exp"].(float64); ok {
		sec, frac := math.Modf(f)
		expiresAt = time.Unix(int64(sec), int64(frac*1e9))
	}

	subject, _ := payload.GetSubject()
	return Claims{
		Subject:   subject,
		ExpiresAt: expiresAt,
		Roles:     rolesFromPayload(payload),
	}, nil
}

// rolesFromPayload reads "roles", then Spring's "authorities", then "role".
func rolesFromPayload(payload jwt.MapClaims) []string {
	for _, name := range []string{"roles", "authorities", "role"} {
		if v, ok := payload[name]; ok {
			if roles := roleList(v); len(roles) > 0 {
				return roles
			}
		}
	}
	return nil
}

func roleList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			switch it := item.(type) {
			case string:
				if it != "" {
					out = append(out, it)
				}
			case map[string]any:
				if name, ok := it["authority"].(string); ok && name != "" {
					out = append(out, name)
				}
			}
		}
		return out
	default:
		return nil
	}
}
