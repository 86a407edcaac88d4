package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"searchq/internal/config"
)

type contextKey string

const claimsContextKey contextKey = "jwt_claims"

// TokenValidator validates HS256 bearer tokens. It guards the search
// endpoints when auth is enabled in config.
type TokenValidator struct {
	hmacKey   []byte
	issuer    string
	clockFunc func() time.Time
}

func NewTokenValidator(cfg config.AuthConfig) (*TokenValidator, error) {
	if strings.TrimSpace(cfg.HMACSecret) == "" {
		return nil, errors.New("hmac secret is required when auth is enabled")
	}
	return &TokenValidator{
		hmacKey:   []byte(cfg.HMACSecret),
		issuer:    cfg.Issuer,
		clockFunc: time.Now,
	}, nil
}

func (v *TokenValidator) ValidateToken(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errors.New("invalid token format")
	}

	var header map[string]any
	if err := decodeSegment(parts[0], &header); err != nil {
		return nil, fmt.Errorf("invalid token header: %w", err)
	}
	if alg, _ := header["alg"].(string); strings.ToUpper(alg) != "HS256" {
		return nil, fmt.Errorf("unexpected token alg: %v", header["alg"])
	}

	signingInput := parts[0] + "." + parts[1]
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, errors.New("invalid token signature encoding")
	}
	mac := hmac.New(sha256.New, v.hmacKey)
	_, _ = mac.Write([]byte(signingInput))
	if !hmac.Equal(mac.Sum(nil), signature) {
		return nil, errors.New("invalid token signature")
	}

	var claims map[string]any
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, fmt.Errorf("invalid token claims: %w", err)
	}
	if err := v.validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *TokenValidator) validateClaims(claims map[string]any) error {
	if v.issuer != "" {
		if iss, _ := claims["iss"].(string); iss != v.issuer {
			return errors.New("invalid token issuer")
		}
	}
	exp, err := numericClaim(claims, "exp")
	if err != nil {
		return err
	}
	if v.clockFunc().Unix() > exp {
		return errors.New("token is expired")
	}
	return nil
}

func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (map[string]any, bool) {
	claims, ok := ctx.Value(claimsContextKey).(map[string]any)
	return claims, ok
}

func decodeSegment(segment string, out any) error {
	payload, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func numericClaim(claims map[string]any, key string) (int64, error) {
	raw, ok := claims[key]
	if !ok {
		return 0, fmt.Errorf("token claim %s is required", key)
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("token claim %s is not numeric", key)
		}
		return n, nil
	}
	return 0, fmt.Errorf("token claim %s is not numeric", key)
}
