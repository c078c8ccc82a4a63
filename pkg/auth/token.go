package auth

import (
	"fmt"
	"time"

	"github.com/angelmondragon/gaspos-terminal/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintCashierToken signs payload with the configured secret.
func MintCashierToken(cfg config.AuthConfig, now time.Time, ttl time.Duration, payload CashierPayload) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}
	if payload.CashierName == "" {
		return "", fmt.Errorf("cashier name is required")
	}

	claims := CashierClaims{
		CashierID:   payload.CashierID,
		CashierName: payload.CashierName,
		TerminalID:  payload.TerminalID,
		SalesPoint:  payload.SalesPoint,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   payload.CashierID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseCashierToken validates the token when a secret is configured. Without a
// secret the claims are read unverified: the till then trusts the local UI,
// which already went through the backend login.
func ParseCashierToken(cfg config.AuthConfig, tokenString string) (*CashierClaims, error) {
	claims := &CashierClaims{}

	if cfg.JWTSecret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, err
		}
		return claims, nil
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
