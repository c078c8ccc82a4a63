package auth

import (
	"testing"
	"time"

	"github.com/angelmondragon/gaspos-terminal/pkg/config"
)

func TestMintAndParseCashierToken(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret", JWTIssuer: "gaspos"}
	now := time.Now().UTC()

	token, err := MintCashierToken(cfg, now, time.Hour, CashierPayload{
		CashierID:   "42",
		CashierName: "Ana",
		TerminalID:  "till-3",
		SalesPoint:  "North",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseCashierToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.CashierName != "Ana" || claims.TerminalID != "till-3" || claims.SalesPoint != "North" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Subject != "42" || claims.Issuer != "gaspos" {
		t.Fatalf("registered claims not preserved: %+v", claims.RegisteredClaims)
	}
}

func TestParseCashierTokenRejectsWrongSecret(t *testing.T) {
	token, err := MintCashierToken(config.AuthConfig{JWTSecret: "a"}, time.Now(), time.Hour, CashierPayload{CashierName: "Ana"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseCashierToken(config.AuthConfig{JWTSecret: "b"}, token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseCashierTokenRejectsExpired(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret"}
	token, err := MintCashierToken(cfg, time.Now().Add(-2*time.Hour), time.Hour, CashierPayload{CashierName: "Ana"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseCashierToken(cfg, token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseCashierTokenWithoutSecretReadsClaims(t *testing.T) {
	token, err := MintCashierToken(config.AuthConfig{JWTSecret: "backend-only"}, time.Now(), time.Hour, CashierPayload{CashierName: "Ben"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseCashierToken(config.AuthConfig{}, token)
	if err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if claims.CashierName != "Ben" {
		t.Fatalf("unexpected cashier %q", claims.CashierName)
	}
	if _, err := ParseCashierToken(config.AuthConfig{}, "not-a-token"); err == nil {
		t.Fatal("expected malformed token error")
	}
}

func TestMintRequiresSecretAndName(t *testing.T) {
	if _, err := MintCashierToken(config.AuthConfig{}, time.Now(), time.Hour, CashierPayload{CashierName: "x"}); err == nil {
		t.Fatal("expected secret error")
	}
	if _, err := MintCashierToken(config.AuthConfig{JWTSecret: "s"}, time.Now(), time.Hour, CashierPayload{}); err == nil {
		t.Fatal("expected name error")
	}
}
