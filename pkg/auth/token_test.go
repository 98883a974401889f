package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "abarrote",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	cashierID := uuid.New()

	payload := AccessTokenPayload{
		CashierID: cashierID,
		StoreID:   "store-centro",
		Role:      RoleCashier,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.CashierID != cashierID {
		t.Fatalf("expected cashier_id %s, got %s", cashierID, claims.CashierID)
	}
	if claims.StoreID != "store-centro" {
		t.Fatalf("store id not preserved")
	}
	if claims.Role != RoleCashier {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "abarrote", ExpirationMinutes: 5}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{CashierID: uuid.New(), Role: RoleManager})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(config.JWTConfig{Secret: "other", Issuer: "abarrote"}, token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "abarrote", ExpirationMinutes: 5}

	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{CashierID: uuid.New(), Role: Role("ghost")}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: RoleCashier}); err == nil {
		t.Fatal("expected missing cashier id error")
	}
}
