package utils

import (
	"testing"

	"stock-app/config"

	"github.com/golang-jwt/jwt/v5"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		Server: config.ServerConfig{
			JWTSecret:          "test-secret",
			JWTExpirationHours: 1,
		},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	setTestConfig(t)

	stockID := uint(2)
	token, err := GenerateToken(7, "admin", &stockID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.StockID == nil || *claims.StockID != 2 {
		t.Fatalf("expected stock_id 2, got %v", claims.StockID)
	}
}

func TestTokenWithoutStock(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken(1, "super_admin", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.StockID != nil {
		t.Fatalf("expected nil stock_id, got %v", *claims.StockID)
	}
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken(1, "caissier", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(token + "x"); err == nil {
		t.Fatalf("tampered signature must be rejected")
	}

	config.AppConfig.Server.JWTSecret = "other-secret"
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("wrong secret must be rejected")
	}
}

func TestValidateToken_RejectsNonHMAC(t *testing.T) {
	setTestConfig(t)

	// alg=none tokens must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{UserID: 1, Role: "admin"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ValidateToken(raw); err == nil {
		t.Fatalf("alg=none token must be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not equal the password")
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Fatalf("correct password must verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatalf("wrong password must not verify")
	}
	if CheckPasswordHash("s3cret", "s3cret") {
		t.Fatalf("plain text stored value must never verify")
	}
}
