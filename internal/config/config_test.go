package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "fittrack-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "fittrack-auth")
	}
	if cfg.JWTAudience != "fittrack-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "fittrack-api")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.TokenResendLimit != 3 {
		t.Errorf("TokenResendLimit = %d, want 3", cfg.TokenResendLimit)
	}
	if cfg.ReturnRawTokens {
		t.Error("ReturnRawTokens should default to false")
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 720*time.Hour {
		t.Errorf("RefreshTTL = %v, want 720h", cfg.RefreshTTL())
	}
	if cfg.VerifyTTL() != 24*time.Hour {
		t.Errorf("VerifyTTL = %v, want 24h", cfg.VerifyTTL())
	}
	if cfg.ResetTTL() != time.Hour {
		t.Errorf("ResetTTL = %v, want 1h", cfg.ResetTTL())
	}
	if cfg.ResendWindow() != time.Hour {
		t.Errorf("ResendWindow = %v, want 1h", cfg.ResendWindow())
	}
	if cfg.Retention() != 720*time.Hour {
		t.Errorf("Retention = %v, want 720h", cfg.Retention())
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("JWT_ACCESS_TTL", "5m")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.AccessTTL() != 5*time.Minute {
		t.Errorf("AccessTTL = %v, want 5m", cfg.AccessTTL())
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_RejectsRawTokensInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("RETURN_RAW_TOKENS", "true")
	os.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("RETURN_RAW_TOKENS=true in production must fail")
	}

	// The same flag is fine outside production.
	os.Setenv("APP_ENV", "development")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.ReturnRawTokens {
		t.Error("ReturnRawTokens not set")
	}
}

func TestLoad_RejectsBadBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("BCRYPT_COST", "3")
	if _, err := Load(); err == nil {
		t.Error("BCRYPT_COST=3 accepted")
	}
	os.Setenv("BCRYPT_COST", "32")
	if _, err := Load(); err == nil {
		t.Error("BCRYPT_COST=32 accepted")
	}
}

func TestLoad_RejectsBadResendLimit(t *testing.T) {
	os.Clearenv()
	os.Setenv("TOKEN_RESEND_LIMIT", "-1")
	if _, err := Load(); err == nil {
		t.Error("TOKEN_RESEND_LIMIT=-1 accepted")
	}
}

func TestParseDuration_Fallback(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "not-a-duration", JWTRefreshTTL: "-5m"}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("invalid duration: got %v, want fallback 15m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 720*time.Hour {
		t.Errorf("negative duration: got %v, want fallback 720h", cfg.RefreshTTL())
	}
}
