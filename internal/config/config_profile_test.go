package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func baseEnv() map[string]string {
	return map[string]string{
		"APP_NAME":                 "recipes",
		"APP_URL":                  "http://localhost:8080/",
		"JWT_SECRET":               "abcdefghijklmnopqrstuvwxyz123456",
		"JWT_REFRESH_TOKEN_SECRET": "abcdefghijklmnopqrstuvwxyz654321",
	}
}

func TestLoadWithAppliesDefaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(baseEnv()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTAccessTTL != time.Hour {
		t.Fatalf("expected 1h access ttl, got %s", cfg.JWTAccessTTL)
	}
	if cfg.JWTRefreshTTL != 365*24*time.Hour {
		t.Fatalf("expected 1y refresh ttl, got %s", cfg.JWTRefreshTTL)
	}
	if cfg.PasswordResetTTL != 360*time.Second {
		t.Fatalf("expected 360s reset window, got %s", cfg.PasswordResetTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if cfg.AppURL != "http://localhost:8080" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.AppURL)
	}
	if cfg.MailFrom != "no-reply@recipes.com" {
		t.Fatalf("unexpected default sender %q", cfg.MailFrom)
	}
	if cfg.OTELEnvironment != "development" {
		t.Fatalf("expected otel environment to follow APP_ENV, got %q", cfg.OTELEnvironment)
	}
}

func TestLoadWithRejectsSharedSecrets(t *testing.T) {
	env := baseEnv()
	env["JWT_REFRESH_TOKEN_SECRET"] = env["JWT_SECRET"]

	_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	if err == nil {
		t.Fatal("expected validation error for shared secrets")
	}
	if !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(baseEnv()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.JWTAccessSecret = "short"
	cfg.MailDelivery = "pigeon"
	cfg.DBDriver = "mongo"

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"JWT_SECRET", "MAIL_DELIVERY", "DB_DRIVER"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %q", want, err.Error())
		}
	}
}

func TestValidateProdProfileStrictRules(t *testing.T) {
	env := baseEnv()
	env["APP_ENV"] = "production"
	env["DB_DRIVER"] = "sqlite"

	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
		t.Fatal("expected strict prod validation errors")
	}
}

func TestValidateDevelopmentProfileAllowsRelaxedSettings(t *testing.T) {
	env := baseEnv()
	env["DB_DRIVER"] = "sqlite"
	env["CORS_ALLOWED_ORIGINS"] = "*"

	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err != nil {
		t.Fatalf("expected relaxed dev validation to pass: %v", err)
	}
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@db:5432/recipes", DBHost: "ignored"}
	if got := cfg.DSN(); got != cfg.DatabaseURL {
		t.Fatalf("expected DATABASE_URL, got %q", got)
	}
	cfg = &Config{DBHost: "db", DBPort: 5433, DBUser: "u", DBPassword: "p", DBName: "r", DBSSLMode: "disable"}
	if got := cfg.DSN(); got != "host=db port=5433 user=u password=p dbname=r sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
}
