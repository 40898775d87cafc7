package bootstrap

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "leadscout_test",
		SessionKey:         "test-session-key",
		UsageResetInterval: time.Minute,
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "http://not-a-mongo-uri"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for non-mongodb URI")
	}
}

func TestValidateConfig_GoogleSecretRequired(t *testing.T) {
	cfg := validAppConfig()
	cfg.GoogleClientID = "client-id.apps.googleusercontent.com"
	err := ValidateConfig(nil, cfg, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "google_client_secret") {
		t.Errorf("expected google_client_secret error, got %v", err)
	}
}

func TestValidateConfig_DirectoryKeyRequired(t *testing.T) {
	cfg := validAppConfig()
	cfg.DirectoryBaseURL = "https://api.directory.example"
	err := ValidateConfig(nil, cfg, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "directory_api_key") {
		t.Errorf("expected directory_api_key error, got %v", err)
	}
}

func TestValidateConfig_ResetIntervalMustBePositive(t *testing.T) {
	cfg := validAppConfig()
	cfg.UsageResetInterval = 0
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for zero usage_reset_interval")
	}
}
