package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "lumiere-test"
database:
  path: "test.db"
auth:
  jwt_secret: "${TEST_JWT_SECRET}"
server:
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	t.Setenv("TEST_JWT_SECRET", "s3cret")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("expected env-expanded jwt secret, got %s", cfg.Auth.JWTSecret)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}

	// Defaults applied for unset fields
	if cfg.Reservations.MaxAdvanceDays != 60 {
		t.Errorf("expected default max_advance_days 60, got %d", cfg.Reservations.MaxAdvanceDays)
	}
	if cfg.Server.RateLimit.RPS != 20 {
		t.Errorf("expected default rps 20, got %f", cfg.Server.RateLimit.RPS)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Auth:     AuthConfig{JWTSecret: "secret"},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				Auth: AuthConfig{JWTSecret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "missing jwt secret",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
			},
			wantErr: true,
		},
		{
			name: "sms enabled without credentials",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Auth:     AuthConfig{JWTSecret: "secret"},
				SMS:      SMSConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "telegram enabled without token",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Auth:     AuthConfig{JWTSecret: "secret"},
				Telegram: TelegramConfig{Enabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
