package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadAppliesDefaultsAndEnvironment(t *testing.T) {
	t.Setenv("EDEXTEMP_SERVER_SECRET_KEY", validSecret)
	t.Setenv("EDEXTEMP_SERVER_PORT", "9090")
	t.Setenv("EDEXTEMP_SESSION_IDLE_TIMEOUT", "30m")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Session.IdleTimeout != 30*time.Minute {
		t.Fatalf("expected idle timeout 30m, got %s", cfg.Session.IdleTimeout)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("expected default sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Session.Store != SessionStoreMemory {
		t.Fatalf("expected default memory session store, got %q", cfg.Session.Store)
	}
	if cfg.Location().String() != "Asia/Bangkok" {
		t.Fatalf("expected Asia/Bangkok location, got %s", cfg.Location())
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`server:
  secret_key: "` + validSecret + `"
  time_zone: UTC
database:
  driver: postgres
  dsn: "host=localhost user=postgres dbname=edextemp"
session:
  store: redis
redis:
  addr: "redis:6379"
`)
	if err := os.WriteFile(filepath.Join(dir, "edextemp.yaml"), content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Session.Store != SessionStoreRedis || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("expected redis session store at redis:6379, got %q at %q", cfg.Session.Store, cfg.Redis.Addr)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{SecretKey: validSecret, TimeZone: "UTC"},
			Database: DatabaseConfig{Driver: DriverSQLite, Path: "data/test.db"},
			Session:  SessionConfig{Store: SessionStoreMemory, IdleTimeout: time.Hour, TokenTTL: 2 * time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(cfg *Config) {}},
		{name: "bad time zone", mutate: func(cfg *Config) { cfg.Server.TimeZone = "Mars/Olympus" }, wantErr: true},
		{name: "unknown driver", mutate: func(cfg *Config) { cfg.Database.Driver = "mysql" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(cfg *Config) { cfg.Database.Driver = DriverPostgres }, wantErr: true},
		{name: "redis without addr", mutate: func(cfg *Config) { cfg.Session.Store = SessionStoreRedis }, wantErr: true},
		{name: "zero idle timeout", mutate: func(cfg *Config) { cfg.Session.IdleTimeout = 0 }, wantErr: true},
		{name: "token shorter than idle timeout", mutate: func(cfg *Config) { cfg.Session.TokenTTL = time.Minute }, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := base()
			testCase.mutate(&cfg)
			err := cfg.Validate()
			if testCase.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadWithoutSecretForOfflineCommands(t *testing.T) {
	t.Setenv("EDEXTEMP_SERVER_SECRET_KEY", "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("expected config without a secret to load, got %v", err)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected the server to require a secret")
	}
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "valid", secret: validSecret},
		{name: "empty secret", secret: "", wantErr: true},
		{name: "placeholder secret", secret: "change_me_in_production", wantErr: true},
		{name: "short secret", secret: "too-short-secret", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := Config{Server: ServerConfig{SecretKey: testCase.secret}}
			err := cfg.ValidateServer()
			if testCase.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
