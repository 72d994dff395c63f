package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Search.StopWords != "и в на" || cfg.Search.DefaultStatus != "ACTUAL" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Redis.Addr != "" || len(cfg.Kafka.Brokers) != 0 || cfg.Source.Driver != "" {
		t.Error("optional collaborators must be disabled by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  writeTimeout: 5s
search:
  stopWords: "a the"
  defaultStatus: banned
source:
  driver: sqlite3
  dsn: "file:docs.db"
  table: docs
`)
	t.Setenv("SP_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SP_REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.WriteTimeout != 5*time.Second {
		t.Errorf("server section not loaded: %+v", cfg.Server)
	}
	if cfg.Search.StopWords != "a the" || cfg.Search.DefaultStatus != "banned" {
		t.Errorf("search section not loaded: %+v", cfg.Search)
	}
	if got := strings.Join(cfg.Kafka.Brokers, ","); got != "k1:9092,k2:9092" {
		t.Errorf("brokers = %q", got)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.SourceDSN() != "file:docs.db" {
		t.Errorf("SourceDSN() = %q", cfg.SourceDSN())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := map[string]string{
		"unknown status": "search:\n  defaultStatus: archived\n",
		"unknown driver": "source:\n  driver: mysql\n",
		"missing table":  "source:\n  driver: sqlite3\n  table: \"\"\n",
		"bad port":       "server:\n  port: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSourceDSNFromPostgres(t *testing.T) {
	cfg := defaultConfig()
	cfg.Source.Driver = "postgres"
	if got := cfg.SourceDSN(); !strings.Contains(got, "dbname=searchserver") {
		t.Errorf("SourceDSN() = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
