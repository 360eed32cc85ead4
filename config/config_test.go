package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写配置文件失败: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: test-secret-at-least-16-chars
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port 默认值 = %d", cfg.Server.Port)
	}
	if cfg.Server.Timezone != "Asia/Taipei" {
		t.Errorf("server.timezone 默认值 = %s", cfg.Server.Timezone)
	}
	if cfg.Database.Name != "campus_bot" {
		t.Errorf("db.name 默认值 = %s", cfg.Database.Name)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("auth.access_token_ttl 默认值 = %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.LinkCodeTTL != 15*time.Minute {
		t.Errorf("auth.link_code_ttl 默认值 = %v", cfg.Auth.LinkCodeTTL)
	}
	if cfg.Jobs.ReminderInterval != 3*time.Minute {
		t.Errorf("jobs.reminder_interval 默认值 = %v", cfg.Jobs.ReminderInterval)
	}
	if cfg.Jobs.NewsInterval != 60*time.Minute {
		t.Errorf("jobs.news_interval 默认值 = %v", cfg.Jobs.NewsInterval)
	}
	if cfg.AI.GeminiModel == "" || cfg.AI.GeminiVisionModel == "" {
		t.Error("Gemini 模型名应有默认值")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
auth:
  jwt_secret: test-secret-at-least-16-chars
jobs:
  reminder_interval: 1m
news:
  default_feeds:
    - https://example.com/rss
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d，期望 9000", cfg.Server.Port)
	}
	if cfg.Jobs.ReminderInterval != time.Minute {
		t.Errorf("jobs.reminder_interval = %v", cfg.Jobs.ReminderInterval)
	}
	if len(cfg.News.DefaultFeeds) != 1 {
		t.Errorf("news.default_feeds = %v", cfg.News.DefaultFeeds)
	}
}

func TestValidate(t *testing.T) {
	if _, err := Load(writeConfig(t, "server:\n  port: 8080\n")); err == nil {
		t.Error("缺少 jwt_secret 应校验失败")
	}
	if _, err := Load(writeConfig(t, "auth:\n  jwt_secret: short\n")); err == nil {
		t.Error("过短的 jwt_secret 应校验失败")
	}
	if _, err := Load(writeConfig(t, "server:\n  port: 99999\nauth:\n  jwt_secret: test-secret-at-least-16-chars\n")); err == nil {
		t.Error("非法端口应校验失败")
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, Name: "campus_bot", User: "postgres",
		Password: "pw", SSLMode: "disable", Timezone: "Asia/Taipei",
	}
	dsn := cfg.DSN()
	for _, part := range []string{"host=db", "port=5432", "dbname=campus_bot", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN 缺少 %q: %s", part, dsn)
		}
	}
}
