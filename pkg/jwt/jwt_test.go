package jwt

import (
	"testing"
	"time"

	"github.com/400Ping/campus-bot/config"
)

func newTestManager(accessTTL, refreshTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-at-least-16-chars",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	})
}

func TestManager_GenerateAndParseAccessToken(t *testing.T) {
	mgr := newTestManager(15*time.Minute, 24*time.Hour)

	token, err := mgr.GenerateAccessToken(42, "student")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.AccountID != 42 {
		t.Errorf("期望 account_id=42，实际=%d", claims.AccountID)
	}
	if claims.Role != "student" {
		t.Errorf("期望 role=student，实际=%s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 token_type=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("JWT ID 不应为空")
	}
}

func TestManager_RefreshTokenType(t *testing.T) {
	mgr := newTestManager(15*time.Minute, 24*time.Hour)

	token, err := mgr.GenerateRefreshToken(1, "admin")
	if err != nil {
		t.Fatalf("生成 RefreshToken 失败: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望 token_type=refresh，实际=%s", claims.TokenType)
	}
}

func TestManager_ParseExpiredToken(t *testing.T) {
	mgr := newTestManager(-time.Minute, 24*time.Hour)

	token, err := mgr.GenerateAccessToken(1, "student")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := mgr.ParseToken(token); err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际=%v", err)
	}
}

func TestManager_ParseGarbageToken(t *testing.T) {
	mgr := newTestManager(15*time.Minute, 24*time.Hour)

	if _, err := mgr.ParseToken("not-a-token"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestManager_ParseWithWrongSecret(t *testing.T) {
	mgr := newTestManager(15*time.Minute, 24*time.Hour)
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-key-16-chars-long",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, err := mgr.GenerateAccessToken(1, "student")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	if _, err := other.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}
