package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/config"
	"github.com/400Ping/campus-bot/pkg/jwt"
)

func newTestAuthService() (AuthService, *mockAccountRepo, *mockUserRepo) {
	accounts := newMockAccountRepo()
	users := newMockUserRepo()
	manager := jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-at-least-16-chars",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	svc := NewAuthService(accounts, users, manager, nil, 15*time.Minute, zap.NewNop())
	return svc, accounts, users
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	acct, err := svc.Register(ctx, "Student@Example.com", "password123", nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if acct.Email != "student@example.com" {
		t.Errorf("邮箱应转小写保存，实际 %q", acct.Email)
	}
	if acct.PasswordHash == "password123" {
		t.Error("密码不应明文保存")
	}

	pair, got, err := svc.Login(ctx, "student@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("登录应签发两种令牌")
	}
	if got.ID != acct.ID {
		t.Errorf("登录返回的帳號 id = %d，期望 %d", got.ID, acct.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	if _, err := svc.Register(ctx, "a@b.com", "password123", nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "password456", nil); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("重复注册期望 ErrEmailTaken，实际 %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	svc.Register(ctx, "a@b.com", "password123", nil)
	if _, _, err := svc.Login(ctx, "a@b.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误期望 ErrInvalidCredentials，实际 %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@b.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("帳號不存在期望 ErrInvalidCredentials，实际 %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	svc.Register(ctx, "a@b.com", "password123", nil)
	pair, _, err := svc.Login(ctx, "a@b.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用 access token 换发应被拒绝，实际 %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Errorf("用 refresh token 换发应成功，实际 %v", err)
	}
}

func TestLinkAccountFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	acct, _ := svc.Register(ctx, "a@b.com", "password123", nil)

	code, expiresAt, err := svc.IssueLinkCode(ctx, "U_line_123")
	if err != nil {
		t.Fatalf("IssueLinkCode() error = %v", err)
	}
	if code == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("綁定碼不合法: %q %v", code, expiresAt)
	}

	if err := svc.LinkAccount(ctx, acct.ID, code); err != nil {
		t.Fatalf("LinkAccount() error = %v", err)
	}
	got, _ := svc.GetAccount(ctx, acct.ID)
	if got.LineUserID == nil || *got.LineUserID != "U_line_123" {
		t.Errorf("綁定后应记录 LINE user id，实际 %v", got.LineUserID)
	}
	if svc.ResolveBotUserID(got) != "U_line_123" {
		t.Errorf("綁定后 bot 身份应为 LINE id，实际 %q", svc.ResolveBotUserID(got))
	}

	// 綁定碼一次性，重复使用失败
	acct2, _ := svc.Register(ctx, "c@d.com", "password123", nil)
	if err := svc.LinkAccount(ctx, acct2.ID, code); !errors.Is(err, ErrLinkCodeInvalid) {
		t.Errorf("重复使用綁定碼期望 ErrLinkCodeInvalid，实际 %v", err)
	}
}

func TestLinkAccountExpiredCode(t *testing.T) {
	ctx := context.Background()
	accounts := newMockAccountRepo()
	users := newMockUserRepo()
	manager := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-at-least-16-chars",
		AccessTokenTTL: 15 * time.Minute,
	})
	// TTL 为负，签发即过期
	svc := NewAuthService(accounts, users, manager, nil, -time.Minute, zap.NewNop())

	acct, _ := svc.Register(ctx, "a@b.com", "password123", nil)
	code, _, err := svc.IssueLinkCode(ctx, "U_line_123")
	if err != nil {
		t.Fatalf("IssueLinkCode() error = %v", err)
	}
	if err := svc.LinkAccount(ctx, acct.ID, code); !errors.Is(err, ErrLinkCodeInvalid) {
		t.Errorf("过期綁定碼期望 ErrLinkCodeInvalid，实际 %v", err)
	}
}

func TestLinkAccountAlreadyLinked(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	acct, _ := svc.Register(ctx, "a@b.com", "password123", nil)
	code, _, _ := svc.IssueLinkCode(ctx, "U_line_123")
	if err := svc.LinkAccount(ctx, acct.ID, code); err != nil {
		t.Fatalf("LinkAccount() error = %v", err)
	}

	code2, _, _ := svc.IssueLinkCode(ctx, "U_line_456")
	if err := svc.LinkAccount(ctx, acct.ID, code2); !errors.Is(err, ErrAlreadyLinked) {
		t.Errorf("二次綁定期望 ErrAlreadyLinked，实际 %v", err)
	}
}

func TestResolveBotUserIDUnlinked(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	acct, _ := svc.Register(ctx, "a@b.com", "password123", nil)
	if got := svc.ResolveBotUserID(acct); got != "WEB_1" {
		t.Errorf("未綁定帳號的 bot 身份应为 WEB_<id>，实际 %q", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService()

	cases := []struct{ email, password string }{
		{"", "password123"},
		{"not-an-email", "password123"},
		{"a@b.com", "short"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.email, tc.password, nil); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%q, %q) 期望 ErrInvalidInput，实际 %v", tc.email, tc.password, err)
		}
	}
}
