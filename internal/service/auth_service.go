package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/400Ping/campus-bot/internal/model"
	"github.com/400Ping/campus-bot/internal/repository"
	"github.com/400Ping/campus-bot/pkg/jwt"
	"github.com/400Ping/campus-bot/pkg/redis"
)

// TokenPair 一组访问令牌与刷新令牌
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService 帳號、登入与 LINE 綁定业务
type AuthService interface {
	Register(ctx context.Context, email, password string, displayName *string) (*model.Account, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *model.Account, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout 将访问令牌列入黑名单直到其自然过期
	Logout(ctx context.Context, accessToken string) error
	GetAccount(ctx context.Context, id int64) (*model.Account, error)

	// IssueLinkCode 为 LINE 用户签发一次性綁定碼
	IssueLinkCode(ctx context.Context, lineUserID string) (code string, expiresAt time.Time, err error)
	// LinkAccount 以綁定碼将 Web 帳號挂上 LINE 用户，
	// 并把帳號此前以 WEB_<id> 身份累积的数据迁移到 LINE 身份
	LinkAccount(ctx context.Context, accountID int64, code string) error
	// ResolveBotUserID 求出帳號在 bot 数据中的身份：
	// 已綁定时为 LINE user id，否则为 WEB_<id>
	ResolveBotUserID(account *model.Account) string
}

type authService struct {
	accounts    repository.AccountRepository
	users       repository.UserRepository
	jwtManager  *jwt.Manager
	redisClient *redis.Client
	linkCodeTTL time.Duration
	logger      *zap.Logger
}

// NewAuthService 创建认证服务。redisClient 可为 nil，此时登出不生效黑名单。
func NewAuthService(
	accounts repository.AccountRepository,
	users repository.UserRepository,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	linkCodeTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		accounts:    accounts,
		users:       users,
		jwtManager:  jwtManager,
		redisClient: redisClient,
		linkCodeTTL: linkCodeTTL,
		logger:      logger,
	}
}

func (s *authService) Register(ctx context.Context, email, password string, displayName *string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acct := &model.Account{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         "student",
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.logger.Info("帳號已注册", zap.Int64("account_id", acct.ID))
	return acct, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, *model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.issueTokens(acct.ID, acct.Role)
	if err != nil {
		return nil, nil, err
	}
	return pair, acct, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidCredentials
	}
	if s.redisClient != nil {
		blocked, err := s.redisClient.IsBlacklisted(ctx, claims.ID)
		if err == nil && blocked {
			return nil, ErrInvalidCredentials
		}
	}
	return s.issueTokens(claims.AccountID, claims.Role)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtManager.ParseToken(accessToken)
	if err != nil {
		return nil
	}
	if s.redisClient == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.redisClient.BlacklistToken(ctx, claims.ID, ttl)
}

func (s *authService) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return acct, nil
}

func (s *authService) issueTokens(accountID int64, role string) (*TokenPair, error) {
	access, err := s.jwtManager.GenerateAccessToken(accountID, role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(accountID, role)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) IssueLinkCode(ctx context.Context, lineUserID string) (string, time.Time, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generate link code: %w", err)
	}
	code := strings.ToUpper(hex.EncodeToString(buf))
	expiresAt := time.Now().Add(s.linkCodeTTL)
	lc := &model.LinkCode{Code: code, LineUserID: lineUserID, ExpiresAt: expiresAt}
	if err := s.accounts.SaveLinkCode(ctx, lc); err != nil {
		return "", time.Time{}, fmt.Errorf("save link code: %w", err)
	}
	return code, expiresAt, nil
}

func (s *authService) LinkAccount(ctx context.Context, accountID int64, code string) error {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.LineUserID != nil && *acct.LineUserID != "" {
		return ErrAlreadyLinked
	}
	lc, err := s.accounts.ConsumeLinkCode(ctx, strings.ToUpper(strings.TrimSpace(code)), time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLinkCodeInvalid
		}
		return err
	}
	if err := s.accounts.UpdateLineUserID(ctx, accountID, lc.LineUserID); err != nil {
		return err
	}
	// 綁定前在 Web 端建立的数据挂在 WEB_<id> 名下，统一迁到 LINE 身份
	webID := fmt.Sprintf("WEB_%d", accountID)
	if err := s.users.MigrateUserID(ctx, webID, lc.LineUserID); err != nil {
		s.logger.Error("綁定数据迁移失败",
			zap.Int64("account_id", accountID),
			zap.Error(err))
		return err
	}
	s.logger.Info("帳號已綁定 LINE",
		zap.Int64("account_id", accountID),
		zap.String("line_user_id", lc.LineUserID))
	return nil
}

func (s *authService) ResolveBotUserID(account *model.Account) string {
	if account.LineUserID != nil && *account.LineUserID != "" {
		return *account.LineUserID
	}
	return fmt.Sprintf("WEB_%d", account.ID)
}
