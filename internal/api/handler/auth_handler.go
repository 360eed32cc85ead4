package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/400Ping/campus-bot/internal/api/middleware"
	"github.com/400Ping/campus-bot/internal/dto"
	"github.com/400Ping/campus-bot/internal/service"
	"github.com/400Ping/campus-bot/pkg/response"
)

// AuthHandler 注册、登入与帳號綁定
type AuthHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	acct, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Conflict(c, 40901, "邮箱已被注册")
		case errors.Is(err, service.ErrInvalidInput):
			response.BadRequest(c, 40001, "请求参数不合法")
		default:
			h.logger.Error("注册失败", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.Created(c, acct)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	pair, acct, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, 40105, "邮箱或密码错误")
			return
		}
		h.logger.Error("登录失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"tokens": pair, "account": acct})
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, 40103, "无效的认证信息")
		return
	}
	response.OK(c, pair)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("登出失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	acct, err := h.auth.GetAccount(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.logger.Error("查询帳號失败", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, acct)
}

// Link POST /api/auth/link
func (h *AuthHandler) Link(c *gin.Context) {
	var req dto.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数不合法")
		return
	}
	err := h.auth.LinkAccount(c.Request.Context(), middleware.AccountID(c), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLinkCodeInvalid):
			response.BadRequest(c, 40002, "綁定碼无效或已过期")
		case errors.Is(err, service.ErrAlreadyLinked):
			response.Conflict(c, 40902, "帳號已綁定 LINE")
		default:
			h.logger.Error("帳號綁定失败", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}
