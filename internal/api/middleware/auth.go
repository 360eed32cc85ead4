package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/400Ping/campus-bot/pkg/jwt"
	"github.com/400Ping/campus-bot/pkg/redis"
	"github.com/400Ping/campus-bot/pkg/response"
)

// Context key
const (
	CtxAccountID = "account_id"
	CtxRole      = "role"
)

// Auth 校验 Bearer Token 并将帳號信息写入上下文。
// redisClient 可为 nil，此时跳过黑名单检查。
func Auth(jwtManager *jwt.Manager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, 40101, "缺少认证信息")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := jwtManager.ParseToken(tokenString)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				response.Unauthorized(c, 40102, "登录已过期，请重新登录")
			} else {
				response.Unauthorized(c, 40103, "无效的认证信息")
			}
			c.Abort()
			return
		}
		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 40103, "无效的认证信息")
			c.Abort()
			return
		}
		if redisClient != nil {
			blocked, err := redisClient.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && blocked {
				response.Unauthorized(c, 40104, "登录已失效，请重新登录")
				c.Abort()
				return
			}
		}

		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// AccountID 从上下文取出当前帳號 id
func AccountID(c *gin.Context) int64 {
	return c.GetInt64(CtxAccountID)
}
