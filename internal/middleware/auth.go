package middleware

import (
	"strings"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/util"
	"github.com/gin-gonic/gin"
)

// bearerToken 从 Authorization 头中提取令牌，不存在时返回空字符串
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// resolveViewer 解析当前请求的访问者身份（可能不存在）
// 所有认证路由共用这一个解析逻辑，必须登录的路由只额外做存在性检查
func resolveViewer(c *gin.Context) (*util.TokenClaims, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, nil
	}

	claims, err := util.ValidateToken(token, "access")
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AuthMiddleware 要求请求携带有效的访问令牌
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := resolveViewer(c)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "无效或过期的令牌", err))
			c.Abort()
			return
		}
		if claims == nil {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "需要认证"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// OptionalAuthMiddleware 解析访问者身份但不强制要求登录
// 用于需要计算 isLiked / isFollowing 等与访问者相关字段的公开路由
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := resolveViewer(c)
		if err == nil && claims != nil {
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
		}
		c.Next()
	}
}

// CurrentUserID 返回当前访问者的用户ID，未登录时返回空字符串
func CurrentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
