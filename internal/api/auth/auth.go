package auth

import (
	"context"
	"net/http"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/middleware"
	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"github.com/OneVth/prj-board/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const refreshCookieName = "refresh_token"

// UserServiceInterface 定义认证处理器依赖的用户服务能力
type UserServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (*projection.UserView, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetProfile(ctx context.Context, id, viewerID string) (*projection.UserView, error)
}

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Username string `json:"username" binding:"required,min=3,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,password"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.userService.Register(c.Request.Context(),
		registerData.Username, registerData.Email, registerData.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login 处理用户登录请求
// 访问令牌放在响应体中，刷新令牌写入 HTTPOnly Cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.userService.Login(c.Request.Context(), loginData.Email, loginData.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	accessToken, err := util.GenerateAccessToken(user.ID.Hex(), user.Username)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}
	refreshToken, err := util.GenerateRefreshToken(user.ID.Hex(), user.Username)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成令牌失败", err))
		return
	}

	setRefreshCookie(c, refreshToken, int(util.RefreshTokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"tokenType":   "bearer",
	})
}

// Refresh 使用刷新令牌换取新的访问令牌
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "缺少刷新令牌"))
		return
	}

	accessToken, err := util.RefreshAccessToken(refreshToken)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "无效或过期的刷新令牌", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"tokenType":   "bearer",
	})
}

// Logout 处理用户登出，删除刷新令牌 Cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me 返回当前登录用户的资料
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	user, err := h.userService.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func setRefreshCookie(c *gin.Context, value string, maxAge int) {
	// HTTPOnly 防止脚本读取刷新令牌
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, value, maxAge, "/", "", false, true)
}
