package util

import (
	"errors"
	"time"

	"github.com/OneVth/prj-board/config"
	"github.com/dgrijalva/jwt-go"
)

const (
	// AccessTokenTTL 访问令牌有效期（较短，存放在响应体中）
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL 刷新令牌有效期（较长，存放在 HTTPOnly Cookie 中）
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenClaims 表示从令牌中解析出的身份信息
type TokenClaims struct {
	UserID   string
	Username string
}

// GenerateAccessToken 生成访问令牌
func GenerateAccessToken(userID, username string) (string, error) {
	return generateToken(userID, username, "access", AccessTokenTTL)
}

// GenerateRefreshToken 生成刷新令牌
func GenerateRefreshToken(userID, username string) (string, error) {
	return generateToken(userID, username, "refresh", RefreshTokenTTL)
}

func generateToken(userID, username, tokenType string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"type":     tokenType,
		"exp":      time.Now().Add(ttl).Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateToken 验证令牌并返回其中的身份信息
func ValidateToken(tokenString, tokenType string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("意外的签名方法")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的令牌")
	}

	if claims["type"] != tokenType {
		return nil, errors.New("令牌类型不匹配")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("无效的用户ID")
	}
	username, _ := claims["username"].(string)

	return &TokenClaims{UserID: userID, Username: username}, nil
}

// RefreshAccessToken 使用刷新令牌换取新的访问令牌
func RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := ValidateToken(refreshToken, "refresh")
	if err != nil {
		return "", err
	}
	return GenerateAccessToken(claims.UserID, claims.Username)
}
