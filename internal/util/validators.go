package util

import (
	"github.com/go-playground/validator/v10"
)

// ValidatePassword 验证密码长度（最少6个字符）
func ValidatePassword(fl validator.FieldLevel) bool {
	password, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return len(password) >= 6
}
