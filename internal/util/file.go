package util

import (
	"path/filepath"

	"github.com/google/uuid"
)

// GenerateUniqueFilename 生成唯一的文件名
func GenerateUniqueFilename(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	return uuid.NewString() + ext
}
