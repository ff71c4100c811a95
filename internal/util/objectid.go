package util

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID 验证并转换十六进制ID字符串
// 格式错误的ID在任何数据库调用之前就被拒绝
func ParseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

// IsValidObjectID 判断字符串是否为合法的文档ID
func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
