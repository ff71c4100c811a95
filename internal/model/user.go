package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 结构体表示用户文档
// followers / following 保存用户ID字符串集合，关注关系的两侧各由一次
// 独立的单文档更新维护，不提供跨文档原子性
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"` // 密码哈希不应在JSON中暴露
	CreatedAt    string             `bson:"created_at,omitempty" json:"created_at"`
	Followers    []string           `bson:"followers" json:"-"`
	Following    []string           `bson:"following" json:"-"`
}

// IsFollowedBy 判断 viewerID 是否关注了该用户
func (u *User) IsFollowedBy(viewerID string) bool {
	if viewerID == "" {
		return false
	}
	return containsID(u.Followers, viewerID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
