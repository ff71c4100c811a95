package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post 结构体表示帖子文档
// author_id 是弱引用：作者被删除后帖子仍然展示，作者名回退为 "Unknown"
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	AuthorID  string             `bson:"author_id" json:"author_id"`
	CreatedAt string             `bson:"created_at,omitempty" json:"created_at"`
	Likes     int                `bson:"likes" json:"likes"`
	LikedBy   []string           `bson:"liked_by,omitempty" json:"-"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// IsLikedBy 判断 userID 是否已点赞，liked_by 字段缺失视为空集合
func (p *Post) IsLikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	return containsID(p.LikedBy, userID)
}

// PostUpdate 表示帖子的部分更新，nil 字段不会被修改
type PostUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Image   *string `json:"image"`
}

// 时间戳以ISO-8601字符串存储，字典序即时间序
const timeLayout = "2006-01-02T15:04:05.000"

// NowISO 返回当前UTC时间的ISO-8601字符串
func NowISO() string {
	return time.Now().UTC().Format(timeLayout) + "Z"
}
