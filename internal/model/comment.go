package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment 结构体表示评论文档
// post_id 用于按帖子查询，但不做级联删除：删除帖子不会删除其评论
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"post_id" json:"post_id"`
	Content   string             `bson:"content" json:"content"`
	AuthorID  string             `bson:"author_id" json:"author_id"`
	CreatedAt string             `bson:"created_at,omitempty" json:"created_at"`
	Likes     int                `bson:"likes" json:"likes"`
	LikedBy   []string           `bson:"liked_by,omitempty" json:"-"`
}

// IsLikedBy 判断 userID 是否已点赞该评论
func (c *Comment) IsLikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	return containsID(c.LikedBy, userID)
}
