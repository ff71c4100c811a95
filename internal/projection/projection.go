// Package projection 负责把原始文档和聚合结果映射为对外的响应结构。
// 所有缺省值规则集中在这里，避免散落在各个调用点。
package projection

import (
	"github.com/OneVth/prj-board/internal/model"
)

const (
	// DefaultCreatedAt 缺失 created_at 字段时的固定缺省值
	DefaultCreatedAt = "1970-01-01T00:00:00.000Z"
	// UnknownAuthor 作者不存在或ID缺失时的回退用户名
	UnknownAuthor = "Unknown"
)

// PostView 是帖子的响应结构，bson 标签使其可直接由聚合管道解码
type PostView struct {
	ID             string `bson:"id" json:"id"`
	Title          string `bson:"title" json:"title"`
	Content        string `bson:"content" json:"content"`
	CreatedAt      string `bson:"created_at" json:"createdAt"`
	Likes          int    `bson:"likes" json:"likes"`
	CommentCount   int    `bson:"comment_count" json:"commentCount"`
	AuthorID       string `bson:"author_id" json:"authorId"`
	AuthorUsername string `bson:"author_username" json:"authorUsername"`
	Image          string `bson:"image,omitempty" json:"image,omitempty"`
	IsLiked        bool   `bson:"is_liked" json:"isLiked"`
}

// PostListView 是分页帖子列表的响应结构
type PostListView struct {
	Posts       []*PostView `json:"posts"`
	TotalPosts  int64       `json:"totalPosts"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int64       `json:"totalPages"`
}

// CommentView 是评论的响应结构
type CommentView struct {
	ID             string `bson:"id" json:"id"`
	PostID         string `bson:"post_id" json:"postId"`
	Content        string `bson:"content" json:"content"`
	AuthorID       string `bson:"author_id" json:"authorId"`
	AuthorUsername string `bson:"author_username" json:"authorUsername"`
	CreatedAt      string `bson:"created_at" json:"createdAt"`
	Likes          int    `bson:"likes" json:"likes"`
	IsLiked        bool   `bson:"is_liked" json:"isLiked"`
}

// UserView 是用户资料的响应结构
type UserView struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	CreatedAt      string `json:"createdAt"`
	FollowerCount  int    `json:"followerCount"`
	FollowingCount int    `json:"followingCount"`
	IsFollowing    bool   `json:"isFollowing"`
}

// FormatPost 把帖子文档和其补充数据映射为 PostView
// author 为 nil 时表示作者ID缺失或被引用的用户已不存在
func FormatPost(post *model.Post, commentCount int64, author *model.User, viewerID string) *PostView {
	view := &PostView{
		ID:             post.ID.Hex(),
		Title:          post.Title,
		Content:        post.Content,
		CreatedAt:      orDefault(post.CreatedAt),
		Likes:          post.Likes,
		CommentCount:   int(commentCount),
		AuthorUsername: UnknownAuthor,
		Image:          post.Image,
		IsLiked:        post.IsLikedBy(viewerID),
	}
	if author != nil {
		view.AuthorID = post.AuthorID
		view.AuthorUsername = author.Username
	}
	return view
}

// FormatComment 把评论文档映射为 CommentView
func FormatComment(comment *model.Comment, author *model.User, viewerID string) *CommentView {
	view := &CommentView{
		ID:             comment.ID.Hex(),
		PostID:         comment.PostID.Hex(),
		Content:        comment.Content,
		CreatedAt:      orDefault(comment.CreatedAt),
		Likes:          comment.Likes,
		AuthorUsername: UnknownAuthor,
		IsLiked:        comment.IsLikedBy(viewerID),
	}
	if author != nil {
		view.AuthorID = comment.AuthorID
		view.AuthorUsername = author.Username
	}
	return view
}

// FormatUser 把用户文档映射为 UserView，关注数由集合基数计算得出
func FormatUser(user *model.User, viewerID string) *UserView {
	return &UserView{
		ID:             user.ID.Hex(),
		Username:       user.Username,
		Email:          user.Email,
		CreatedAt:      orDefault(user.CreatedAt),
		FollowerCount:  len(user.Followers),
		FollowingCount: len(user.Following),
		IsFollowing:    user.IsFollowedBy(viewerID),
	}
}

func orDefault(createdAt string) string {
	if createdAt == "" {
		return DefaultCreatedAt
	}
	return createdAt
}
