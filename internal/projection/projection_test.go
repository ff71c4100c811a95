package projection

import (
	"encoding/json"
	"testing"

	"github.com/OneVth/prj-board/internal/model"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestFormatPostDefaults 测试缺失字段的缺省值规则
func TestFormatPostDefaults(t *testing.T) {
	post := &model.Post{
		ID:      primitive.NewObjectID(),
		Title:   "t",
		Content: "c",
		// CreatedAt 和 AuthorID 缺失
	}

	view := FormatPost(post, 0, nil, "")
	assert.Equal(t, DefaultCreatedAt, view.CreatedAt)
	assert.Equal(t, UnknownAuthor, view.AuthorUsername)
	assert.Equal(t, "", view.AuthorID)
	assert.False(t, view.IsLiked)
}

// TestFormatPostDeletedAuthor 测试被引用的作者已不存在时的回退
func TestFormatPostDeletedAuthor(t *testing.T) {
	post := &model.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  primitive.NewObjectID().Hex(),
		CreatedAt: "2024-06-01T12:00:00.000Z",
	}

	// author 为 nil 表示用户文档已被删除，authorId 也一并清空
	view := FormatPost(post, 3, nil, "")
	assert.Equal(t, UnknownAuthor, view.AuthorUsername)
	assert.Equal(t, "", view.AuthorID)
	assert.Equal(t, 3, view.CommentCount)
	assert.Equal(t, "2024-06-01T12:00:00.000Z", view.CreatedAt)
}

// TestFormatPostWithAuthor 测试作者存在时的正常映射
func TestFormatPostWithAuthor(t *testing.T) {
	authorOID := primitive.NewObjectID()
	viewerID := primitive.NewObjectID().Hex()
	post := &model.Post{
		ID:       primitive.NewObjectID(),
		AuthorID: authorOID.Hex(),
		Likes:    2,
		LikedBy:  []string{viewerID},
	}
	author := &model.User{ID: authorOID, Username: "alice"}

	view := FormatPost(post, 0, author, viewerID)
	assert.Equal(t, "alice", view.AuthorUsername)
	assert.Equal(t, authorOID.Hex(), view.AuthorID)
	assert.Equal(t, 2, view.Likes)
	assert.True(t, view.IsLiked)
}

// TestFormatPostImageOmitted 测试空的 image 字段不出现在JSON输出中
func TestFormatPostImageOmitted(t *testing.T) {
	post := &model.Post{ID: primitive.NewObjectID()}

	data, err := json.Marshal(FormatPost(post, 0, nil, ""))
	assert.NoError(t, err)
	assert.NotContains(t, string(data), `"image"`)

	post.Image = "/uploads/posts/x.png"
	data, err = json.Marshal(FormatPost(post, 0, nil, ""))
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"image":"/uploads/posts/x.png"`)
}

// TestFormatCommentDefaults 测试评论的缺省值规则与帖子一致
func TestFormatCommentDefaults(t *testing.T) {
	comment := &model.Comment{
		ID:     primitive.NewObjectID(),
		PostID: primitive.NewObjectID(),
	}

	view := FormatComment(comment, nil, "")
	assert.Equal(t, DefaultCreatedAt, view.CreatedAt)
	assert.Equal(t, UnknownAuthor, view.AuthorUsername)
	assert.Equal(t, "", view.AuthorID)
}

// TestFormatUserCounts 测试关注数由集合基数计算得出
func TestFormatUserCounts(t *testing.T) {
	viewerID := primitive.NewObjectID().Hex()
	user := &model.User{
		ID:        primitive.NewObjectID(),
		Username:  "bob",
		Email:     "bob@example.com",
		Followers: []string{viewerID, primitive.NewObjectID().Hex()},
		Following: []string{primitive.NewObjectID().Hex()},
	}

	view := FormatUser(user, viewerID)
	assert.Equal(t, 2, view.FollowerCount)
	assert.Equal(t, 1, view.FollowingCount)
	assert.True(t, view.IsFollowing)

	// 未登录访问者
	anon := FormatUser(user, "")
	assert.False(t, anon.IsFollowing)
}
