package interfaces

import (
	"context"

	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentRepository 定义了评论相关的数据库操作接口
// 点赞写入的原子性要求与 PostRepository 相同
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	ListByPostEnriched(ctx context.Context, postID primitive.ObjectID, viewerID string) ([]*projection.CommentView, error)
	ListByAuthor(ctx context.Context, authorID string, limit int64) ([]*model.Comment, error)
	AddLike(ctx context.Context, id primitive.ObjectID, userID string) error
	RemoveLike(ctx context.Context, id primitive.ObjectID, userID string) error
}
