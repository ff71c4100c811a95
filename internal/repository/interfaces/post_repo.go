package interfaces

import (
	"context"

	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListPostsOptions 描述一次帖子列表查询
type ListPostsOptions struct {
	Query    string   // 全文搜索关键词，空串表示不过滤
	Sort     string   // date | likes | comments
	Skip     int64
	Limit    int64
	AuthorIn []string // 非空时只返回这些作者的帖子
	ViewerID string   // 可选访问者ID，用于计算 is_liked
}

// PostRepository 定义了帖子相关的数据库操作接口
//
// AddLike / RemoveLike 必须把集合变更和计数器变更合并为一次原子更新，
// 并发读者不能观察到只应用了其中一半的状态
//
// ListEnriched 在一次聚合查询中完成评论数和作者的连接，
// 单页的数据库往返次数与行数无关
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context, opts ListPostsOptions) (int64, error)
	ListEnriched(ctx context.Context, opts ListPostsOptions) ([]*projection.PostView, error)
	AddLike(ctx context.Context, id primitive.ObjectID, userID string) error
	RemoveLike(ctx context.Context, id primitive.ObjectID, userID string) error
}
