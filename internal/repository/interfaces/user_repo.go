package interfaces

import (
	"context"

	"github.com/OneVth/prj-board/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository 定义了用户相关的数据库操作接口
// Find 系列方法在文档不存在时返回 (nil, nil)
//
// 关注关系的增删是按文档的单边写入：服务层先后调用两侧各一次，
// 两次调用之间不提供跨文档原子性
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	AddFollower(ctx context.Context, userID primitive.ObjectID, followerID string) error
	RemoveFollower(ctx context.Context, userID primitive.ObjectID, followerID string) error
	AddFollowing(ctx context.Context, userID primitive.ObjectID, followingID string) error
	RemoveFollowing(ctx context.Context, userID primitive.ObjectID, followingID string) error
}
