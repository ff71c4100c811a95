package mongo

import (
	"context"

	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{coll: db.Collection("users")}
}

// Create 创建一个新用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	result, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err))
		return err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	util.Logger.Info("用户创建成功", zap.String("user_id", user.ID.Hex()))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// AddFollower 把 followerID 加入 userID 的粉丝集合（无重复）
func (r *userRepository) AddFollower(ctx context.Context, userID primitive.ObjectID, followerID string) error {
	return r.updateSet(ctx, userID, bson.M{"$addToSet": bson.M{"followers": followerID}})
}

// RemoveFollower 把 followerID 移出 userID 的粉丝集合
func (r *userRepository) RemoveFollower(ctx context.Context, userID primitive.ObjectID, followerID string) error {
	return r.updateSet(ctx, userID, bson.M{"$pull": bson.M{"followers": followerID}})
}

// AddFollowing 把 followingID 加入 userID 的关注集合
func (r *userRepository) AddFollowing(ctx context.Context, userID primitive.ObjectID, followingID string) error {
	return r.updateSet(ctx, userID, bson.M{"$addToSet": bson.M{"following": followingID}})
}

// RemoveFollowing 把 followingID 移出 userID 的关注集合
func (r *userRepository) RemoveFollowing(ctx context.Context, userID primitive.ObjectID, followingID string) error {
	return r.updateSet(ctx, userID, bson.M{"$pull": bson.M{"following": followingID}})
}

func (r *userRepository) updateSet(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		util.Logger.Error("更新关注关系失败", zap.Error(err), zap.String("user_id", userID.Hex()))
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
