package service

import (
	"context"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"github.com/OneVth/prj-board/internal/repository/interfaces"
	"github.com/OneVth/prj-board/internal/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo interfaces.UserRepository
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register 注册新用户，邮箱和用户名重复时返回冲突错误
func (s *UserService) Register(ctx context.Context, username, email, password string) (*projection.UserView, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if existing != nil {
		return nil, errors.New(errors.ErrUserExists, "Email already registered")
	}

	existing, err = s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if existing != nil {
		return nil, errors.New(errors.ErrUserExists, "Username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "生成密码哈希失败", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    model.NowISO(),
		Followers:    []string{},
		Following:    []string{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 唯一索引兜住预检查之间的并发注册
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.Wrap(errors.ErrUserExists, "Email or username already taken", err)
		}
		return nil, errors.Wrap(errors.ErrDatabase, "创建用户失败", err)
	}

	util.Logger.Info("用户注册成功", zap.String("user_id", user.ID.Hex()))
	return projection.FormatUser(user, ""), nil
}

// Login 用户登录，校验通过后返回用户文档
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "Incorrect email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "Incorrect email or password")
	}

	util.Logger.Info("用户登录成功", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// GetProfile 返回用户资料，包含关注数和访问者视角的关注状态
func (s *UserService) GetProfile(ctx context.Context, id, viewerID string) (*projection.UserView, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return projection.FormatUser(user, viewerID), nil
}

// ToggleFollow 切换关注状态：已关注则取消，未关注则添加
//
// 关注是双向约定但实现为两次独立的单边写：目标用户的 followers 和
// 访问者的 following 分别更新。两次写之间的崩溃会留下单边关系，
// 这是接受的窗口，不做补偿回滚（再次切换即可恢复）
func (s *UserService) ToggleFollow(ctx context.Context, targetID, actorID string) (*projection.UserView, error) {
	// 自我关注在任何数据库调用之前被拒绝
	if targetID == actorID {
		return nil, errors.New(errors.ErrSelfFollow, "You cannot follow yourself")
	}

	targetOID, err := util.ParseObjectID(targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}
	actorOID, err := util.ParseObjectID(actorID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}

	target, err := s.userRepo.FindByID(ctx, targetOID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if target == nil {
		return nil, errors.New(errors.ErrUserNotFound, "User with id "+targetID+" not found")
	}

	if target.IsFollowedBy(actorID) {
		// 取消关注
		if err := s.userRepo.RemoveFollower(ctx, targetOID, actorID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "更新关注关系失败", err)
		}
		if err := s.userRepo.RemoveFollowing(ctx, actorOID, targetID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "更新关注关系失败", err)
		}
	} else {
		// 添加关注
		if err := s.userRepo.AddFollower(ctx, targetOID, actorID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "更新关注关系失败", err)
		}
		if err := s.userRepo.AddFollowing(ctx, actorOID, targetID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "更新关注关系失败", err)
		}
	}

	updated, err := s.userRepo.FindByID(ctx, targetOID)
	if err != nil || updated == nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}

	util.Logger.Info("关注状态已切换",
		zap.String("target_id", targetID),
		zap.String("actor_id", actorID),
		zap.Int("follower_count", len(updated.Followers)))
	return projection.FormatUser(updated, actorID), nil
}

// findUser 解析ID并查找用户
func (s *UserService) findUser(ctx context.Context, id string) (*model.User, error) {
	oid, err := util.ParseObjectID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}
	user, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "User with id "+id+" not found")
	}
	return user, nil
}
