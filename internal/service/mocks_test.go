package service

import (
	"context"
	"os"
	"testing"

	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"github.com/OneVth/prj-board/internal/repository/interfaces"
	"github.com/OneVth/prj-board/internal/util"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) AddFollower(ctx context.Context, userID primitive.ObjectID, followerID string) error {
	args := m.Called(ctx, userID, followerID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveFollower(ctx context.Context, userID primitive.ObjectID, followerID string) error {
	args := m.Called(ctx, userID, followerID)
	return args.Error(0)
}

func (m *MockUserRepository) AddFollowing(ctx context.Context, userID primitive.ObjectID, followingID string) error {
	args := m.Called(ctx, userID, followingID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveFollowing(ctx context.Context, userID primitive.ObjectID, followingID string) error {
	args := m.Called(ctx, userID, followingID)
	return args.Error(0)
}

// MockPostRepository 是 PostRepository 接口的模拟实现
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Count(ctx context.Context, opts interfaces.ListPostsOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) ListEnriched(ctx context.Context, opts interfaces.ListPostsOptions) ([]*projection.PostView, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*projection.PostView), args.Error(1)
}

func (m *MockPostRepository) AddLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockCommentRepository 是 CommentRepository 接口的模拟实现
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) ListByPostEnriched(ctx context.Context, postID primitive.ObjectID, viewerID string) ([]*projection.CommentView, error) {
	args := m.Called(ctx, postID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*projection.CommentView), args.Error(1)
}

func (m *MockCommentRepository) ListByAuthor(ctx context.Context, authorID string, limit int64) ([]*model.Comment, error) {
	args := m.Called(ctx, authorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) AddLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockCommentRepository) RemoveLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// 确保模拟实现满足接口
var (
	_ interfaces.UserRepository    = (*MockUserRepository)(nil)
	_ interfaces.PostRepository    = (*MockPostRepository)(nil)
	_ interfaces.CommentRepository = (*MockCommentRepository)(nil)
)
