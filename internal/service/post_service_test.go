package service

import (
	"context"
	"testing"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"github.com/OneVth/prj-board/internal/repository/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPostService() (*PostService, *MockPostRepository, *MockCommentRepository, *MockUserRepository) {
	postRepo := new(MockPostRepository)
	commentRepo := new(MockCommentRepository)
	userRepo := new(MockUserRepository)
	return NewPostService(postRepo, commentRepo, userRepo), postRepo, commentRepo, userRepo
}

func makeViews(n int) []*projection.PostView {
	views := make([]*projection.PostView, n)
	for i := range views {
		views[i] = &projection.PostView{ID: primitive.NewObjectID().Hex()}
	}
	return views
}

// TestListPostsClampsParams 测试非法分页参数被钳制而不是拒绝
func TestListPostsClampsParams(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	// page=0, limit=0 应钳制为 page=1, limit=10
	postRepo.On("Count", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Skip == 0 && opts.Limit == 10
	})).Return(int64(0), nil).Once()
	postRepo.On("ListEnriched", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Skip == 0 && opts.Limit == 10
	})).Return(makeViews(0), nil).Once()

	result, err := service.ListPosts(context.Background(), ListPostsParams{Page: 0, Limit: 0})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.CurrentPage)

	// limit=500 应截断为 100
	postRepo.On("Count", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Limit == 100
	})).Return(int64(0), nil).Once()
	postRepo.On("ListEnriched", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Limit == 100
	})).Return(makeViews(0), nil).Once()

	_, err = service.ListPosts(context.Background(), ListPostsParams{Page: 1, Limit: 500})
	assert.NoError(t, err)

	// 负数参数同样钳制：page=-5 → 1，limit=-3 → 10
	postRepo.On("Count", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Skip == 0 && opts.Limit == 10
	})).Return(int64(101), nil).Once()
	postRepo.On("ListEnriched", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Skip == 0 && opts.Limit == 10
	})).Return(makeViews(10), nil).Once()

	result, err = service.ListPosts(context.Background(), ListPostsParams{Page: -5, Limit: -3})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.CurrentPage)
	assert.Equal(t, int64(11), result.TotalPages)
	postRepo.AssertExpectations(t)
}

// TestListPostsPaginationComplete 测试逐页遍历恰好得到全部帖子，无重复无遗漏
func TestListPostsPaginationComplete(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	const total = 23
	const limit = 10

	all := makeViews(total)
	postRepo.On("Count", mock.Anything, mock.Anything).Return(int64(total), nil)
	for skip := 0; skip < total; skip += limit {
		end := skip + limit
		if end > total {
			end = total
		}
		page := all[skip:end]
		wantSkip := int64(skip)
		postRepo.On("ListEnriched", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
			return opts.Skip == wantSkip && opts.Limit == limit
		})).Return(page, nil)
	}

	seen := make(map[string]bool)
	collected := 0
	var totalPages int64 = 1
	for page := 1; int64(page) <= totalPages; page++ {
		result, err := service.ListPosts(context.Background(), ListPostsParams{Page: page, Limit: limit})
		assert.NoError(t, err)
		totalPages = result.TotalPages
		assert.Equal(t, int64(total), result.TotalPosts)
		for _, view := range result.Posts {
			assert.False(t, seen[view.ID], "页间出现重复帖子")
			seen[view.ID] = true
			collected++
		}
	}

	assert.Equal(t, int64(3), totalPages)
	assert.Equal(t, total, collected)
}

// TestListPostsPagination 测试分页计算：15条帖子第2页每页10条
func TestListPostsPagination(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	postRepo.On("Count", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Skip == 10 && opts.Limit == 10
	})).Return(int64(15), nil)
	postRepo.On("ListEnriched", mock.Anything, mock.Anything).Return(makeViews(5), nil)

	result, err := service.ListPosts(context.Background(), ListPostsParams{Page: 2, Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, result.Posts, 5)
	assert.Equal(t, int64(15), result.TotalPosts)
	assert.Equal(t, 2, result.CurrentPage)
	assert.Equal(t, int64(2), result.TotalPages)
	postRepo.AssertExpectations(t)
}

// TestListPostsBeyondLastPage 测试超出末页时返回空列表但保留正确的总数
func TestListPostsBeyondLastPage(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	postRepo.On("Count", mock.Anything, mock.Anything).Return(int64(15), nil)
	postRepo.On("ListEnriched", mock.Anything, mock.Anything).Return(makeViews(0), nil)

	result, err := service.ListPosts(context.Background(), ListPostsParams{Page: 5, Limit: 10})
	assert.NoError(t, err)
	assert.Empty(t, result.Posts)
	assert.Equal(t, int64(15), result.TotalPosts)
	assert.Equal(t, int64(2), result.TotalPages)
	assert.Equal(t, 5, result.CurrentPage)
}

// TestListPostsConstantRoundTrips 测试整页只产生一次计数和一次聚合查询
func TestListPostsConstantRoundTrips(t *testing.T) {
	service, postRepo, commentRepo, userRepo := newPostService()

	postRepo.On("Count", mock.Anything, mock.Anything).Return(int64(250), nil)
	postRepo.On("ListEnriched", mock.Anything, mock.Anything).Return(makeViews(100), nil)

	result, err := service.ListPosts(context.Background(), ListPostsParams{Page: 1, Limit: 100})
	assert.NoError(t, err)
	assert.Len(t, result.Posts, 100)

	postRepo.AssertNumberOfCalls(t, "Count", 1)
	postRepo.AssertNumberOfCalls(t, "ListEnriched", 1)
	commentRepo.AssertNotCalled(t, "CountByPost")
	userRepo.AssertNotCalled(t, "FindByID")
}

// TestListPostsSortFallback 测试未知排序键回退为按时间排序
func TestListPostsSortFallback(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	postRepo.On("Count", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Sort == "date"
	})).Return(int64(0), nil)
	postRepo.On("ListEnriched", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Sort == "date"
	})).Return(makeViews(0), nil)

	_, err := service.ListPosts(context.Background(), ListPostsParams{Page: 1, Limit: 10, Sort: "bogus"})
	assert.NoError(t, err)
	postRepo.AssertExpectations(t)
}

// TestListPostsFollowingOnlyEmpty 测试关注列表为空时直接返回空页，不查询帖子集合
func TestListPostsFollowingOnlyEmpty(t *testing.T) {
	service, postRepo, _, userRepo := newPostService()

	viewerID := primitive.NewObjectID()
	userRepo.On("FindByID", mock.Anything, viewerID).Return(&model.User{
		ID:        viewerID,
		Username:  "viewer",
		Following: []string{},
	}, nil)

	result, err := service.ListPosts(context.Background(), ListPostsParams{
		Page: 3, Limit: 10, FollowingOnly: true, ViewerID: viewerID.Hex(),
	})
	assert.NoError(t, err)
	assert.Empty(t, result.Posts)
	assert.Equal(t, int64(0), result.TotalPosts)
	assert.Equal(t, int64(0), result.TotalPages)
	assert.Equal(t, 3, result.CurrentPage)

	postRepo.AssertNotCalled(t, "Count")
	postRepo.AssertNotCalled(t, "ListEnriched")
}

// TestListPostsFollowingOnly 测试关注流按关注列表过滤作者
func TestListPostsFollowingOnly(t *testing.T) {
	service, postRepo, _, userRepo := newPostService()

	viewerID := primitive.NewObjectID()
	following := []string{primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()}
	userRepo.On("FindByID", mock.Anything, viewerID).Return(&model.User{
		ID:        viewerID,
		Username:  "viewer",
		Following: following,
	}, nil)

	postRepo.On("Count", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return assert.ObjectsAreEqual(following, opts.AuthorIn)
	})).Return(int64(2), nil)
	postRepo.On("ListEnriched", mock.Anything, mock.Anything).Return(makeViews(2), nil)

	result, err := service.ListPosts(context.Background(), ListPostsParams{
		Page: 1, Limit: 10, FollowingOnly: true, ViewerID: viewerID.Hex(),
	})
	assert.NoError(t, err)
	assert.Len(t, result.Posts, 2)
	postRepo.AssertExpectations(t)
}

// TestListPostsFollowingOnlyUnauthenticated 测试未登录访问关注流被拒绝
func TestListPostsFollowingOnlyUnauthenticated(t *testing.T) {
	service, postRepo, _, userRepo := newPostService()

	_, err := service.ListPosts(context.Background(), ListPostsParams{
		Page: 1, Limit: 10, FollowingOnly: true, ViewerID: "",
	})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	userRepo.AssertNotCalled(t, "FindByID")
	postRepo.AssertNotCalled(t, "Count")
}

// TestGetPostInvalidID 测试格式错误的ID在任何数据库调用之前被拒绝
func TestGetPostInvalidID(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	_, err := service.GetPost(context.Background(), "not-an-id", "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	postRepo.AssertNotCalled(t, "FindByID")
}

// TestToggleLikeAdd 测试未点赞时切换会添加点赞
func TestToggleLikeAdd(t *testing.T) {
	service, postRepo, commentRepo, userRepo := newPostService()

	postID := primitive.NewObjectID()
	authorID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	post := &model.Post{ID: postID, Title: "t", AuthorID: authorID.Hex(), Likes: 0}
	liked := &model.Post{ID: postID, Title: "t", AuthorID: authorID.Hex(), Likes: 1, LikedBy: []string{userID}}

	postRepo.On("FindByID", mock.Anything, postID).Return(post, nil).Once()
	postRepo.On("AddLike", mock.Anything, postID, userID).Return(nil).Once()
	postRepo.On("FindByID", mock.Anything, postID).Return(liked, nil).Once()
	commentRepo.On("CountByPost", mock.Anything, postID).Return(int64(0), nil)
	userRepo.On("FindByID", mock.Anything, authorID).Return(&model.User{ID: authorID, Username: "author"}, nil)

	view, err := service.ToggleLike(context.Background(), postID.Hex(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 1, view.Likes)
	assert.True(t, view.IsLiked)
	postRepo.AssertNotCalled(t, "RemoveLike")
	postRepo.AssertExpectations(t)
}

// TestToggleLikeRemove 测试已点赞时切换会取消点赞
func TestToggleLikeRemove(t *testing.T) {
	service, postRepo, commentRepo, userRepo := newPostService()

	postID := primitive.NewObjectID()
	authorID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	post := &model.Post{ID: postID, AuthorID: authorID.Hex(), Likes: 1, LikedBy: []string{userID}}
	unliked := &model.Post{ID: postID, AuthorID: authorID.Hex(), Likes: 0, LikedBy: []string{}}

	postRepo.On("FindByID", mock.Anything, postID).Return(post, nil).Once()
	postRepo.On("RemoveLike", mock.Anything, postID, userID).Return(nil).Once()
	postRepo.On("FindByID", mock.Anything, postID).Return(unliked, nil).Once()
	commentRepo.On("CountByPost", mock.Anything, postID).Return(int64(0), nil)
	userRepo.On("FindByID", mock.Anything, authorID).Return(&model.User{ID: authorID, Username: "author"}, nil)

	view, err := service.ToggleLike(context.Background(), postID.Hex(), userID)
	assert.NoError(t, err)
	assert.Equal(t, 0, view.Likes)
	assert.False(t, view.IsLiked)
	postRepo.AssertNotCalled(t, "AddLike")
}

// TestUpdatePostOwnership 测试非作者不能修改帖子
func TestUpdatePostOwnership(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	postID := primitive.NewObjectID()
	postRepo.On("FindByID", mock.Anything, postID).Return(&model.Post{
		ID:       postID,
		AuthorID: primitive.NewObjectID().Hex(),
	}, nil)

	title := "new title"
	_, err := service.UpdatePost(context.Background(), postID.Hex(),
		primitive.NewObjectID().Hex(), &model.PostUpdate{Title: &title})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	postRepo.AssertNotCalled(t, "Update")
}

// TestUpdatePostNoFields 测试没有任何字段的更新被拒绝
func TestUpdatePostNoFields(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	postID := primitive.NewObjectID()
	authorID := primitive.NewObjectID().Hex()
	postRepo.On("FindByID", mock.Anything, postID).Return(&model.Post{ID: postID, AuthorID: authorID}, nil)

	_, err := service.UpdatePost(context.Background(), postID.Hex(), authorID, &model.PostUpdate{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	postRepo.AssertNotCalled(t, "Update")
}

// TestDeletePostNotFound 测试删除不存在的帖子返回404错误
func TestDeletePostNotFound(t *testing.T) {
	service, postRepo, _, _ := newPostService()

	postID := primitive.NewObjectID()
	postRepo.On("FindByID", mock.Anything, postID).Return(nil, nil)

	err := service.DeletePost(context.Background(), postID.Hex(), primitive.NewObjectID().Hex())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPostNotFound))
	postRepo.AssertNotCalled(t, "Delete")
}

// TestGetUserPostsClampsLimit 测试用户帖子列表的条数钳制
func TestGetUserPostsClampsLimit(t *testing.T) {
	service, postRepo, _, userRepo := newPostService()

	userID := primitive.NewObjectID()
	userRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Username: "u"}, nil)
	postRepo.On("ListEnriched", mock.Anything, mock.MatchedBy(func(opts interfaces.ListPostsOptions) bool {
		return opts.Limit == 100 && assert.ObjectsAreEqual([]string{userID.Hex()}, opts.AuthorIn)
	})).Return(makeViews(0), nil)

	_, err := service.GetUserPosts(context.Background(), userID.Hex(), "", 9999)
	assert.NoError(t, err)
	postRepo.AssertExpectations(t)
}
