package service

import (
	"context"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"github.com/OneVth/prj-board/internal/repository/interfaces"
	"github.com/OneVth/prj-board/internal/util"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize 每页帖子数的缺省值
	DefaultPageSize = 10
	// MaxPageSize 每页帖子数的上限，超出时静默截断而不报错
	MaxPageSize = 100
	// DefaultUserPostLimit 用户主页帖子/评论列表的缺省条数
	DefaultUserPostLimit = 20
)

// PostService 处理帖子和信息流相关的业务逻辑
type PostService struct {
	postRepo    interfaces.PostRepository
	commentRepo interfaces.CommentRepository
	userRepo    interfaces.UserRepository
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(postRepo interfaces.PostRepository, commentRepo interfaces.CommentRepository, userRepo interfaces.UserRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

// ListPostsParams 描述一次信息流查询
// 非法的分页参数一律钳制而不拒绝：page < 1 取 1，limit < 1 取缺省值，
// limit > 100 截断为 100
type ListPostsParams struct {
	Page  int
	Limit int
	Query string
	Sort  string // date | likes | comments，未知值回退为 date
	// FollowingOnly 为 true 时只返回访问者关注的作者的帖子，要求已登录
	FollowingOnly bool
	ViewerID      string
}

// ListPosts 组装分页信息流
// 整页的数据库往返次数是常数：一次计数加一次聚合，与页大小无关
func (s *PostService) ListPosts(ctx context.Context, p ListPostsParams) (*projection.PostListView, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}

	opts := interfaces.ListPostsOptions{
		Query:    p.Query,
		Sort:     normalizeSort(p.Sort),
		Skip:     int64(p.Page-1) * int64(p.Limit),
		Limit:    int64(p.Limit),
		ViewerID: p.ViewerID,
	}

	if p.FollowingOnly {
		viewerOID, err := util.ParseObjectID(p.ViewerID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "需要认证", err)
		}
		viewer, err := s.userRepo.FindByID(ctx, viewerOID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
		}
		if viewer == nil {
			return nil, errors.New(errors.ErrUserNotFound, "User not found")
		}
		// 关注列表为空时直接返回空页，不查询帖子集合
		if len(viewer.Following) == 0 {
			return emptyPage(p.Page), nil
		}
		opts.AuthorIn = viewer.Following
	}

	total, err := s.postRepo.Count(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计帖子失败", err)
	}

	posts, err := s.postRepo.ListEnriched(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}

	return &projection.PostListView{
		Posts:       posts,
		TotalPosts:  total,
		CurrentPage: p.Page,
		TotalPages:  (total + int64(p.Limit) - 1) / int64(p.Limit),
	}, nil
}

// GetPost 返回补充了评论数、作者和点赞状态的单个帖子
func (s *PostService) GetPost(ctx context.Context, id, viewerID string) (*projection.PostView, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrichPost(ctx, post, viewerID)
}

// CreatePost 创建新帖子，image 为空时不写入该字段
func (s *PostService) CreatePost(ctx context.Context, authorID, title, content, image string) (*projection.PostView, error) {
	post := &model.Post{
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: model.NowISO(),
		Likes:     0,
		Image:     image,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建帖子失败", err)
	}
	return s.enrichPost(ctx, post, authorID)
}

// UpdatePost 更新帖子，只有作者本人可以修改
func (s *PostService) UpdatePost(ctx context.Context, id, viewerID string, upd *model.PostUpdate) (*projection.PostView, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != viewerID {
		return nil, errors.New(errors.ErrForbidden, "You can only edit your own posts")
	}

	fields := map[string]interface{}{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.Image != nil {
		fields["image"] = *upd.Image
	}
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrBadRequest, "No fields to update")
	}

	if err := s.postRepo.Update(ctx, post.ID, fields); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新帖子失败", err)
	}

	updated, err := s.postRepo.FindByID(ctx, post.ID)
	if err != nil || updated == nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}
	return s.enrichPost(ctx, updated, viewerID)
}

// DeletePost 删除帖子，只有作者本人可以删除；评论不做级联删除
func (s *PostService) DeletePost(ctx context.Context, id, viewerID string) error {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != viewerID {
		return errors.New(errors.ErrForbidden, "You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除帖子失败", err)
	}
	return nil
}

// ToggleLike 切换点赞状态：已点赞则取消，未点赞则添加
// 集合与计数器的变更合并为一次原子更新；连按两次回到原状态
// 自己给自己的帖子点赞是允许的
func (s *PostService) ToggleLike(ctx context.Context, id, userID string) (*projection.PostView, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.IsLikedBy(userID) {
		err = s.postRepo.RemoveLike(ctx, post.ID, userID)
	} else {
		err = s.postRepo.AddLike(ctx, post.ID, userID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新点赞失败", err)
	}

	updated, err := s.postRepo.FindByID(ctx, post.ID)
	if err != nil || updated == nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}

	util.Logger.Info("点赞状态已切换",
		zap.String("post_id", id),
		zap.String("user_id", userID),
		zap.Int("likes", updated.Likes))
	return s.enrichPost(ctx, updated, userID)
}

// GetUserPosts 返回某用户的帖子（最新在前），limit 钳制到 1..100
func (s *PostService) GetUserPosts(ctx context.Context, userID, viewerID string, limit int) ([]*projection.PostView, error) {
	userOID, err := util.ParseObjectID(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}
	user, err := s.userRepo.FindByID(ctx, userOID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "User not found")
	}

	if limit < 1 {
		limit = DefaultUserPostLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return s.postRepo.ListEnriched(ctx, interfaces.ListPostsOptions{
		Sort:     "date",
		Limit:    int64(limit),
		AuthorIn: []string{userID},
		ViewerID: viewerID,
	})
}

// findPost 解析ID并查找帖子，格式错误的ID在任何数据库调用之前被拒绝
func (s *PostService) findPost(ctx context.Context, id string) (*model.Post, error) {
	oid, err := util.ParseObjectID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}
	post, err := s.postRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post with id "+id+" not found")
	}
	return post, nil
}

// enrichPost 为单个帖子补充评论数和作者信息，额外往返次数是常数
func (s *PostService) enrichPost(ctx context.Context, post *model.Post, viewerID string) (*projection.PostView, error) {
	commentCount, err := s.commentRepo.CountByPost(ctx, post.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "统计评论失败", err)
	}

	author := s.resolveAuthor(ctx, post.AuthorID)
	return projection.FormatPost(post, commentCount, author, viewerID), nil
}

// resolveAuthor 查找作者，找不到时返回 nil（投影层回退为 Unknown）
func (s *PostService) resolveAuthor(ctx context.Context, authorID string) *model.User {
	if authorID == "" {
		return nil
	}
	oid, err := util.ParseObjectID(authorID)
	if err != nil {
		return nil
	}
	author, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		util.Logger.Warn("查询作者失败", zap.Error(err), zap.String("author_id", authorID))
		return nil
	}
	return author
}

func normalizeSort(sort string) string {
	switch sort {
	case "likes", "comments":
		return sort
	default:
		return "date"
	}
}

func emptyPage(page int) *projection.PostListView {
	return &projection.PostListView{
		Posts:       make([]*projection.PostView, 0),
		TotalPosts:  0,
		CurrentPage: page,
		TotalPages:  0,
	}
}
