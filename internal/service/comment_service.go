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

// CommentService 处理评论相关的业务逻辑
type CommentService struct {
	commentRepo interfaces.CommentRepository
	postRepo    interfaces.PostRepository
	userRepo    interfaces.UserRepository
}

// NewCommentService 创建一个新的 CommentService 实例
func NewCommentService(commentRepo interfaces.CommentRepository, postRepo interfaces.PostRepository, userRepo interfaces.UserRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// CreateComment 在帖子下创建评论，帖子必须存在
func (s *CommentService) CreateComment(ctx context.Context, postID, authorID, content string) (*projection.CommentView, error) {
	postOID, err := util.ParseObjectID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}
	post, err := s.postRepo.FindByID(ctx, postOID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post with id "+postID+" not found")
	}

	comment := &model.Comment{
		PostID:    postOID,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: model.NowISO(),
		Likes:     0,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "创建评论失败", err)
	}
	return s.enrichComment(ctx, comment, authorID), nil
}

// ListComments 返回帖子的全部评论（时间升序），作者名在一次聚合中连接得出
func (s *CommentService) ListComments(ctx context.Context, postID, viewerID string) ([]*projection.CommentView, error) {
	postOID, err := util.ParseObjectID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}
	post, err := s.postRepo.FindByID(ctx, postOID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "Post with id "+postID+" not found")
	}

	views, err := s.commentRepo.ListByPostEnriched(ctx, postOID, viewerID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询评论失败", err)
	}
	return views, nil
}

// DeleteComment 删除评论，只有作者本人可以删除
func (s *CommentService) DeleteComment(ctx context.Context, id, viewerID string) error {
	comment, err := s.findComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != viewerID {
		return errors.New(errors.ErrForbidden, "You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "删除评论失败", err)
	}
	return nil
}

// ToggleLike 切换评论的点赞状态，语义与帖子点赞一致
func (s *CommentService) ToggleLike(ctx context.Context, id, userID string) (*projection.CommentView, error) {
	comment, err := s.findComment(ctx, id)
	if err != nil {
		return nil, err
	}

	if comment.IsLikedBy(userID) {
		err = s.commentRepo.RemoveLike(ctx, comment.ID, userID)
	} else {
		err = s.commentRepo.AddLike(ctx, comment.ID, userID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "更新评论点赞失败", err)
	}

	updated, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil || updated == nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询评论失败", err)
	}

	util.Logger.Info("评论点赞状态已切换",
		zap.String("comment_id", id),
		zap.String("user_id", userID),
		zap.Int("likes", updated.Likes))
	return s.enrichComment(ctx, updated, userID), nil
}

// GetUserComments 返回某用户的评论（最新在前），limit 钳制到 1..100
func (s *CommentService) GetUserComments(ctx context.Context, userID, viewerID string, limit int) ([]*projection.CommentView, error) {
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

	comments, err := s.commentRepo.ListByAuthor(ctx, userID, int64(limit))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询评论失败", err)
	}

	// 同一作者的评论只需解析一次作者身份
	views := make([]*projection.CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, projection.FormatComment(comment, user, viewerID))
	}
	return views, nil
}

// findComment 解析ID并查找评论
func (s *CommentService) findComment(ctx context.Context, id string) (*model.Comment, error) {
	oid, err := util.ParseObjectID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, "Invalid ID format", err)
	}
	comment, err := s.commentRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询评论失败", err)
	}
	if comment == nil {
		return nil, errors.New(errors.ErrCommentNotFound, "Comment with id "+id+" not found")
	}
	return comment, nil
}

// enrichComment 为单条评论补充作者信息
func (s *CommentService) enrichComment(ctx context.Context, comment *model.Comment, viewerID string) *projection.CommentView {
	var author *model.User
	if oid, err := util.ParseObjectID(comment.AuthorID); err == nil {
		author, err = s.userRepo.FindByID(ctx, oid)
		if err != nil {
			util.Logger.Warn("查询评论作者失败", zap.Error(err), zap.String("author_id", comment.AuthorID))
			author = nil
		}
	}
	return projection.FormatComment(comment, author, viewerID)
}
