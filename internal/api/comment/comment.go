package comment

import (
	"net/http"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/middleware"
	"github.com/OneVth/prj-board/internal/service"
	"github.com/gin-gonic/gin"
)

// CommentHandler 处理评论相关的HTTP请求
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler 创建一个新的 CommentHandler 实例
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService}
}

// CreateComment 在帖子下创建评论（需要认证）
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var createData struct {
		Content string `json:"content" binding:"required,min=1,max=500"`
	}

	if err := c.ShouldBindJSON(&createData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的评论数据", err))
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c), createData.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments 返回帖子的评论列表（时间升序）
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.commentService.ListComments(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteComment 删除评论（仅作者本人）
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.commentService.DeleteComment(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// LikeComment 切换评论的点赞状态（需要认证）
func (h *CommentHandler) LikeComment(c *gin.Context) {
	comment, err := h.commentService.ToggleLike(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
