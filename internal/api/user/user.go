package user

import (
	"net/http"
	"strconv"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/middleware"
	"github.com/OneVth/prj-board/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 处理用户资料和关注相关的HTTP请求
type UserHandler struct {
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewUserHandler 创建一个新的 UserHandler 实例
func NewUserHandler(userService *service.UserService, postService *service.PostService, commentService *service.CommentService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		postService:    postService,
		commentService: commentService,
	}
}

// GetProfile 返回用户资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserPosts 返回用户发布的帖子列表
func (h *UserHandler) GetUserPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	posts, err := h.postService.GetUserPosts(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c), limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetUserComments 返回用户发布的评论列表
func (h *UserHandler) GetUserComments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	comments, err := h.commentService.GetUserComments(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c), limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// FollowUser 切换对目标用户的关注状态（需要认证）
func (h *UserHandler) FollowUser(c *gin.Context) {
	user, err := h.userService.ToggleFollow(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
