package post

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/middleware"
	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/service"
	"github.com/OneVth/prj-board/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PostHandler 处理帖子和信息流相关的HTTP请求
type PostHandler struct {
	postService *service.PostService
}

// NewPostHandler 创建一个新的 PostHandler 实例
func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService}
}

// ListPosts 返回分页信息流，支持搜索和三种排序
func (h *PostHandler) ListPosts(c *gin.Context) {
	h.listPosts(c, false)
}

// ListFollowingPosts 返回访问者关注的作者的信息流（需要认证）
func (h *PostHandler) ListFollowingPosts(c *gin.Context) {
	h.listPosts(c, true)
}

func (h *PostHandler) listPosts(c *gin.Context, followingOnly bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.postService.ListPosts(c.Request.Context(), service.ListPostsParams{
		Page:          page,
		Limit:         limit,
		Query:         c.Query("q"),
		Sort:          c.DefaultQuery("sort", "date"),
		FollowingOnly: followingOnly,
		ViewerID:      middleware.CurrentUserID(c),
	})
	if err != nil {
		util.Logger.Error("获取帖子列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPost 返回单个帖子
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost 创建帖子（需要认证）
func (h *PostHandler) CreatePost(c *gin.Context) {
	var createData struct {
		Title   string `json:"title" binding:"required,min=1,max=200"`
		Content string `json:"content" binding:"required,min=1"`
		Image   string `json:"image"`
	}

	if err := c.ShouldBindJSON(&createData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子数据", err))
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(),
		middleware.CurrentUserID(c), createData.Title, createData.Content, createData.Image)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost 更新帖子（仅作者本人）
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var upd model.PostUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的帖子数据", err))
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(),
		c.Param("id"), middleware.CurrentUserID(c), &upd)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost 删除帖子（仅作者本人）
func (h *PostHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if err := h.postService.DeletePost(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Post with id %s deleted successfully", id),
	})
}

// LikePost 切换帖子的点赞状态（需要认证）
func (h *PostHandler) LikePost(c *gin.Context) {
	post, err := h.postService.ToggleLike(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
