package upload

import (
	"net/http"

	"github.com/OneVth/prj-board/config"
	"github.com/OneVth/prj-board/internal/errors"
	"github.com/OneVth/prj-board/internal/storage"
	"github.com/OneVth/prj-board/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadHandler 处理帖子配图上传，返回可写入 image 字段的URL
type UploadHandler struct {
	storage *storage.LocalStorage
}

// NewUploadHandler 创建一个新的 UploadHandler 实例
func NewUploadHandler(storage *storage.LocalStorage) *UploadHandler {
	return &UploadHandler{storage}
}

// UploadImage 保存上传的图片（需要认证）
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "缺少图片文件", err))
		return
	}

	path := "posts/" + util.GenerateUniqueFilename(file.Filename)
	if _, err := h.storage.UploadFile(file, path); err != nil {
		util.Logger.Error("图片上传失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "图片上传失败", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": h.storage.FileURL(config.AppConfig.BackendURL, path),
	})
}
