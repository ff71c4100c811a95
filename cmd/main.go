package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/OneVth/prj-board/config"
	"github.com/OneVth/prj-board/internal/api/auth"
	"github.com/OneVth/prj-board/internal/api/comment"
	"github.com/OneVth/prj-board/internal/api/post"
	"github.com/OneVth/prj-board/internal/api/upload"
	"github.com/OneVth/prj-board/internal/api/user"
	"github.com/OneVth/prj-board/internal/middleware"
	mongorepo "github.com/OneVth/prj-board/internal/repository/mongo"
	"github.com/OneVth/prj-board/internal/service"
	"github.com/OneVth/prj-board/internal/storage"
	"github.com/OneVth/prj-board/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 连接数据库
	client, err := mongorepo.Connect(context.Background(), config.AppConfig.MongoURI)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			util.Logger.Error("断开数据库连接失败", zap.Error(err))
		}
	}()

	db := client.Database(config.AppConfig.DatabaseName)

	// 创建唯一约束和全文搜索索引
	if err := mongorepo.EnsureIndexes(context.Background(), db); err != nil {
		util.Logger.Fatal("创建数据库索引失败", zap.Error(err))
	}

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("password", util.ValidatePassword)
	}

	// 初始化本地存储
	localStorage, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
	if err != nil {
		util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
	}

	// 初始化存储库、服务和处理器
	userRepo := mongorepo.NewUserRepository(db)
	postRepo := mongorepo.NewPostRepository(db)
	commentRepo := mongorepo.NewCommentRepository(db)

	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo, commentRepo, userRepo)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo)

	authHandler := auth.NewAuthHandler(userService)
	postHandler := post.NewPostHandler(postService)
	commentHandler := comment.NewCommentHandler(commentService)
	userHandler := user.NewUserHandler(userService, postService, commentService)
	uploadHandler := upload.NewUploadHandler(localStorage)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	// 静态文件的CORS处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 配置静态文件服务
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Board API is running"})
	})

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 认证相关路由
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", middleware.AuthMiddleware(), authHandler.Me)

		// 帖子相关路由
		api.GET("/posts", middleware.OptionalAuthMiddleware(), postHandler.ListPosts)
		api.POST("/posts", middleware.AuthMiddleware(), postHandler.CreatePost)
		api.GET("/posts/following", middleware.AuthMiddleware(), postHandler.ListFollowingPosts)
		api.GET("/posts/:id", middleware.OptionalAuthMiddleware(), postHandler.GetPost)
		api.PUT("/posts/:id", middleware.AuthMiddleware(), postHandler.UpdatePost)
		api.DELETE("/posts/:id", middleware.AuthMiddleware(), postHandler.DeletePost)
		api.PATCH("/posts/:id/like", middleware.AuthMiddleware(), postHandler.LikePost)

		// 评论相关路由
		api.GET("/posts/:id/comments", middleware.OptionalAuthMiddleware(), commentHandler.ListComments)
		api.POST("/posts/:id/comments", middleware.AuthMiddleware(), commentHandler.CreateComment)
		api.DELETE("/comments/:id", middleware.AuthMiddleware(), commentHandler.DeleteComment)
		api.PATCH("/comments/:id/like", middleware.AuthMiddleware(), commentHandler.LikeComment)

		// 用户相关路由
		api.GET("/users/:id", middleware.OptionalAuthMiddleware(), userHandler.GetProfile)
		api.GET("/users/:id/posts", middleware.OptionalAuthMiddleware(), userHandler.GetUserPosts)
		api.GET("/users/:id/comments", middleware.OptionalAuthMiddleware(), userHandler.GetUserComments)
		api.POST("/users/:id/follow", middleware.AuthMiddleware(), userHandler.FollowUser)

		// 图片上传
		api.POST("/upload", middleware.AuthMiddleware(), uploadHandler.UploadImage)
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":" + config.AppConfig.Port,
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("port", config.AppConfig.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}
