package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Nurkic4/www/internal/api"
	"github.com/Nurkic4/www/internal/config"
	"github.com/Nurkic4/www/internal/model"
	"github.com/Nurkic4/www/internal/storage"
)

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	// 用户
	userGroup := apiGroup.Group("/user")
	userGroup.POST("/register", httpHandler.Register)
	userGroup.POST("/login", httpHandler.Login)

	userAuthed := userGroup.Group("")
	userAuthed.Use(httpHandler.AuthMiddleware())
	userAuthed.GET("/info", httpHandler.Info)
	userAuthed.POST("/avatar", httpHandler.UpdateAvatar)
	userAuthed.POST("/updateAvatar", httpHandler.UpdateAvatar)
	userAuthed.POST("/update", httpHandler.UpdateProfile)
	userAuthed.POST("/changePwd", httpHandler.ChangePassword)
	userAuthed.GET("/likes", httpHandler.MyLikedArticles)
	userAuthed.GET("/reviews", httpHandler.RequireAdmin(), httpHandler.MyReviews)

	// 文章公开接口：详情和列表可匿名访问，带 token 时附带 isLiked
	articleGroup := apiGroup.Group("/article")
	articleGroup.GET("/list", httpHandler.OptionalAuthMiddleware(), httpHandler.ListArticles)
	articleGroup.GET("/:id", httpHandler.OptionalAuthMiddleware(), httpHandler.GetArticle)
	articleGroup.POST("/:id/view", httpHandler.IncrementArticleView)

	articleAuthed := articleGroup.Group("")
	articleAuthed.Use(httpHandler.AuthMiddleware())
	articleAuthed.POST("/create", httpHandler.CreateArticle)
	articleAuthed.GET("/my", httpHandler.MyArticles)
	articleAuthed.GET("/pending", httpHandler.RequireAdmin(), httpHandler.PendingArticles)
	articleAuthed.PUT("/:id", httpHandler.UpdateArticle)
	articleAuthed.DELETE("/:id", httpHandler.DeleteArticle)
	articleAuthed.POST("/:id/submit", httpHandler.SubmitArticle)
	articleAuthed.POST("/:id/review", httpHandler.ReviewArticle)
	articleAuthed.POST("/:id/like", httpHandler.LikeArticle)
	articleAuthed.DELETE("/:id/like", httpHandler.UnlikeArticle)
	articleAuthed.GET("/:id/reviews", httpHandler.ArticleReviews)
	articleAuthed.GET("/:id/likes", httpHandler.ArticleLikers)

	// 网络诊断工具
	apiGroup.GET("/proxy", httpHandler.ProxyRequest)
	apiGroup.GET("/speedtest/download", httpHandler.SpeedtestDownload)
	apiGroup.POST("/speedtest/upload", httpHandler.SpeedtestUpload)
	apiGroup.GET("/public-ip", httpHandler.PublicIP)
	apiGroup.GET("/dns-info", httpHandler.DNSInfo)
	apiGroup.GET("/port-test", httpHandler.PortTest)

	// 星火大模型代理
	apiGroup.POST("/sparkai", httpHandler.SparkAIProxy)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  900 * time.Second,
		WriteTimeout: 900 * time.Second,
		IdleTimeout:  1200 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
