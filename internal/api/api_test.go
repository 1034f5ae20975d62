package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/Nurkic4/www/internal/config"
	"github.com/Nurkic4/www/internal/entity"
	sqlrepo "github.com/Nurkic4/www/internal/model/sql"
)

// newTestHandler 构建基于临时 SQLite 库的处理器与路由。
func newTestHandler(t *testing.T) (*HTTPHandler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.DbUser{},
		&entity.DbArticle{},
		&entity.DbArticleImage{},
		&entity.DbArticleReview{},
		&entity.DbArticleLike{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	cfg := config.Config{
		JWTSecret:            "test-secret",
		JWTIssuer:            "test",
		JWTExpirationMinutes: 60,
	}

	handler, err := NewHTTPHandler(cfg, sqlrepo.NewGormRepository(db), nil)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	r := gin.New()
	apiGroup := r.Group("/api")

	userGroup := apiGroup.Group("/user")
	userGroup.POST("/register", handler.Register)
	userGroup.POST("/login", handler.Login)

	userAuthed := userGroup.Group("")
	userAuthed.Use(handler.AuthMiddleware())
	userAuthed.GET("/info", handler.Info)
	userAuthed.POST("/update", handler.UpdateProfile)
	userAuthed.POST("/changePwd", handler.ChangePassword)
	userAuthed.GET("/likes", handler.MyLikedArticles)

	articleGroup := apiGroup.Group("/article")
	articleGroup.GET("/list", handler.OptionalAuthMiddleware(), handler.ListArticles)
	articleGroup.GET("/:id", handler.OptionalAuthMiddleware(), handler.GetArticle)
	articleGroup.POST("/:id/view", handler.IncrementArticleView)

	articleAuthed := articleGroup.Group("")
	articleAuthed.Use(handler.AuthMiddleware())
	articleAuthed.POST("/create", handler.CreateArticle)
	articleAuthed.GET("/my", handler.MyArticles)
	articleAuthed.GET("/pending", handler.RequireAdmin(), handler.PendingArticles)
	articleAuthed.PUT("/:id", handler.UpdateArticle)
	articleAuthed.DELETE("/:id", handler.DeleteArticle)
	articleAuthed.POST("/:id/submit", handler.SubmitArticle)
	articleAuthed.POST("/:id/review", handler.ReviewArticle)
	articleAuthed.POST("/:id/like", handler.LikeArticle)
	articleAuthed.DELETE("/:id/like", handler.UnlikeArticle)
	articleAuthed.GET("/:id/reviews", handler.ArticleReviews)
	articleAuthed.GET("/:id/likes", handler.ArticleLikers)

	return handler, r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

// registerUser 通过注册接口创建用户并返回 token。
func registerUser(t *testing.T, r *gin.Engine, username, userType string) (entity.AuthResponse, string) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/user/register", "", gin.H{
		"username": username,
		"password": "pass-" + username,
		"phone":    "138" + username,
		"email":    username + "@example.com",
		"userType": userType,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", username, w.Code, w.Body.String())
	}

	var resp entity.AuthResponse
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatalf("expected token for %s", username)
	}
	return resp, resp.Token
}

// createArticle 通过创建接口发布一篇草稿并返回其 ID。
func createArticle(t *testing.T, r *gin.Engine, token, title string) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/article/create", token, gin.H{
		"title":   title,
		"content": "正文 " + title,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create article failed with status %d: %s", w.Code, w.Body.String())
	}

	var resp entity.ArticleCreateResponse
	decodeBody(t, w, &resp)
	if resp.ID == 0 {
		t.Fatal("expected article id")
	}
	return resp.ID
}
