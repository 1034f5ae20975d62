package service

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/Nurkic4/www/internal/config"
	"github.com/Nurkic4/www/internal/entity"
	"github.com/Nurkic4/www/internal/model"
	sqlrepo "github.com/Nurkic4/www/internal/model/sql"
)

// newTestRepo 基于临时 SQLite 库构建仓库，表结构与生产一致。
func newTestRepo(t *testing.T) model.Repository {
	t.Helper()

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

	return sqlrepo.NewGormRepository(db)
}

func newTestArticleService(t *testing.T) (*ArticleService, model.Repository) {
	t.Helper()
	repo := newTestRepo(t)
	return NewArticleService(repo, nil, config.Config{}), repo
}

func seedUser(t *testing.T, repo model.Repository, username string, role entity.Role) *entity.DbUser {
	t.Helper()
	user := &entity.DbUser{
		Username:     username,
		PasswordHash: "hash",
		Phone:        "138" + username,
		Email:        username + "@example.com",
		Role:         role,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedArticle(t *testing.T, svc *ArticleService, author *entity.DbUser, title string) *entity.DbArticle {
	t.Helper()
	article, err := svc.Create(context.Background(), author, entity.ArticleCreateRequest{
		Title:   title,
		Content: "content of " + title,
	})
	if err != nil {
		t.Fatalf("failed to seed article %s: %v", title, err)
	}
	return article
}

func submitArticle(t *testing.T, svc *ArticleService, author *entity.DbUser, id uint) {
	t.Helper()
	if err := svc.Submit(context.Background(), author, id); err != nil {
		t.Fatalf("failed to submit article %d: %v", id, err)
	}
}
