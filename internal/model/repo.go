package model

import (
	"context"

	"github.com/Nurkic4/www/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	GetUserByPhone(ctx context.Context, phone string) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)

	// 文章
	CreateArticle(ctx context.Context, article *entity.DbArticle, images []entity.DbArticleImage) error
	GetArticleByID(ctx context.Context, id uint) (*entity.DbArticle, error)
	ListArticles(ctx context.Context, params *entity.ArticleQuery) ([]entity.DbArticle, int64, error)
	UpdateArticle(ctx context.Context, id uint, updates entity.ArticleUpdates) error
	UpdateArticleWithImages(ctx context.Context, id uint, updates entity.ArticleUpdates, images *[]entity.DbArticleImage) error
	DeleteArticle(ctx context.Context, id uint) error
	IncrementArticleView(ctx context.Context, id uint) error
	ListArticleImages(ctx context.Context, articleID uint) ([]entity.DbArticleImage, error)

	// 审核
	TransitionArticleStatus(ctx context.Context, id uint, from, to entity.ArticleStatus) (bool, error)
	ReviewArticle(ctx context.Context, review *entity.DbArticleReview, updates entity.ArticleUpdates) error
	ListArticleReviews(ctx context.Context, articleID uint) ([]entity.DbArticleReview, error)
	ListReviewerReviews(ctx context.Context, reviewerID uint) ([]entity.DbArticleReview, error)

	// 点赞
	LikeArticle(ctx context.Context, articleID, userID uint) error
	UnlikeArticle(ctx context.Context, articleID, userID uint) error
	IsArticleLiked(ctx context.Context, articleID, userID uint) (bool, error)
	CountArticleLikes(ctx context.Context, articleID uint) (int64, error)
	ListArticleLikes(ctx context.Context, articleID uint) ([]entity.DbArticleLike, error)
	ListUserLikes(ctx context.Context, userID uint) ([]entity.DbArticleLike, error)
}
