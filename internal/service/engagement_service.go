package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Nurkic4/www/internal/entity"
	"github.com/Nurkic4/www/internal/model"
)

// EngagementService 点赞服务
type EngagementService struct {
	repo model.Repository
}

// NewEngagementService 创建点赞服务实例
func NewEngagementService(repo model.Repository) *EngagementService {
	return &EngagementService{repo: repo}
}

// Like 点赞。重复点赞返回冲突，文章不存在返回 NotFound。
func (s *EngagementService) Like(ctx context.Context, user *entity.DbUser, articleID uint) error {
	if user == nil || user.ID == 0 {
		return ErrForbidden
	}
	if err := s.ensureArticle(ctx, articleID); err != nil {
		return err
	}

	if err := s.repo.LikeArticle(ctx, articleID, user.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Unlike 取消点赞，幂等：未点过赞也返回成功。
func (s *EngagementService) Unlike(ctx context.Context, user *entity.DbUser, articleID uint) error {
	if user == nil || user.ID == 0 {
		return ErrForbidden
	}
	if err := s.ensureArticle(ctx, articleID); err != nil {
		return err
	}
	return s.repo.UnlikeArticle(ctx, articleID, user.ID)
}

// IsLiked 查询用户是否点赞过该文章。
func (s *EngagementService) IsLiked(ctx context.Context, user *entity.DbUser, articleID uint) (bool, error) {
	if user == nil || user.ID == 0 {
		return false, nil
	}
	return s.repo.IsArticleLiked(ctx, articleID, user.ID)
}

// ArticleLikers 返回点赞过该文章的用户摘要，按点赞时间倒序。
func (s *EngagementService) ArticleLikers(ctx context.Context, articleID uint) ([]entity.UserSummary, error) {
	if err := s.ensureArticle(ctx, articleID); err != nil {
		return nil, err
	}

	likes, err := s.repo.ListArticleLikes(ctx, articleID)
	if err != nil {
		return nil, err
	}

	likers := make([]entity.UserSummary, 0, len(likes))
	for _, like := range likes {
		user, err := s.repo.GetUserByID(ctx, like.UserID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", like.UserID).Warn("load liker failed")
			continue
		}
		likers = append(likers, user.Summary())
	}
	return likers, nil
}

// UserLikedArticles 返回用户点赞过的文章，按点赞时间倒序。
func (s *EngagementService) UserLikedArticles(ctx context.Context, user *entity.DbUser) ([]entity.DbArticle, error) {
	if user == nil || user.ID == 0 {
		return nil, ErrForbidden
	}

	likes, err := s.repo.ListUserLikes(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	articles := make([]entity.DbArticle, 0, len(likes))
	for _, like := range likes {
		article, err := s.repo.GetArticleByID(ctx, like.ArticleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		article.IsLiked = true
		articles = append(articles, *article)
	}
	return articles, nil
}

func (s *EngagementService) ensureArticle(ctx context.Context, articleID uint) error {
	if articleID == 0 {
		return ErrNotFound
	}
	if _, err := s.repo.GetArticleByID(ctx, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
