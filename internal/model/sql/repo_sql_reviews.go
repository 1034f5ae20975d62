package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nurkic4/www/internal/entity"
)

// TransitionArticleStatus performs a guarded status change. It returns false
// when the article exists but is not in the expected source state, so the
// caller can distinguish a stale transition from a missing article.
func (r *GormRepository) TransitionArticleStatus(ctx context.Context, id uint, from, to entity.ArticleStatus) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return false, fmt.Errorf("invalid article id")
	}

	result := r.db.WithContext(ctx).Model(&entity.DbArticle{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbArticle{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

// ReviewArticle applies a review decision: the article update (status plus
// published_at or review_comment) and the immutable audit record commit in
// the same transaction. The article must still be PENDING at commit time.
func (r *GormRepository) ReviewArticle(ctx context.Context, review *entity.DbArticleReview, updates entity.ArticleUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if review == nil || review.ArticleID == 0 {
		return fmt.Errorf("invalid review")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := updates.ToMap()
		result := tx.Model(&entity.DbArticle{}).
			Where("id = ? AND status = ?", review.ArticleID, entity.StatusPending).
			Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(review).Error
	})
}

// ListArticleReviews returns the audit trail for an article, newest first.
func (r *GormRepository) ListArticleReviews(ctx context.Context, articleID uint) ([]entity.DbArticleReview, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if articleID == 0 {
		return nil, fmt.Errorf("invalid article id")
	}
	var reviews []entity.DbArticleReview
	if err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListReviewerReviews returns all decisions made by one reviewer, newest first.
func (r *GormRepository) ListReviewerReviews(ctx context.Context, reviewerID uint) ([]entity.DbArticleReview, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if reviewerID == 0 {
		return nil, fmt.Errorf("invalid reviewer id")
	}
	var reviews []entity.DbArticleReview
	if err := r.db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
