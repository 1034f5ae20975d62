package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nurkic4/www/internal/entity"
)

// LikeArticle records a like and bumps the denormalised counter in one
// transaction. A duplicate pair returns gorm.ErrDuplicatedKey.
func (r *GormRepository) LikeArticle(ctx context.Context, articleID, userID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if articleID == 0 || userID == 0 {
		return fmt.Errorf("invalid like")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.DbArticleLike{}).
			Where("article_id = ? AND user_id = ?", articleID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}

		like := entity.DbArticleLike{ArticleID: articleID, UserID: userID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}

		result := tx.Model(&entity.DbArticle{}).
			Where("id = ?", articleID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UnlikeArticle removes a like. The counter only moves when a row was
// actually deleted, so repeated unlikes cannot drive it negative.
func (r *GormRepository) UnlikeArticle(ctx context.Context, articleID, userID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if articleID == 0 || userID == 0 {
		return fmt.Errorf("invalid like")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("article_id = ? AND user_id = ?", articleID, userID).
			Delete(&entity.DbArticleLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&entity.DbArticle{}).
			Where("id = ? AND like_count > 0", articleID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
}

// IsArticleLiked reports whether the user has liked the article.
func (r *GormRepository) IsArticleLiked(ctx context.Context, articleID, userID uint) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	if articleID == 0 || userID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbArticleLike{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountArticleLikes returns the number of like rows for an article.
func (r *GormRepository) CountArticleLikes(ctx context.Context, articleID uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbArticleLike{}).
		Where("article_id = ?", articleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListArticleLikes returns the like rows for an article, newest first.
func (r *GormRepository) ListArticleLikes(ctx context.Context, articleID uint) ([]entity.DbArticleLike, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if articleID == 0 {
		return nil, fmt.Errorf("invalid article id")
	}
	var likes []entity.DbArticleLike
	if err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at DESC, id DESC").
		Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// ListUserLikes returns the like rows created by a user, newest first.
func (r *GormRepository) ListUserLikes(ctx context.Context, userID uint) ([]entity.DbArticleLike, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var likes []entity.DbArticleLike
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}
