package sql

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Nurkic4/www/internal/entity"
)

// CreateArticle persists an article together with its images in one transaction.
func (r *GormRepository) CreateArticle(ctx context.Context, article *entity.DbArticle, images []entity.DbArticleImage) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if article == nil {
		return fmt.Errorf("article is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(article).Error; err != nil {
			return err
		}
		for idx := range images {
			images[idx].ID = 0
			images[idx].ArticleID = article.ID
			if err := tx.Create(&images[idx]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetArticleByID loads an article by ID.
func (r *GormRepository) GetArticleByID(ctx context.Context, id uint) (*entity.DbArticle, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid article id")
	}
	var article entity.DbArticle
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// ListArticles returns paginated articles with optional status, author, and
// keyword filters. The keyword matches title OR content as a substring.
func (r *GormRepository) ListArticles(ctx context.Context, params *entity.ArticleQuery) ([]entity.DbArticle, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbArticle{})
	if params != nil {
		if trimmed := strings.TrimSpace(params.Status); trimmed != "" {
			query = query.Where("status = ?", strings.ToUpper(trimmed))
		}
		if params.AuthorID > 0 {
			query = query.Where("author_id = ?", params.AuthorID)
		}
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", kw, kw)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := 1
	pageSize := 10
	if params != nil {
		if params.Page > 0 {
			page = params.Page
		}
		if params.Size > 0 {
			pageSize = params.Size
		}
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var articles []entity.DbArticle
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&articles).Error; err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

// UpdateArticle applies the provided field updates to an article.
func (r *GormRepository) UpdateArticle(ctx context.Context, id uint, updates entity.ArticleUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid article id")
	}
	fields := updates.ToMap()
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&entity.DbArticle{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateArticleWithImages updates article fields and, when images is non-nil,
// atomically replaces the whole image set (delete-all then insert-all).
func (r *GormRepository) UpdateArticleWithImages(ctx context.Context, id uint, updates entity.ArticleUpdates, images *[]entity.DbArticleImage) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid article id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article entity.DbArticle
		if err := tx.First(&article, id).Error; err != nil {
			return err
		}

		if fields := updates.ToMap(); len(fields) > 0 {
			if err := tx.Model(&entity.DbArticle{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}

		if images == nil {
			return nil
		}

		if err := tx.Where("article_id = ?", id).Delete(&entity.DbArticleImage{}).Error; err != nil {
			return err
		}
		for idx := range *images {
			(*images)[idx].ID = 0
			(*images)[idx].ArticleID = id
			if err := tx.Create(&(*images)[idx]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteArticle removes an article and cascades to its images, reviews, and likes.
func (r *GormRepository) DeleteArticle(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid article id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&entity.DbArticleImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&entity.DbArticleReview{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&entity.DbArticleLike{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.DbArticle{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IncrementArticleView bumps the view counter by one via a row-level update.
func (r *GormRepository) IncrementArticleView(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid article id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbArticle{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListArticleImages returns an article's images ordered by sort order then id.
func (r *GormRepository) ListArticleImages(ctx context.Context, articleID uint) ([]entity.DbArticleImage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if articleID == 0 {
		return nil, fmt.Errorf("invalid article id")
	}
	var images []entity.DbArticleImage
	if err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("sort_order ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}
