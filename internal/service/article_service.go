package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Nurkic4/www/internal/config"
	"github.com/Nurkic4/www/internal/entity"
	"github.com/Nurkic4/www/internal/model"
	"github.com/Nurkic4/www/internal/storage"
	"github.com/Nurkic4/www/internal/utils"
)

// ArticleService 文章服务，封装创作、审核流转与图片处理的业务逻辑
type ArticleService struct {
	repo    model.Repository
	storage storage.Storage

	offloadImages bool
	publicBaseURL string
}

// NewArticleService 创建文章服务实例
func NewArticleService(repo model.Repository, store storage.Storage, cfg config.Config) *ArticleService {
	return &ArticleService{
		repo:          repo,
		storage:       store,
		offloadImages: cfg.StorageOffloadImages,
		publicBaseURL: cfg.StoragePublicBaseURL,
	}
}

// Create 创建文章。未显式指定状态时默认 DRAFT。
func (s *ArticleService) Create(ctx context.Context, author *entity.DbUser, req entity.ArticleCreateRequest) (*entity.DbArticle, error) {
	if author == nil || author.ID == 0 {
		return nil, ErrForbidden
	}

	status := entity.StatusDraft
	if strings.TrimSpace(req.Status) != "" {
		parsed, ok := entity.ParseArticleStatus(req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: 未知状态 %s", ErrBadRequest, req.Status)
		}
		status = parsed
	}

	article := &entity.DbArticle{
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		AuthorID:   author.ID,
		Status:     status,
	}

	images := s.buildImages(ctx, req.Images)

	if err := s.repo.CreateArticle(ctx, article, images); err != nil {
		return nil, err
	}
	return article, nil
}

// Update 更新文章，仅作者可改。Images 非 nil 时整组替换插图。
func (s *ArticleService) Update(ctx context.Context, actor *entity.DbUser, id uint, req entity.ArticleUpdateRequest) error {
	article, err := s.loadOwnedArticle(ctx, actor, id)
	if err != nil {
		return err
	}

	var updates entity.ArticleUpdates
	updates.Title = req.Title
	updates.Content = req.Content
	updates.CoverImage = req.CoverImage
	if req.Status != nil {
		parsed, ok := entity.ParseArticleStatus(*req.Status)
		if !ok {
			return fmt.Errorf("%w: 未知状态 %s", ErrBadRequest, *req.Status)
		}
		updates.Status = &parsed
	}

	var replacement *[]entity.DbArticleImage
	if req.Images != nil {
		images := s.buildImages(ctx, *req.Images)
		replacement = &images
	}

	if updates.IsEmpty() && replacement == nil {
		return nil
	}

	if err := s.repo.UpdateArticleWithImages(ctx, article.ID, updates, replacement); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete 删除文章及其插图、审核记录和点赞，仅作者可删。
func (s *ArticleService) Delete(ctx context.Context, actor *entity.DbUser, id uint) error {
	article, err := s.loadOwnedArticle(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteArticle(ctx, article.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Submit 作者将草稿提交审核，DRAFT → PENDING。
func (s *ArticleService) Submit(ctx context.Context, actor *entity.DbUser, id uint) error {
	article, err := s.loadOwnedArticle(ctx, actor, id)
	if err != nil {
		return err
	}

	ok, err := s.repo.TransitionArticleStatus(ctx, article.ID, entity.StatusDraft, entity.StatusPending)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !ok {
		return fmt.Errorf("%w: 仅草稿可提交审核", ErrInvalidState)
	}
	return nil
}

// Review 管理员审核待审文章。通过则记录发布时间，驳回则记录驳回意见；
// 审核记录与状态变更同事务提交。
func (s *ArticleService) Review(ctx context.Context, reviewer *entity.DbUser, id uint, req entity.ArticleReviewRequest) error {
	if !reviewer.IsAdmin() {
		return ErrForbidden
	}

	action, ok := entity.ParseReviewAction(req.Action)
	if !ok {
		return fmt.Errorf("%w: 未知审核动作 %s", ErrBadRequest, req.Action)
	}

	if _, err := s.getArticle(ctx, id); err != nil {
		return err
	}

	var updates entity.ArticleUpdates
	switch action {
	case entity.ActionApprove:
		approved := entity.StatusApproved
		now := time.Now()
		updates.Status = &approved
		updates.PublishedAt = &now
	case entity.ActionReject:
		rejected := entity.StatusRejected
		updates.Status = &rejected
		updates.ReviewComment = &req.Comment
	}

	review := &entity.DbArticleReview{
		ArticleID:  id,
		ReviewerID: reviewer.ID,
		Action:     action,
		Comment:    req.Comment,
	}

	if err := s.repo.ReviewArticle(ctx, review, updates); err != nil {
		// 文章存在但已不处于待审状态
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 仅待审文章可审核", ErrInvalidState)
		}
		return err
	}
	return nil
}

// IncrementView 浏览计数加一，无需登录，不去重。
func (s *ArticleService) IncrementView(ctx context.Context, id uint) error {
	if err := s.repo.IncrementArticleView(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// List 分页查询文章，填充作者姓名/头像投影。
func (s *ArticleService) List(ctx context.Context, query *entity.ArticleQuery, viewer *entity.DbUser) ([]entity.DbArticle, int64, error) {
	if query == nil {
		query = &entity.ArticleQuery{}
	}
	query.Normalize()

	if strings.TrimSpace(query.Status) != "" {
		parsed, ok := entity.ParseArticleStatus(query.Status)
		if !ok {
			return nil, 0, fmt.Errorf("%w: 未知状态 %s", ErrBadRequest, query.Status)
		}
		query.Status = string(parsed)
	}

	articles, total, err := s.repo.ListArticles(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	s.fillAuthorProjection(ctx, articles)
	if viewer != nil && viewer.ID != 0 {
		for i := range articles {
			liked, err := s.repo.IsArticleLiked(ctx, articles[i].ID, viewer.ID)
			if err != nil {
				logrus.WithError(err).WithField("article_id", articles[i].ID).Warn("check liked failed")
				continue
			}
			articles[i].IsLiked = liked
		}
	}

	return articles, total, nil
}

// GetDetail 查询文章详情：插图、作者投影，以及当前用户是否点过赞。
func (s *ArticleService) GetDetail(ctx context.Context, id uint, viewer *entity.DbUser) (*entity.DbArticle, error) {
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.repo.ListArticleImages(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	article.Images = images

	if author, err := s.repo.GetUserByID(ctx, article.AuthorID); err == nil {
		article.AuthorName = author.Username
		article.AuthorAvatar = author.Avatar
	}

	if viewer != nil && viewer.ID != 0 {
		liked, err := s.repo.IsArticleLiked(ctx, article.ID, viewer.ID)
		if err != nil {
			return nil, err
		}
		article.IsLiked = liked
	}

	return article, nil
}

// ReviewHistory 返回某篇文章的全部审核记录，附审核人姓名。
func (s *ArticleService) ReviewHistory(ctx context.Context, articleID uint) ([]entity.DbArticleReview, error) {
	if _, err := s.getArticle(ctx, articleID); err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListArticleReviews(ctx, articleID)
	if err != nil {
		return nil, err
	}
	s.fillReviewerProjection(ctx, reviews)
	return reviews, nil
}

// ReviewerHistory 返回某审核人做出的全部审核决定。
func (s *ArticleService) ReviewerHistory(ctx context.Context, reviewerID uint) ([]entity.DbArticleReview, error) {
	reviews, err := s.repo.ListReviewerReviews(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	s.fillReviewerProjection(ctx, reviews)
	return reviews, nil
}

// loadOwnedArticle 加载文章并校验归属
func (s *ArticleService) loadOwnedArticle(ctx context.Context, actor *entity.DbUser, id uint) (*entity.DbArticle, error) {
	if actor == nil || actor.ID == 0 {
		return nil, ErrForbidden
	}
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != actor.ID {
		return nil, ErrForbidden
	}
	return article, nil
}

func (s *ArticleService) getArticle(ctx context.Context, id uint) (*entity.DbArticle, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	article, err := s.repo.GetArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return article, nil
}

// fillAuthorProjection 批量填充作者姓名与头像，同一作者只查一次
func (s *ArticleService) fillAuthorProjection(ctx context.Context, articles []entity.DbArticle) {
	authors := make(map[uint]*entity.DbUser)
	for i := range articles {
		authorID := articles[i].AuthorID
		author, seen := authors[authorID]
		if !seen {
			loaded, err := s.repo.GetUserByID(ctx, authorID)
			if err != nil {
				logrus.WithError(err).WithField("author_id", authorID).Warn("load article author failed")
				authors[authorID] = nil
				continue
			}
			author = loaded
			authors[authorID] = loaded
		}
		if author != nil {
			articles[i].AuthorName = author.Username
			articles[i].AuthorAvatar = author.Avatar
		}
	}
}

func (s *ArticleService) fillReviewerProjection(ctx context.Context, reviews []entity.DbArticleReview) {
	reviewers := make(map[uint]*entity.DbUser)
	for i := range reviews {
		reviewerID := reviews[i].ReviewerID
		reviewer, seen := reviewers[reviewerID]
		if !seen {
			loaded, err := s.repo.GetUserByID(ctx, reviewerID)
			if err != nil {
				logrus.WithError(err).WithField("reviewer_id", reviewerID).Warn("load reviewer failed")
				reviewers[reviewerID] = nil
				continue
			}
			reviewer = loaded
			reviewers[reviewerID] = loaded
		}
		if reviewer != nil {
			reviews[i].ReviewerName = reviewer.Username
		}
	}
}

// buildImages 将请求中的插图转换为存储实体。
// 开启 offload 时内联 base64 经存储后端落盘，库里只存访问 URL。
func (s *ArticleService) buildImages(ctx context.Context, reqs []entity.ArticleImageRequest) []entity.DbArticleImage {
	images := make([]entity.DbArticleImage, 0, len(reqs))
	for idx, req := range reqs {
		sortOrder := idx
		if req.SortOrder != nil {
			sortOrder = *req.SortOrder
		}

		image := entity.DbArticleImage{
			ImageName: req.ImageName,
			SortOrder: sortOrder,
		}

		payload := strings.TrimSpace(req.ImageData)
		switch {
		case payload == "":
			// 无内容的插图占位，保留名称与顺序
		case strings.HasPrefix(payload, "http://"), strings.HasPrefix(payload, "https://"):
			image.ImageURL = payload
		case s.offloadImages && s.storage != nil:
			url, err := s.offloadImage(ctx, payload)
			if err != nil {
				logrus.WithError(err).WithField("image_name", req.ImageName).Warn("offload article image failed, keeping inline payload")
				image.ImageData = payload
			} else {
				image.ImageURL = url
			}
		default:
			image.ImageData = payload
		}

		images = append(images, image)
	}
	return images
}

func (s *ArticleService) offloadImage(ctx context.Context, payload string) (string, error) {
	data, ext, err := utils.DecodeMediaPayload(payload)
	if err != nil {
		data, ext, err = utils.DecodeMediaPayload(utils.EnsureDataURL(payload))
	}
	if err != nil {
		return "", err
	}

	saveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	key, err := s.storage.Save(saveCtx, data, storage.SaveOptions{
		Category:  storage.CategoryArticleImage,
		Extension: ext,
	})
	if err != nil {
		return "", err
	}
	return storage.PublicURL(s.publicBaseURL, key), nil
}
