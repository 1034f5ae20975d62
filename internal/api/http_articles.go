package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nurkic4/www/internal/entity"
)

// CreateArticle 创建文章，默认保存为草稿。
func (h *HTTPHandler) CreateArticle(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	var req entity.ArticleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	article, err := h.articleService.Create(ctx, user, req)
	if err != nil {
		WriteServiceError(c, err, "failed to create article")
		return
	}

	c.JSON(http.StatusCreated, entity.ArticleCreateResponse{
		ID:      article.ID,
		Title:   article.Title,
		Status:  article.Status,
		Message: "文章创建成功",
	})
}

// ListArticles 分页查询文章，支持状态/作者/关键字过滤。
func (h *HTTPHandler) ListArticles(c *gin.Context) {
	var query entity.ArticleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c)
		return
	}

	h.listArticles(c, &query)
}

// MyArticles 当前用户的文章列表。
func (h *HTTPHandler) MyArticles(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	var query entity.ArticleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c)
		return
	}
	query.AuthorID = user.ID

	h.listArticles(c, &query)
}

// PendingArticles 待审文章列表，仅管理员可见。
func (h *HTTPHandler) PendingArticles(c *gin.Context) {
	var query entity.ArticleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c)
		return
	}
	query.Status = string(entity.StatusPending)

	h.listArticles(c, &query)
}

func (h *HTTPHandler) listArticles(c *gin.Context, query *entity.ArticleQuery) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	articles, total, err := h.articleService.List(ctx, query, CurrentUser(c))
	if err != nil {
		WriteServiceError(c, err, "failed to list articles")
		return
	}

	c.JSON(http.StatusOK, entity.NewPageResponse(total, query.Page, query.Size, articles))
}

// GetArticle 文章详情，携带 token 时附带 isLiked。
func (h *HTTPHandler) GetArticle(c *gin.Context) {
	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	article, err := h.articleService.GetDetail(ctx, id, CurrentUser(c))
	if err != nil {
		WriteServiceError(c, err, "failed to load article")
		return
	}

	c.JSON(http.StatusOK, article)
}

// UpdateArticle 更新文章，仅作者可改。
func (h *HTTPHandler) UpdateArticle(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	var req entity.ArticleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.articleService.Update(ctx, user, id, req); err != nil {
		WriteServiceError(c, err, "failed to update article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章更新成功"})
}

// DeleteArticle 删除文章及其关联数据，仅作者可删。
func (h *HTTPHandler) DeleteArticle(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.articleService.Delete(ctx, user, id); err != nil {
		WriteServiceError(c, err, "failed to delete article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章删除成功"})
}

// SubmitArticle 作者提交草稿进入待审状态。
func (h *HTTPHandler) SubmitArticle(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.articleService.Submit(ctx, user, id); err != nil {
		WriteServiceError(c, err, "failed to submit article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已提交审核"})
}

// ReviewArticle 管理员审核待审文章。
func (h *HTTPHandler) ReviewArticle(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	var req entity.ArticleReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.articleService.Review(ctx, user, id, req); err != nil {
		WriteServiceError(c, err, "failed to review article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "审核完成"})
}

// IncrementArticleView 浏览计数加一，无需登录。
func (h *HTTPHandler) IncrementArticleView(c *gin.Context) {
	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.articleService.IncrementView(ctx, id); err != nil {
		WriteServiceError(c, err, "failed to increment view count")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// LikeArticle 点赞，重复点赞返回 409。
func (h *HTTPHandler) LikeArticle(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.engagementService.Like(ctx, user, id); err != nil {
		WriteServiceError(c, err, "failed to like article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "点赞成功"})
}

// UnlikeArticle 取消点赞，重复取消也返回成功。
func (h *HTTPHandler) UnlikeArticle(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.engagementService.Unlike(ctx, user, id); err != nil {
		WriteServiceError(c, err, "failed to unlike article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已取消点赞"})
}

// ArticleReviews 某篇文章的审核记录。
func (h *HTTPHandler) ArticleReviews(c *gin.Context) {
	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	reviews, err := h.articleService.ReviewHistory(ctx, id)
	if err != nil {
		WriteServiceError(c, err, "failed to list article reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// ArticleLikers 点赞过某篇文章的用户。
func (h *HTTPHandler) ArticleLikers(c *gin.Context) {
	id, ok := articleIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	likers, err := h.engagementService.ArticleLikers(ctx, id)
	if err != nil {
		WriteServiceError(c, err, "failed to list article likers")
		return
	}

	c.JSON(http.StatusOK, likers)
}

// MyLikedArticles 当前用户点赞过的文章。
func (h *HTTPHandler) MyLikedArticles(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	articles, err := h.engagementService.UserLikedArticles(ctx, user)
	if err != nil {
		WriteServiceError(c, err, "failed to list liked articles")
		return
	}

	c.JSON(http.StatusOK, articles)
}

// MyReviews 当前管理员做出的审核决定。
func (h *HTTPHandler) MyReviews(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	reviews, err := h.articleService.ReviewerHistory(ctx, user.ID)
	if err != nil {
		WriteServiceError(c, err, "failed to list reviewer history")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func articleIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "无效的文章 ID")
		return 0, false
	}
	return uint(id), true
}
