package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Nurkic4/www/internal/entity"
)

func TestArticleModerationScenario(t *testing.T) {
	_, r := newTestHandler(t)
	_, authorToken := registerUser(t, r, "alice", "")
	_, adminToken := registerUser(t, r, "root", "ADMIN")

	articleID := createArticle(t, r, authorToken, "我的第一篇文章")

	// 草稿不可审核
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/review", articleID), adminToken, gin.H{
		"action": "APPROVE",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 reviewing draft, got %d: %s", w.Code, w.Body.String())
	}

	// 提交审核
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/submit", articleID), authorToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 普通用户看不到待审列表
	w = doJSON(t, r, http.MethodGet, "/api/article/pending", authorToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin pending list, got %d", w.Code)
	}

	// 管理员待审列表包含该文章
	w = doJSON(t, r, http.MethodGet, "/api/article/pending", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var page entity.PageResponse
	decodeBody(t, w, &page)
	if page.Total != 1 {
		t.Fatalf("expected 1 pending article, got %d", page.Total)
	}

	// 普通用户无权审核
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/review", articleID), authorToken, gin.H{
		"action": "APPROVE",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin review, got %d", w.Code)
	}

	// 管理员通过
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/review", articleID), adminToken, gin.H{
		"action":  "APPROVE",
		"comment": "不错",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 详情：状态与发布时间
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/article/%d", articleID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var article entity.DbArticle
	decodeBody(t, w, &article)
	if article.Status != entity.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", article.Status)
	}
	if article.PublishedAt == nil {
		t.Fatal("expected publishedAt after approval")
	}
	if article.AuthorName != "alice" {
		t.Fatalf("expected author projection alice, got %q", article.AuthorName)
	}

	// 重复审核被拒
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/review", articleID), adminToken, gin.H{
		"action": "REJECT",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for repeat review, got %d", w.Code)
	}

	// 审核历史恰好一条
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/article/%d/reviews", articleID), authorToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reviews []entity.DbArticleReview
	decodeBody(t, w, &reviews)
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review record, got %d", len(reviews))
	}
	if reviews[0].ReviewerName != "root" {
		t.Fatalf("expected reviewer root, got %s", reviews[0].ReviewerName)
	}
}

func TestArticleLikeAndViewEndpoints(t *testing.T) {
	_, r := newTestHandler(t)
	_, authorToken := registerUser(t, r, "alice", "")
	_, fanToken := registerUser(t, r, "bob", "")

	articleID := createArticle(t, r, authorToken, "热门文章")

	// 点赞
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/like", articleID), fanToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 重复点赞冲突
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/like", articleID), fanToken, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate like, got %d", w.Code)
	}

	// 浏览计数无需登录
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/article/%d/view", articleID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 详情：计数与 isLiked
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/article/%d", articleID), fanToken, nil)
	var article entity.DbArticle
	decodeBody(t, w, &article)
	if article.LikeCount != 1 || article.ViewCount != 1 {
		t.Fatalf("expected like=1 view=1, got like=%d view=%d", article.LikeCount, article.ViewCount)
	}
	if !article.IsLiked {
		t.Fatal("expected isLiked for fan")
	}

	// 我的点赞列表
	w = doJSON(t, r, http.MethodGet, "/api/user/likes", fanToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var liked []entity.DbArticle
	decodeBody(t, w, &liked)
	if len(liked) != 1 {
		t.Fatalf("expected 1 liked article, got %d", len(liked))
	}

	// 取消点赞幂等
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/article/%d/like", articleID), fanToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/article/%d/like", articleID), fanToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected idempotent unlike, got %d", w.Code)
	}

	// 不存在的文章
	w = doJSON(t, r, http.MethodPost, "/api/article/9999/view", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing article, got %d", w.Code)
	}
}

func TestArticleListEnvelopeAndOwnership(t *testing.T) {
	_, r := newTestHandler(t)
	_, aliceToken := registerUser(t, r, "alice", "")
	_, bobToken := registerUser(t, r, "bob", "")

	for i := 0; i < 3; i++ {
		createArticle(t, r, aliceToken, fmt.Sprintf("alice 的文章 %d", i))
	}
	bobArticle := createArticle(t, r, bobToken, "bob 的文章")

	// 分页信封
	w := doJSON(t, r, http.MethodGet, "/api/article/list?page=1&size=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var page entity.PageResponse
	decodeBody(t, w, &page)
	if page.Total != 4 || page.Pages != 2 || page.Current != 1 || page.Size != 2 {
		t.Fatalf("unexpected envelope: %+v", page)
	}

	// 我的文章只含自己的
	w = doJSON(t, r, http.MethodGet, "/api/article/my", bobToken, nil)
	decodeBody(t, w, &page)
	if page.Total != 1 {
		t.Fatalf("expected 1 article for bob, got %d", page.Total)
	}

	// 他人文章不可修改
	newTitle := "篡改"
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/article/%d", bobArticle), aliceToken, gin.H{
		"title": newTitle,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 updating foreign article, got %d", w.Code)
	}

	// 他人文章不可删除
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/article/%d", bobArticle), aliceToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting foreign article, got %d", w.Code)
	}

	// 作者可删除
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/article/%d", bobArticle), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/article/%d", bobArticle), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}
