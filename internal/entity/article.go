package entity

import (
	"strings"
	"time"
)

// ArticleStatus 是文章生命周期状态。
// DRAFT → PENDING → {APPROVED, REJECTED}，被拒绝的文章可回到草稿重新提交。
type ArticleStatus string

const (
	StatusDraft    ArticleStatus = "DRAFT"
	StatusPending  ArticleStatus = "PENDING"
	StatusApproved ArticleStatus = "APPROVED"
	StatusRejected ArticleStatus = "REJECTED"
)

// ParseArticleStatus 解析状态字符串，未知值返回 false。
func ParseArticleStatus(value string) (ArticleStatus, bool) {
	switch ArticleStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusDraft:
		return StatusDraft, true
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Valid reports whether the status is a known lifecycle state.
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// ReviewAction 是审核决定。
type ReviewAction string

const (
	ActionApprove ReviewAction = "APPROVE"
	ActionReject  ReviewAction = "REJECT"
)

// ParseReviewAction 解析审核动作，未知值返回 false。
func ParseReviewAction(value string) (ReviewAction, bool) {
	switch ReviewAction(strings.ToUpper(strings.TrimSpace(value))) {
	case ActionApprove:
		return ActionApprove, true
	case ActionReject:
		return ActionReject, true
	default:
		return "", false
	}
}

// DbArticle represents a persisted article.
//
// AuthorName/AuthorAvatar/IsLiked 是读时投影，查询层显式填充，不落库。
type DbArticle struct {
	ID            uint          `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Title         string        `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Content       string        `gorm:"column:content;type:text;not null" json:"content"`
	CoverImage    string        `gorm:"column:cover_image;type:text" json:"coverImage"`
	AuthorID      uint          `gorm:"column:author_id;index;not null" json:"authorId"`
	Status        ArticleStatus `gorm:"column:status;type:varchar(20);index;not null;default:DRAFT" json:"status"`
	ViewCount     int           `gorm:"column:view_count;not null;default:0" json:"viewCount"`
	LikeCount     int           `gorm:"column:like_count;not null;default:0" json:"likeCount"`
	PublishedAt   *time.Time    `gorm:"column:published_at" json:"publishedAt,omitempty"`
	ReviewComment string        `gorm:"column:review_comment;type:varchar(500)" json:"reviewComment,omitempty"`

	Images []DbArticleImage `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"images,omitempty"`

	AuthorName   string `gorm:"-" json:"authorName,omitempty"`
	AuthorAvatar string `gorm:"-" json:"authorAvatar,omitempty"`
	IsLiked      bool   `gorm:"-" json:"isLiked"`
}

// TableName overrides default pluralised name.
func (DbArticle) TableName() string {
	return "article"
}

// DbArticleImage 是文章插图，随文章级联删除。
// ImageData 为内联 base64，ImageURL 为 offload 后的访问地址，二者互斥。
type DbArticleImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ArticleID uint      `gorm:"column:article_id;index;not null" json:"-"`
	ImageURL  string    `gorm:"column:image_url;type:varchar(500)" json:"imageUrl,omitempty"`
	ImageName string    `gorm:"column:image_name;type:varchar(200)" json:"imageName"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sortOrder"`
	ImageData string    `gorm:"column:image_data;type:text" json:"imageData,omitempty"`
}

// TableName overrides default pluralised name.
func (DbArticleImage) TableName() string {
	return "article_image"
}

// DbArticleReview 是不可变的审核记录，只增不改。
type DbArticleReview struct {
	ID         uint         `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time    `json:"createdAt"`
	ArticleID  uint         `gorm:"column:article_id;index;not null" json:"articleId"`
	ReviewerID uint         `gorm:"column:reviewer_id;index;not null" json:"reviewerId"`
	Action     ReviewAction `gorm:"column:action;type:varchar(20);not null" json:"action"`
	Comment    string       `gorm:"column:comment;type:varchar(500)" json:"comment,omitempty"`

	ReviewerName string `gorm:"-" json:"reviewerName,omitempty"`
}

// TableName overrides default pluralised name.
func (DbArticleReview) TableName() string {
	return "article_review"
}

// DbArticleLike 表示一次点赞，(article_id, user_id) 全局唯一。
type DbArticleLike struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ArticleID uint      `gorm:"column:article_id;uniqueIndex:idx_article_user;not null" json:"articleId"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex:idx_article_user;not null" json:"userId"`
}

// TableName overrides default pluralised name.
func (DbArticleLike) TableName() string {
	return "article_like"
}

type ArticleImageRequest struct {
	ImageData string `json:"imageData"`
	ImageName string `json:"imageName"`
	SortOrder *int   `json:"sortOrder"`
}

type ArticleCreateRequest struct {
	Title      string                `json:"title" binding:"required"`
	Content    string                `json:"content" binding:"required"`
	CoverImage string                `json:"coverImage"`
	Status     string                `json:"status"`
	Images     []ArticleImageRequest `json:"images"`
}

type ArticleCreateResponse struct {
	ID      uint          `json:"id"`
	Title   string        `json:"title"`
	Status  ArticleStatus `json:"status"`
	Message string        `json:"message"`
}

// ArticleUpdateRequest 的字段均为可选；Images 非 nil 时整组替换插图。
type ArticleUpdateRequest struct {
	Title      *string                `json:"title,omitempty"`
	Content    *string                `json:"content,omitempty"`
	CoverImage *string                `json:"coverImage,omitempty"`
	Status     *string                `json:"status,omitempty"`
	Images     *[]ArticleImageRequest `json:"images,omitempty"`
}

type ArticleReviewRequest struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

// ArticleQuery supports listing articles with pagination and filters.
type ArticleQuery struct {
	BaseParams
	Status   string `json:"status" form:"status" query:"status"`
	AuthorID uint   `json:"authorId" form:"authorId" query:"authorId"`
	Keyword  string `json:"keyword" form:"keyword" query:"keyword"`
}
