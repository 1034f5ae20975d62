package entity

import "time"

// UserUpdates 用户更新字段
type UserUpdates struct {
	Username     *string
	Phone        *string
	Email        *string
	Role         *Role
	Avatar       *string
	PasswordHash *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Username != nil {
		updates["username"] = *u.Username
	}
	if u.Phone != nil {
		updates["phone"] = *u.Phone
	}
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Role != nil {
		updates["user_type"] = *u.Role
	}
	if u.Avatar != nil {
		updates["avatar"] = *u.Avatar
	}
	if u.PasswordHash != nil {
		updates["password"] = *u.PasswordHash
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ArticleUpdates 文章更新字段
type ArticleUpdates struct {
	Title         *string
	Content       *string
	CoverImage    *string
	Status        *ArticleStatus
	PublishedAt   *time.Time
	ReviewComment *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u ArticleUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Content != nil {
		updates["content"] = *u.Content
	}
	if u.CoverImage != nil {
		updates["cover_image"] = *u.CoverImage
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.PublishedAt != nil {
		updates["published_at"] = *u.PublishedAt
	}
	if u.ReviewComment != nil {
		updates["review_comment"] = *u.ReviewComment
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u ArticleUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
