package entity

import (
	"strings"
	"time"
)

// Role 是用户角色的封闭枚举，只有管理员和普通用户两种。
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole 解析角色字符串，未知值返回 false。
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the two known variants.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// DbUser represents a persisted user account.
type DbUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Username     string    `gorm:"column:username;type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Phone        string    `gorm:"column:phone;type:varchar(32);uniqueIndex;not null" json:"phone"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Role         Role      `gorm:"column:user_type;type:varchar(20);not null;default:USER" json:"userType"`
	Avatar       string    `gorm:"column:avatar;type:text" json:"avatar"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "user"
}

// IsAdmin 判断用户是否具有管理员权限
func (u *DbUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is a lightweight user description returned to clients.
type UserSummary struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Role      Role      `json:"userType"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary 转换为对外的用户摘要
func (u *DbUser) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Phone:     u.Phone,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	UserType string `json:"userType"`
	Avatar   string `json:"avatar"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserSummary `json:"user"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	UserType *string `json:"userType,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPwd string `json:"oldPwd" binding:"required"`
	NewPwd string `json:"newPwd" binding:"required"`
}
