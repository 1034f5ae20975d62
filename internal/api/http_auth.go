package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Nurkic4/www/internal/auth"
	"github.com/Nurkic4/www/internal/entity"
)

// Register 用户注册。用户名、手机号、邮箱分别要求唯一。
func (h *HTTPHandler) Register(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "用户存储不可用")
		return
	}

	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	phone := strings.TrimSpace(req.Phone)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || password == "" || phone == "" || email == "" {
		BadRequest(c, ErrCodeMissingField, "用户名、密码、手机号、邮箱均为必填")
		return
	}

	role := entity.RoleUser
	if strings.TrimSpace(req.UserType) != "" {
		parsed, ok := entity.ParseRole(req.UserType)
		if !ok {
			BadRequest(c, ErrCodeInvalidRequest, "未知的用户类型")
			return
		}
		role = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if conflict := h.checkRegistrationConflicts(ctx, c, username, phone, email); conflict {
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "注册失败")
		return
	}

	avatar := strings.TrimSpace(req.Avatar)
	if avatar == "" {
		avatar = h.cfg.DefaultAvatar
	}

	user := &entity.DbUser{
		Username:     username,
		PasswordHash: hash,
		Phone:        phone,
		Email:        email,
		Role:         role,
		Avatar:       avatar,
	}

	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, ErrCodeConflict, "用户名、手机号或邮箱已被注册")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "注册失败")
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to create token for user")
		InternalError(c, "创建会话失败")
		return
	}

	c.JSON(http.StatusCreated, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Summary(),
	})
}

// checkRegistrationConflicts 逐字段查重，命中即响应并返回 true。
func (h *HTTPHandler) checkRegistrationConflicts(ctx context.Context, c *gin.Context, username, phone, email string) bool {
	if _, err := h.repo.GetUserByUsername(ctx, username); err == nil {
		Conflict(c, ErrCodeUsernameExists, "用户名已被注册")
		return true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("failed to check username uniqueness")
		InternalError(c, "注册失败")
		return true
	}

	if _, err := h.repo.GetUserByPhone(ctx, phone); err == nil {
		Conflict(c, ErrCodePhoneExists, "手机号已被注册")
		return true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("failed to check phone uniqueness")
		InternalError(c, "注册失败")
		return true
	}

	if _, err := h.repo.GetUserByEmail(ctx, email); err == nil {
		Conflict(c, ErrCodeEmailExists, "邮箱已被注册")
		return true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("failed to check email uniqueness")
		InternalError(c, "注册失败")
		return true
	}

	return false
}

// Login 用户名密码登录，成功返回签名 token。
func (h *HTTPHandler) Login(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "用户存储不可用")
		return
	}

	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		BadRequest(c, ErrCodeMissingField, "用户名和密码均为必填")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByUsername(ctx, username)
	if err != nil {
		logrus.WithError(err).WithField("username", username).Warn("login attempt failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "用户名或密码错误")
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		logrus.WithField("username", username).Warn("password verification failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "用户名或密码错误")
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "创建会话失败")
		return
	}

	c.JSON(http.StatusOK, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Summary(),
	})
}

// Info 返回当前登录用户资料。
func (h *HTTPHandler) Info(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}
	c.JSON(http.StatusOK, user.Summary())
}

// UpdateAvatar 更新当前用户头像。
func (h *HTTPHandler) UpdateAvatar(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	var req entity.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	avatar := strings.TrimSpace(req.Avatar)
	if avatar == "" {
		MissingField(c, "avatar")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updates := entity.UserUpdates{Avatar: &avatar}
	if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to update avatar")
		InternalError(c, "更新头像失败")
		return
	}

	user.Avatar = avatar
	c.JSON(http.StatusOK, user.Summary())
}

// UpdateProfile 更新当前用户资料，唯一字段逐项重查。
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	var req entity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var updates entity.UserUpdates

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			MissingField(c, "username")
			return
		}
		if username != user.Username {
			if other, err := h.repo.GetUserByUsername(ctx, username); err == nil && other.ID != user.ID {
				Conflict(c, ErrCodeUsernameExists, "用户名已被注册")
				return
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithError(err).Error("failed to check username uniqueness")
				InternalError(c, "更新资料失败")
				return
			}
			updates.Username = &username
		}
	}

	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			MissingField(c, "phone")
			return
		}
		if phone != user.Phone {
			if other, err := h.repo.GetUserByPhone(ctx, phone); err == nil && other.ID != user.ID {
				Conflict(c, ErrCodePhoneExists, "手机号已被注册")
				return
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithError(err).Error("failed to check phone uniqueness")
				InternalError(c, "更新资料失败")
				return
			}
			updates.Phone = &phone
		}
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			MissingField(c, "email")
			return
		}
		if email != user.Email {
			if other, err := h.repo.GetUserByEmail(ctx, email); err == nil && other.ID != user.ID {
				Conflict(c, ErrCodeEmailExists, "邮箱已被注册")
				return
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithError(err).Error("failed to check email uniqueness")
				InternalError(c, "更新资料失败")
				return
			}
			updates.Email = &email
		}
	}

	if req.UserType != nil {
		role, ok := entity.ParseRole(*req.UserType)
		if !ok {
			BadRequest(c, ErrCodeInvalidRequest, "未知的用户类型")
			return
		}
		updates.Role = &role
	}

	if req.Avatar != nil {
		avatar := strings.TrimSpace(*req.Avatar)
		updates.Avatar = &avatar
	}

	if updates.IsEmpty() {
		c.JSON(http.StatusOK, user.Summary())
		return
	}

	if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, ErrCodeConflict, "用户名、手机号或邮箱已被注册")
			return
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to update user")
		InternalError(c, "更新资料失败")
		return
	}

	updated, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to reload user")
		InternalError(c, "更新资料失败")
		return
	}

	c.JSON(http.StatusOK, updated.Summary())
}

// ChangePassword 修改密码，旧密码校验失败返回 400。
func (h *HTTPHandler) ChangePassword(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "需要登录")
		return
	}

	var req entity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	oldPwd := strings.TrimSpace(req.OldPwd)
	newPwd := strings.TrimSpace(req.NewPwd)
	if oldPwd == "" || newPwd == "" {
		BadRequest(c, ErrCodeMissingField, "新旧密码均为必填")
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, oldPwd); err != nil {
		BadRequest(c, ErrCodeInvalidCredentials, "旧密码错误")
		return
	}

	hash, err := auth.HashPassword(newPwd)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "修改密码失败")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updates := entity.UserUpdates{PasswordHash: &hash}
	if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to change password")
		InternalError(c, "修改密码失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "密码修改成功"})
}
