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

const (
	currentUserContextKey = "current-user"
)

// AuthMiddleware JWT 认证中间件
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "缺少或无效的授权头",
			})
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			logrus.WithError(err).Warn("failed to parse jwt token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeSessionExpired,
				Message: "Token 无效或已过期",
			})
			return
		}

		user, err := h.loadTokenUser(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeUserNotFound,
					Message: "用户不存在",
				})
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "验证用户失败",
			})
			return
		}

		c.Set(currentUserContextKey, user)
		c.Next()
	}
}

// OptionalAuthMiddleware 可选认证：携带有效 token 则加载用户，否则匿名放行。
// 公开接口（文章详情、列表）用它填充 isLiked。
func (h *HTTPHandler) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		if user, err := h.loadTokenUser(c.Request.Context(), claims); err == nil {
			c.Set(currentUserContextKey, user)
		}
		c.Next()
	}
}

// loadTokenUser 按 token 声明加载用户。
// 新 token 按用户 ID 查找；旧版只有用户名的 token 按用户名兜底。
func (h *HTTPHandler) loadTokenUser(parent context.Context, claims *auth.Claims) (*entity.DbUser, error) {
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	if claims.IsLegacy() {
		return h.repo.GetUserByUsername(ctx, claims.Username())
	}
	return h.repo.GetUserByID(ctx, claims.UserID)
}

// RequireAdmin 管理员权限守卫中间件
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "需要管理员权限",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *entity.DbUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*entity.DbUser)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
