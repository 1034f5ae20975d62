package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Nurkic4/www/internal/entity"
)

func TestRegisterLoginAndInfo(t *testing.T) {
	_, r := newTestHandler(t)

	resp, token := registerUser(t, r, "alice", "")
	if resp.User.Role != entity.RoleUser {
		t.Fatalf("expected default USER role, got %s", resp.User.Role)
	}

	// 登录
	w := doJSON(t, r, http.MethodPost, "/api/user/login", "", gin.H{
		"username": "alice",
		"password": "pass-alice",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 错误密码
	w = doJSON(t, r, http.MethodPost, "/api/user/login", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}

	// 用户信息
	w = doJSON(t, r, http.MethodGet, "/api/user/info", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary entity.UserSummary
	decodeBody(t, w, &summary)
	if summary.Username != "alice" {
		t.Fatalf("expected alice, got %s", summary.Username)
	}

	// 未携带 token
	w = doJSON(t, r, http.MethodGet, "/api/user/info", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestRegisterRejectsDuplicatesPerField(t *testing.T) {
	_, r := newTestHandler(t)
	registerUser(t, r, "alice", "")

	tests := []struct {
		name    string
		payload gin.H
		code    string
	}{
		{
			name: "用户名重复",
			payload: gin.H{
				"username": "alice", "password": "x", "phone": "13900000001", "email": "other1@example.com",
			},
			code: ErrCodeUsernameExists,
		},
		{
			name: "手机号重复",
			payload: gin.H{
				"username": "carol", "password": "x", "phone": "138alice", "email": "other2@example.com",
			},
			code: ErrCodePhoneExists,
		},
		{
			name: "邮箱重复",
			payload: gin.H{
				"username": "dave", "password": "x", "phone": "13900000002", "email": "alice@example.com",
			},
			code: ErrCodeEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/user/register", "", tt.payload)
			if w.Code != http.StatusConflict {
				t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
			}
			var apiErr APIError
			decodeBody(t, w, &apiErr)
			if apiErr.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, apiErr.Code)
			}
		})
	}
}

func TestLegacyUsernameTokenStillAccepted(t *testing.T) {
	handler, r := newTestHandler(t)
	registerUser(t, r, "alice", "")

	legacy, err := handler.authManager.GenerateLegacyToken("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/user/info", legacy, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected legacy token to work, got %d: %s", w.Code, w.Body.String())
	}
	var summary entity.UserSummary
	decodeBody(t, w, &summary)
	if summary.Username != "alice" {
		t.Fatalf("expected alice, got %s", summary.Username)
	}
}

func TestChangePassword(t *testing.T) {
	_, r := newTestHandler(t)
	_, token := registerUser(t, r, "alice", "")

	// 旧密码错误
	w := doJSON(t, r, http.MethodPost, "/api/user/changePwd", token, gin.H{
		"oldPwd": "wrong",
		"newPwd": "new-pass",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong old password, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/user/changePwd", token, gin.H{
		"oldPwd": "pass-alice",
		"newPwd": "new-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 新密码可登录
	w = doJSON(t, r, http.MethodPost, "/api/user/login", "", gin.H{
		"username": "alice",
		"password": "new-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", w.Code)
	}

	// 旧密码失效
	w = doJSON(t, r, http.MethodPost, "/api/user/login", "", gin.H{
		"username": "alice",
		"password": "pass-alice",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected old password rejected, got %d", w.Code)
	}
}

func TestUpdateProfileUniqueness(t *testing.T) {
	_, r := newTestHandler(t)
	registerUser(t, r, "alice", "")
	_, bobToken := registerUser(t, r, "bob", "")

	w := doJSON(t, r, http.MethodPost, "/api/user/update", bobToken, gin.H{
		"username": "alice",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/user/update", bobToken, gin.H{
		"username": "bobby",
		"email":    "bobby@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary entity.UserSummary
	decodeBody(t, w, &summary)
	if summary.Username != "bobby" || summary.Email != "bobby@example.com" {
		t.Fatalf("unexpected updated profile: %+v", summary)
	}
}
