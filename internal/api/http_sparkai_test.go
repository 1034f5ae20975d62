package api

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFilterSparkMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    []sparkChatMessage
		expected []sparkChatMessage
	}{
		{
			name: "keeps user and clean assistant messages",
			input: []sparkChatMessage{
				{Role: "user", Content: "你好"},
				{Role: "assistant", Content: "你好，有什么可以帮你？"},
				{Role: "user", Content: "讲个笑话"},
			},
			expected: []sparkChatMessage{
				{Role: "user", Content: "你好"},
				{Role: "assistant", Content: "你好，有什么可以帮你？"},
				{Role: "user", Content: "讲个笑话"},
			},
		},
		{
			name: "drops error and empty assistant messages",
			input: []sparkChatMessage{
				{Role: "user", Content: "你好"},
				{Role: "assistant", Content: "服务器错误，请稍后再试"},
				{Role: "assistant", Content: ""},
				{Role: "assistant", Content: "request error: timeout"},
			},
			expected: []sparkChatMessage{
				{Role: "user", Content: "你好"},
			},
		},
		{
			name: "drops system messages",
			input: []sparkChatMessage{
				{Role: "system", Content: "你是一个助手"},
				{Role: "user", Content: "你好"},
			},
			expected: []sparkChatMessage{
				{Role: "user", Content: "你好"},
			},
		},
		{
			name: "falls back to last user message",
			input: []sparkChatMessage{
				{Role: "user", Content: "第一条"},
				{Role: "user", Content: "第二条"},
			},
			expected: []sparkChatMessage{
				{Role: "user", Content: "第一条"},
				{Role: "user", Content: "第二条"},
			},
		},
		{
			name:     "empty input stays empty",
			input:    nil,
			expected: []sparkChatMessage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterSparkMessages(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestSparkAIProxyRejectsBadModels(t *testing.T) {
	handler, _ := newTestHandler(t)

	r := gin.New()
	r.POST("/api/sparkai/chat", handler.SparkAIProxy)

	// 未知模型别名
	w := doJSON(t, r, http.MethodPost, "/api/sparkai/chat", "", gin.H{
		"model":    "gpt-4",
		"messages": []gin.H{{"role": "user", "content": "hi"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown model, got %d: %s", w.Code, w.Body.String())
	}

	// 已知模型但未配置密钥
	w = doJSON(t, r, http.MethodPost, "/api/sparkai/chat", "", gin.H{
		"model":    "x1",
		"messages": []gin.H{{"role": "user", "content": "hi"}},
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for unconfigured model, got %d: %s", w.Code, w.Body.String())
	}
}
