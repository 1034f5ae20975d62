package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	sparkV1Endpoint = "https://spark-api-open.xf-yun.com/v1/chat/completions"
	sparkV2Endpoint = "https://spark-api-open.xf-yun.com/v2/chat/completions"
)

var sparkClient = &http.Client{Timeout: 120 * time.Second}

// sparkModelConfig 星火模型配置：端点、官方模型名与 API 密钥。
type sparkModelConfig struct {
	Endpoint    string
	ModelName   string
	APIPassword string
}

// sparkModels 构建模型别名表，APIPassword 全部来自环境变量配置。
func (h *HTTPHandler) sparkModels() map[string]sparkModelConfig {
	return map[string]sparkModelConfig{
		"x1": {
			Endpoint:    sparkV2Endpoint,
			ModelName:   "x1",
			APIPassword: h.cfg.SparkX1APIPassword,
		},
		"pro": {
			Endpoint:    sparkV1Endpoint,
			ModelName:   "generalv3.5",
			APIPassword: h.cfg.SparkProAPIPassword,
		},
		"lite": {
			Endpoint:    sparkV1Endpoint,
			ModelName:   "generalv3.5",
			APIPassword: h.cfg.SparkLiteAPIPassword,
		},
		"max": {
			Endpoint:    sparkV1Endpoint,
			ModelName:   "generalv3.5",
			APIPassword: h.cfg.SparkMaxAPIPassword,
		},
		"ultra": {
			Endpoint:    sparkV1Endpoint,
			ModelName:   "generalv3.5",
			APIPassword: h.cfg.SparkUltraAPIPassword,
		},
	}
}

type sparkChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sparkChatRequest struct {
	Model    string             `json:"model"`
	Messages []sparkChatMessage `json:"messages"`
}

// SparkAIProxy 转发对话补全请求到星火大模型。
func (h *HTTPHandler) SparkAIProxy(c *gin.Context) {
	var req sparkChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	alias := strings.TrimSpace(req.Model)
	if alias == "" {
		alias = "x1"
	}

	modelCfg, ok := h.sparkModels()[alias]
	if !ok {
		BadRequest(c, ErrCodeModelNotFound, "不支持的模型: "+alias)
		return
	}
	if strings.TrimSpace(modelCfg.APIPassword) == "" {
		ServiceUnavailable(c, "模型 "+alias+" 未配置 API 密钥")
		return
	}

	messages := filterSparkMessages(req.Messages)
	if len(messages) == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "消息不能为空")
		return
	}

	payload := map[string]any{
		"model":      modelCfg.ModelName,
		"messages":   messages,
		"max_tokens": 4096,
		"stream":     false,
		"user":       fmt.Sprintf("user_%d", time.Now().UnixMilli()),
	}
	// 按星火文档设置版本相关的采样默认值
	if strings.Contains(modelCfg.Endpoint, "/v2/") {
		payload["temperature"] = 1.0
		payload["top_p"] = 0.95
		payload["top_k"] = 6
	} else {
		payload["temperature"] = 0.5
		payload["top_p"] = 1.0
		payload["top_k"] = 4
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal spark request")
		InternalError(c, "构建请求失败")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 120*time.Second)
	defer cancel()

	upstreamReq, err := http.NewRequestWithContext(ctx, http.MethodPost, modelCfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		logrus.WithError(err).Error("failed to build spark request")
		InternalError(c, "构建请求失败")
		return
	}
	upstreamReq.Header.Set("Content-Type", "application/json")
	upstreamReq.Header.Set("Authorization", "Bearer "+modelCfg.APIPassword)

	logrus.WithFields(logrus.Fields{
		"endpoint": modelCfg.Endpoint,
		"model":    modelCfg.ModelName,
		"messages": len(messages),
	}).Info("forwarding spark chat request")

	resp, err := sparkClient.Do(upstreamReq)
	if err != nil {
		logrus.WithError(err).Error("spark request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "请求失败: " + err.Error()})
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logrus.WithError(err).Error("failed to read spark response")
		c.JSON(http.StatusBadGateway, gin.H{"error": "读取响应失败"})
		return
	}

	c.Data(resp.StatusCode, "application/json", respBody)
}

// filterSparkMessages 过滤对话历史：保留用户消息和不含错误信息的助手消息。
// 全部被过滤时回退到最后一条用户消息。
func filterSparkMessages(messages []sparkChatMessage) []sparkChatMessage {
	valid := make([]sparkChatMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			valid = append(valid, msg)
		case "assistant":
			content := msg.Content
			if content != "" &&
				!strings.Contains(content, "服务器错误") &&
				!strings.Contains(content, "error") {
				valid = append(valid, msg)
			}
		}
	}

	if len(valid) == 0 {
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == "user" {
				valid = append(valid, messages[i])
				break
			}
		}
	}
	return valid
}
