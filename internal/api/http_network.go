package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	speedtestDefaultSize = 10 << 20 // 10MiB
	speedtestMaxSize     = 100 << 20
	speedtestChunkSize   = 1 << 20
)

var networkClient = &http.Client{Timeout: 15 * time.Second}

// ProxyRequest 通用 HTTP 代理：转发请求并回报状态、响应头与耗时。
// 文本类响应直接返回，其余以 base64 编码。
func (h *HTTPHandler) ProxyRequest(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		MissingField(c, "url")
		return
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		BadRequest(c, ErrCodeInvalidRequest, "仅支持 http/https URL")
		return
	}

	method := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("method", http.MethodGet)))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "无效的代理请求: "+err.Error())
		return
	}

	start := time.Now()
	resp, err := networkClient.Do(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	duration := time.Since(start).Milliseconds()

	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		headers[key] = strings.Join(values, ",")
	}

	result := gin.H{
		"status":   resp.StatusCode,
		"headers":  headers,
		"duration": duration,
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text") {
		result["body"] = string(body)
	} else {
		result["body_base64"] = base64.StdEncoding.EncodeToString(body)
	}

	c.JSON(http.StatusOK, result)
}

// SpeedtestDownload 下行测速：流式输出 N 字节随机数据。
func (h *HTTPHandler) SpeedtestDownload(c *gin.Context) {
	size := speedtestDefaultSize
	if raw := strings.TrimSpace(c.Query("size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			BadRequest(c, ErrCodeInvalidRequest, "无效的 size 参数")
			return
		}
		size = parsed
	}
	if size > speedtestMaxSize {
		size = speedtestMaxSize
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", "attachment; filename=download.bin")
	c.Header("Content-Length", strconv.Itoa(size))

	buffer := make([]byte, speedtestChunkSize)
	written := 0
	for written < size {
		if _, err := rand.Read(buffer); err != nil {
			logrus.WithError(err).Error("failed to fill speedtest buffer")
			return
		}
		toWrite := len(buffer)
		if remaining := size - written; remaining < toWrite {
			toWrite = remaining
		}
		if _, err := c.Writer.Write(buffer[:toWrite]); err != nil {
			return
		}
		written += toWrite
	}
	c.Writer.Flush()
}

// SpeedtestUpload 上行测速：接收 multipart 文件，回报大小与耗时。
func (h *HTTPHandler) SpeedtestUpload(c *gin.Context) {
	start := time.Now()

	file, err := c.FormFile("file")
	if err != nil {
		MissingField(c, "file")
		return
	}

	reader, err := file.Open()
	if err != nil {
		InternalError(c, "读取上传文件失败")
		return
	}
	defer reader.Close()

	size, err := io.Copy(io.Discard, reader)
	if err != nil {
		InternalError(c, "读取上传文件失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"size":     size,
		"duration": time.Since(start).Milliseconds(),
	})
}

// PublicIP 查询服务器出口公网 IP。
func (h *HTTPHandler) PublicIP(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.ipify.org", nil)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	resp, err := networkClient.Do(req)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ip": strings.TrimSpace(string(body))})
}

// DNSInfo 解析域名的全部地址，附带本机 DNS 服务器与解析耗时。
func (h *HTTPHandler) DNSInfo(c *gin.Context) {
	domain := strings.TrimSpace(c.Query("domain"))
	if domain == "" {
		MissingField(c, "domain")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	addrs, err := net.DefaultResolver.LookupHost(ctx, domain)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ips":        addrs,
		"duration":   time.Since(start).Milliseconds(),
		"dnsServers": localDNSServers(),
	})
}

// PortTest TCP 端口连通性检测，3 秒超时。
func (h *HTTPHandler) PortTest(c *gin.Context) {
	host := strings.TrimSpace(c.Query("host"))
	if host == "" {
		MissingField(c, "host")
		return
	}
	port, err := strconv.Atoi(strings.TrimSpace(c.Query("port")))
	if err != nil || port <= 0 || port > 65535 {
		BadRequest(c, ErrCodeInvalidRequest, "无效的端口号")
		return
	}

	start := time.Now()
	result := gin.H{
		"host": host,
		"port": port,
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), 3*time.Second)
	if err != nil {
		result["reachable"] = false
		result["error"] = err.Error()
	} else {
		conn.Close()
		result["reachable"] = true
	}
	result["duration"] = time.Since(start).Milliseconds()

	c.JSON(http.StatusOK, result)
}

// localDNSServers 读取 /etc/resolv.conf 中的 nameserver 条目。
func localDNSServers() []string {
	servers := []string{}
	data, err := os.ReadFile("/etc/resolv.conf")
	if err != nil {
		return servers
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) >= 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	return servers
}
