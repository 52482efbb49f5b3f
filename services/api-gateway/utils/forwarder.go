package utils

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ForwardOptions struct {
	TargetBase  string
	StripPrefix string
}

// ForwardRequest proxies the current request to a downstream service.
// Identity claims stashed by the JWT middleware become X-User-* headers;
// any client-supplied X-User-* headers are dropped first so callers
// cannot impersonate other users.
func ForwardRequest(c *gin.Context, logger *zap.Logger, opts ForwardOptions) {
	targetPath := ""
	if any := c.Param("any"); any != "" {
		targetPath = any
	}

	if opts.StripPrefix != "" && strings.HasPrefix(targetPath, opts.StripPrefix) {
		targetPath = strings.TrimPrefix(targetPath, opts.StripPrefix)
	}

	targetURL := opts.TargetBase + targetPath
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}

	logger.Debug("forwarding request",
		zap.String("method", c.Request.Method),
		zap.String("url", targetURL),
	)

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
	if err != nil {
		logger.Error("failed to create forward request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	for k, v := range c.Request.Header {
		if strings.HasPrefix(strings.ToLower(k), "x-user-") {
			continue
		}
		req.Header[k] = v
	}

	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(string); ok {
			req.Header.Set("X-User-ID", uid)
		}
	}
	if email, exists := c.Get("email"); exists {
		if e, ok := email.(string); ok {
			req.Header.Set("X-User-Email", e)
		}
	}
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			req.Header.Set("X-User-Role", r)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Error("failed to forward request",
			zap.String("url", targetURL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "service unreachable"})
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		lowerKey := strings.ToLower(k)

		// CORS is handled at the gateway.
		if strings.HasPrefix(lowerKey, "access-control-") {
			continue
		}

		// Hop-by-hop headers must not be forwarded.
		if lowerKey == "connection" || lowerKey == "keep-alive" ||
			lowerKey == "proxy-authenticate" || lowerKey == "proxy-authorization" ||
			lowerKey == "te" || lowerKey == "trailers" ||
			lowerKey == "transfer-encoding" || lowerKey == "upgrade" {
			continue
		}

		c.Header(k, strings.Join(v, ","))
	}

	c.Status(resp.StatusCode)

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logger.Error("failed to copy response body", zap.Error(err))
	}
}
