package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nfc-redirect-platform/internal/resolver"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TagResolver 解析标签并记录成功的跳转
type TagResolver interface {
	ResolveAndRecord(ctx context.Context, tagID, domain string) (resolver.Result, error)
}

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedirectHandler 处理标签跳转和首页
type RedirectHandler struct {
	resolver       TagResolver
	db             Pinger
	strictNotFound bool
	logger         *zap.SugaredLogger
}

// NewRedirectHandler 创建处理器实例。strictNotFound 为 false 时未命中返回 200，
// 与已部署的扫码端保持兼容。
func NewRedirectHandler(r TagResolver, db Pinger, strictNotFound bool, logger *zap.SugaredLogger) *RedirectHandler {
	return &RedirectHandler{
		resolver:       r,
		db:             db,
		strictNotFound: strictNotFound,
		logger:         logger.Named("redirect"),
	}
}

// IndexPage 输入标签 ID 的表单
func (h *RedirectHandler) IndexPage(c *gin.Context) {
	render(c, http.StatusOK, "index.html", page{Title: "Lookup"})
}

// IndexSubmit 把表单中的 nfc_id 转到跳转路由
func (h *RedirectHandler) IndexSubmit(c *gin.Context) {
	nfcID := strings.TrimSpace(c.PostForm("nfc_id"))
	if nfcID == "" {
		render(c, http.StatusBadRequest, "index.html", page{Title: "Lookup", Error: "Please enter a tag ID."})
		return
	}
	c.Redirect(http.StatusFound, "/redirect/"+url.PathEscape(nfcID))
}

// Redirect godoc
// @Summary 标签跳转
// @Description 按 tag -> campaign -> link 解析并 302 跳转；未命中时返回说明哪一跳失败的纯文本
// @Tags Redirect
// @Produce plain
// @Param   tag_id  path  string  true  "NFC 标签 ID"
// @Success 302 {string} string "跳转到目标地址"
// @Success 200 {string} string "NFC tag not found. / Campaign link not found. / Link URL not found."
// @Failure 500 {string} string "存储错误"
// @Router /api/redirect/{tag_id} [get]
func (h *RedirectHandler) Redirect(c *gin.Context) {
	tagID := c.Param("tag_id")

	result, err := h.resolver.ResolveAndRecord(c.Request.Context(), tagID, requestDomain(c))
	if err != nil {
		h.logger.Errorw("标签解析失败", "tag_id", tagID, "error", err)
		c.String(http.StatusInternalServerError, "Internal server error.")
		return
	}

	if !result.Found() {
		status := http.StatusOK
		if h.strictNotFound {
			status = http.StatusNotFound
		}
		c.String(status, result.Outcome.Message())
		return
	}

	c.Redirect(http.StatusFound, result.URL)
}

// HealthCheck 检查进程和数据库状态
func (h *RedirectHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error(), "timestamp": time.Now()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

// requestDomain 请求方访问的站点根地址，例如 "https://nfc.example.com/"
func requestDomain(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host + "/"
}
