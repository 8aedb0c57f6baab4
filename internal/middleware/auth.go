package middleware

import (
	"net/http"
	"net/url"
	auth "nfc-redirect-platform/pkg/jwt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookie 保存会话令牌的 cookie 名
const SessionCookie = "nfc_session"

const (
	ctxAccountID = "account_id"
	ctxUsername  = "username"
)

// Session 从 cookie 或 Bearer 头中解析会话，解析失败时按匿名处理
func Session(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if token != "" {
			if claims, err := tm.ValidateToken(token); err == nil {
				c.Set(ctxAccountID, claims.AccountID)
				c.Set(ctxUsername, claims.Username)
			}
		}
		c.Next()
	}
}

// RequireLogin 浏览器请求跳转到登录页，API 请求返回 401
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AccountID(c); ok {
			c.Next()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// AccountID 当前登录的账户
func AccountID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxAccountID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// Username 当前登录的用户名
func Username(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
