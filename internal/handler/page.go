package handler

import (
	"net/http"
	"net/url"

	"nfc-redirect-platform/internal/middleware"

	"github.com/gin-gonic/gin"
)

const flashCookie = "nfc_flash"

// credentialsForm 登录和注册页面回显的字段
type credentialsForm struct {
	Username    string
	CompanyName string
}

// page 所有 HTML 页面共用的数据
type page struct {
	Title    string
	Username string
	Flash    string
	Error    string
	Next     string
	NfcID    string
	Form     credentialsForm
	Rows     any
}

// render 填充会话信息和一次性提示后渲染模板
func render(c *gin.Context, status int, name string, p page) {
	p.Username = middleware.Username(c)
	if p.Flash == "" {
		p.Flash = popFlash(c)
	}
	c.HTML(status, name, p)
}

// setFlash 在下一次页面渲染时显示一条提示
func setFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, url.QueryEscape(message), 60, "/", "", false, true)
}

func popFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}
