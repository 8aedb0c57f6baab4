package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"nfc-redirect-platform/internal/middleware"
	"nfc-redirect-platform/internal/model"
	"nfc-redirect-platform/internal/store"
	auth "nfc-redirect-platform/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountStore 账户相关的存储操作
type AccountStore interface {
	AccountByUsername(ctx context.Context, username string) (*model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	TouchLastLogin(ctx context.Context, accountID uint, at time.Time) error
}

// AuthHandler 包含认证相关的处理器
type AuthHandler struct {
	store        AccountStore
	tokens       *auth.TokenManager
	secureCookie bool
	logger       *zap.SugaredLogger
}

// NewAuthHandler 创建一个新的 AuthHandler
func NewAuthHandler(store AccountStore, tokens *auth.TokenManager, secureCookie bool, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, secureCookie: secureCookie, logger: logger.Named("auth")}
}

// LoginRequest 登录表单或 JSON
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=50" example:"acme"`
	Password string `form:"password" json:"password" binding:"required" example:"secret"`
	Next     string `form:"next" json:"-"`
}

// RegisterRequest 注册表单
type RegisterRequest struct {
	CompanyName string `form:"company_name" binding:"required,max=100"`
	Username    string `form:"username" binding:"required,max=50"`
	Password    string `form:"password" binding:"required,min=6"`
}

// AuthResponse JSON 登录成功后的响应
type AuthResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// LoginPage 登录表单，已登录时回到首页
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.AccountID(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, "login.html", page{Title: "Login", Next: c.Query("next")})
}

// Login godoc
// @Summary 账户登录
// @Description 表单提交时写入会话 cookie 并跳转；JSON 提交时返回 Bearer 令牌
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   account  body   LoginRequest  true  "登录凭据"
// @Success 200 {object} AuthResponse "成功响应"
// @Failure 401 {object} map[string]string "认证失败"
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	jsonRequest := c.ContentType() == gin.MIMEJSON

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		if jsonRequest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		render(c, http.StatusBadRequest, "login.html", page{Title: "Login", Error: "Username and password are required.", Next: req.Next, Form: credentialsForm{Username: req.Username}})
		return
	}

	account, err := h.store.AccountByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.logger.Errorf("查询账户失败: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error.")
		return
	}
	if account == nil || !account.CheckPassword(req.Password) {
		if jsonRequest {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		render(c, http.StatusOK, "login.html", page{Title: "Login", Error: "Invalid username or password.", Next: req.Next, Form: credentialsForm{Username: req.Username}})
		return
	}

	token, err := h.tokens.GenerateToken(account.ID, account.Username)
	if err != nil {
		h.logger.Errorf("生成令牌失败: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error.")
		return
	}

	if err := h.store.TouchLastLogin(c.Request.Context(), account.ID, time.Now()); err != nil {
		h.logger.Warnf("更新最近登录时间失败: %v", err)
	}

	if jsonRequest {
		c.JSON(http.StatusOK, AuthResponse{Token: token})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.tokens.Expiration().Seconds()), "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, safeNext(req.Next))
}

// RegisterPage 注册表单
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", page{Title: "Register"})
}

// Register 创建账户后跳转到登录页
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		render(c, http.StatusBadRequest, "register.html", page{
			Title: "Register",
			Error: "All fields are required; the password needs at least 6 characters.",
			Form:  credentialsForm{Username: req.Username, CompanyName: req.CompanyName},
		})
		return
	}

	account := model.Account{Username: req.Username, CompanyName: req.CompanyName}
	if err := account.SetPassword(req.Password); err != nil {
		h.logger.Errorf("密码加密失败: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error.")
		return
	}

	if err := h.store.CreateAccount(c.Request.Context(), &account); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			render(c, http.StatusOK, "register.html", page{
				Title: "Register",
				Error: "Please use a different username.",
				Form:  credentialsForm{CompanyName: req.CompanyName},
			})
			return
		}
		h.logger.Errorf("创建账户失败: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error.")
		return
	}

	h.logger.Infow("新账户注册", "username", account.Username, "account_id", account.ID)
	setFlash(c, "You are now registered, please login.")
	c.Redirect(http.StatusFound, "/login")
}

// Logout 清除会话
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, "/")
}

// safeNext 只允许站内相对路径，防止开放重定向
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
