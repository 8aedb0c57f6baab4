package handler

import (
	"html/template"
	"net/http"

	"nfc-redirect-platform/internal/config"
	"nfc-redirect-platform/internal/middleware"
	auth "nfc-redirect-platform/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterDeps 构建路由所需的全部处理器和中间件依赖
type RouterDeps struct {
	Logger    *zap.Logger
	Templates *template.Template
	Tokens    *auth.TokenManager
	RateLimit *config.Limit

	Redirect *RedirectHandler
	Batch    *BatchHandler
	Auth     *AuthHandler
	Manage   *ManageHandler
}

// NewRouter 注册全部路由
func NewRouter(d RouterDeps) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.GinZapRecovery(d.Logger, true))
	router.Use(middleware.GinZapLogger(d.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.Session(d.Tokens))
	router.SetHTMLTemplate(d.Templates)

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	router.GET("/health", d.Redirect.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", d.Redirect.IndexPage)
	router.POST("/", d.Redirect.IndexSubmit)
	router.GET("/redirect/:tag_id", d.Redirect.Redirect)

	router.GET("/login", d.Auth.LoginPage)
	router.POST("/login", d.Auth.Login)
	router.GET("/register", d.Auth.RegisterPage)
	router.POST("/register", d.Auth.Register)
	router.GET("/logout", d.Auth.Logout)

	requireLogin := middleware.RequireLogin()

	screens := router.Group("")
	screens.Use(requireLogin)
	{
		screens.GET("/my_tags", d.Manage.MyTags)
		screens.POST("/my_tags", d.Manage.UpdateMyTags)
		screens.GET("/my_campaigns", d.Manage.MyCampaigns)
		screens.POST("/my_campaigns", d.Manage.UpdateMyCampaigns)
		screens.GET("/my_links", d.Manage.MyLinks)
		screens.POST("/my_links", d.Manage.UpdateMyLinks)
	}

	api := router.Group("/api")
	api.Use(middleware.RateLimit(d.RateLimit))
	{
		api.GET("/redirect/:tag_id", d.Redirect.Redirect)
		api.POST("/create_batch", d.Batch.CreateBatch)
	}

	private := api.Group("")
	private.Use(requireLogin)
	{
		private.GET("/batches/:batch_id/export", d.Batch.ExportBatch)
		private.POST("/tags", d.Manage.CreateTag)
		private.POST("/campaigns", d.Manage.CreateCampaign)
		private.POST("/links", d.Manage.CreateLink)
	}

	return router
}
