package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"nfc-redirect-platform/internal/manage"
	"nfc-redirect-platform/internal/middleware"
	"nfc-redirect-platform/internal/model"
	"nfc-redirect-platform/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	updatedMessage           = "Records updated successfully."
	invalidIdentifierMessage = "IDs may only contain letters, digits, '_', '-' and '.', up to 50 characters."
)

// ManageStore 管理页面依赖的存储操作，全部按账户过滤
type ManageStore interface {
	TagsByAccount(ctx context.Context, accountID uint) ([]model.Tag, error)
	CampaignLinksByAccount(ctx context.Context, accountID uint) ([]model.CampaignLink, error)
	LinkURLsByAccount(ctx context.Context, accountID uint) ([]model.LinkURL, error)
	UpdateTagCampaigns(ctx context.Context, accountID uint, edits map[string]string) (int64, error)
	UpdateCampaignLinks(ctx context.Context, accountID uint, edits map[string]string) (int64, error)
	UpdateLinkURLs(ctx context.Context, accountID uint, edits map[string]store.LinkEdit) (int64, error)
	CreateTag(ctx context.Context, tag *model.Tag) error
	CreateCampaignLink(ctx context.Context, campaign *model.CampaignLink) error
	CreateLinkURL(ctx context.Context, link *model.LinkURL) error
}

// ManageHandler my_tags / my_campaigns / my_links 页面和单条创建接口
type ManageHandler struct {
	store  ManageStore
	logger *zap.SugaredLogger
}

// NewManageHandler 创建处理器实例
func NewManageHandler(store ManageStore, logger *zap.SugaredLogger) *ManageHandler {
	return &ManageHandler{store: store, logger: logger.Named("manage")}
}

func mustAccount(c *gin.Context) uint {
	id, _ := middleware.AccountID(c)
	return id
}

// MyTags 列出当前账户的标签
func (h *ManageHandler) MyTags(c *gin.Context) {
	tags, err := h.store.TagsByAccount(c.Request.Context(), mustAccount(c))
	if err != nil {
		h.fail(c, "查询标签失败", err)
		return
	}
	render(c, http.StatusOK, "my_tags.html", page{Title: "My tags", Rows: tags})
}

// UpdateMyTags 批量修改标签指向的活动
func (h *ManageHandler) UpdateMyTags(c *gin.Context) {
	accountID := mustAccount(c)
	edits := manage.ParseTagEdits(formValues(c))

	if id, ok := manage.ValidateIDEdits(edits, ValidIdentifier); !ok {
		tags, err := h.store.TagsByAccount(c.Request.Context(), accountID)
		if err != nil {
			h.fail(c, "查询标签失败", err)
			return
		}
		render(c, http.StatusBadRequest, "my_tags.html", page{
			Title: "My tags",
			Error: fmt.Sprintf("Tag %s: %s", id, invalidIdentifierMessage),
			Rows:  tags,
		})
		return
	}

	if _, err := h.store.UpdateTagCampaigns(c.Request.Context(), accountID, edits); err != nil {
		h.fail(c, "更新标签失败", err)
		return
	}
	h.done(c)
}

// MyCampaigns 列出当前账户的活动
func (h *ManageHandler) MyCampaigns(c *gin.Context) {
	campaigns, err := h.store.CampaignLinksByAccount(c.Request.Context(), mustAccount(c))
	if err != nil {
		h.fail(c, "查询活动失败", err)
		return
	}
	render(c, http.StatusOK, "my_campaigns.html", page{Title: "My campaigns", Rows: campaigns})
}

// UpdateMyCampaigns 批量修改活动指向的链接
func (h *ManageHandler) UpdateMyCampaigns(c *gin.Context) {
	accountID := mustAccount(c)
	edits := manage.ParseCampaignEdits(formValues(c))

	if id, ok := manage.ValidateIDEdits(edits, ValidIdentifier); !ok {
		campaigns, err := h.store.CampaignLinksByAccount(c.Request.Context(), accountID)
		if err != nil {
			h.fail(c, "查询活动失败", err)
			return
		}
		render(c, http.StatusBadRequest, "my_campaigns.html", page{
			Title: "My campaigns",
			Error: fmt.Sprintf("Campaign %s: %s", id, invalidIdentifierMessage),
			Rows:  campaigns,
		})
		return
	}

	if _, err := h.store.UpdateCampaignLinks(c.Request.Context(), accountID, edits); err != nil {
		h.fail(c, "更新活动失败", err)
		return
	}
	h.done(c)
}

// MyLinks 列出当前账户的链接
func (h *ManageHandler) MyLinks(c *gin.Context) {
	links, err := h.store.LinkURLsByAccount(c.Request.Context(), mustAccount(c))
	if err != nil {
		h.fail(c, "查询链接失败", err)
		return
	}
	render(c, http.StatusOK, "my_links.html", page{Title: "My links", Rows: links})
}

// UpdateMyLinks 批量修改链接的标签和地址
func (h *ManageHandler) UpdateMyLinks(c *gin.Context) {
	accountID := mustAccount(c)
	edits := manage.ParseLinkEdits(formValues(c))

	if id, ok := manage.ValidateLinkEdits(edits); !ok {
		links, err := h.store.LinkURLsByAccount(c.Request.Context(), accountID)
		if err != nil {
			h.fail(c, "查询链接失败", err)
			return
		}
		render(c, http.StatusBadRequest, "my_links.html", page{
			Title: "My links",
			Error: fmt.Sprintf("Link %s: the URL must start with http:// or https://.", id),
			Rows:  links,
		})
		return
	}

	if _, err := h.store.UpdateLinkURLs(c.Request.Context(), accountID, edits); err != nil {
		h.fail(c, "更新链接失败", err)
		return
	}
	h.done(c)
}

// CreateTagRequest 单个标签
type CreateTagRequest struct {
	TagID      string `json:"tag_id" binding:"required,identifier" example:"lobby-01"`
	CampaignID string `json:"camp_id" binding:"required,identifier" example:"spring-2026"`
}

// CreateCampaignRequest 单个活动
type CreateCampaignRequest struct {
	CampaignID string `json:"camp_id" binding:"required,identifier" example:"spring-2026"`
	LinkID     string `json:"link_id" binding:"required,identifier" example:"landing"`
}

// CreateLinkRequest 单个链接
type CreateLinkRequest struct {
	LinkID string `json:"link_id" binding:"required,identifier" example:"landing"`
	Label  string `json:"link_label" binding:"max=50" example:"Landing page"`
	URL    string `json:"link_url" binding:"required,url" example:"https://example.com/spring"`
}

// CreateTag godoc
// @Summary 创建标签
// @Tags Manage
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   tag  body   CreateTagRequest  true  "标签"
// @Success 201 {object} model.Tag
// @Failure 409 {object} map[string]string "ID 已存在"
// @Router /api/tags [post]
func (h *ManageHandler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	accountID := mustAccount(c)
	tag := model.Tag{TagID: req.TagID, CampaignID: req.CampaignID, AccountID: &accountID}
	h.created(c, &tag, h.store.CreateTag(c.Request.Context(), &tag))
}

// CreateCampaign godoc
// @Summary 创建活动
// @Tags Manage
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   campaign  body   CreateCampaignRequest  true  "活动"
// @Success 201 {object} model.CampaignLink
// @Failure 409 {object} map[string]string "ID 已存在"
// @Router /api/campaigns [post]
func (h *ManageHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	accountID := mustAccount(c)
	campaign := model.CampaignLink{CampaignID: req.CampaignID, LinkID: req.LinkID, AccountID: &accountID}
	h.created(c, &campaign, h.store.CreateCampaignLink(c.Request.Context(), &campaign))
}

// CreateLink godoc
// @Summary 创建链接
// @Tags Manage
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   link  body   CreateLinkRequest  true  "链接"
// @Success 201 {object} model.LinkURL
// @Failure 409 {object} map[string]string "ID 已存在"
// @Router /api/links [post]
func (h *ManageHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if !manage.ValidURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link_url must be an absolute http(s) URL"})
		return
	}
	accountID := mustAccount(c)
	link := model.LinkURL{LinkID: req.LinkID, Label: req.Label, URL: req.URL, AccountID: &accountID}
	h.created(c, &link, h.store.CreateLinkURL(c.Request.Context(), &link))
}

func (h *ManageHandler) created(c *gin.Context, obj any, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, obj)
	case errors.Is(err, store.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": "id already exists"})
	default:
		h.logger.Errorf("创建记录失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create record"})
	}
}

// done 提交成功后带提示回到同一页面
func (h *ManageHandler) done(c *gin.Context) {
	setFlash(c, updatedMessage)
	c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
}

func (h *ManageHandler) fail(c *gin.Context, msg string, err error) {
	h.logger.Errorf("%s: %v", msg, err)
	c.String(http.StatusInternalServerError, "Internal server error.")
}

// formValues 解析一次表单并返回全部字段
func formValues(c *gin.Context) url.Values {
	if err := c.Request.ParseForm(); err != nil {
		return nil
	}
	return c.Request.PostForm
}
