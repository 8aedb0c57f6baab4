package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"nfc-redirect-platform/internal/batch"
	"nfc-redirect-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BatchAllocator 批量创建和导出标签
type BatchAllocator interface {
	Create(ctx context.Context, req batch.Request) (*batch.Summary, error)
	Export(ctx context.Context, batchID string, requester uint, baseURL string, w io.Writer) error
}

// BatchHandler 批量标签接口
type BatchHandler struct {
	allocator BatchAllocator
	baseURL   string
	logger    *zap.SugaredLogger
}

// NewBatchHandler 创建处理器实例
func NewBatchHandler(allocator BatchAllocator, baseURL string, logger *zap.SugaredLogger) *BatchHandler {
	return &BatchHandler{allocator: allocator, baseURL: baseURL, logger: logger.Named("batch_handler")}
}

// CreateBatchRequest 批量创建请求
type CreateBatchRequest struct {
	NumTags    int    `json:"num_tags" example:"3"`
	CampaignID string `json:"camp_id" binding:"required,identifier" example:"spring-2026"`
	BatchLabel string `json:"batch_label" binding:"max=100" example:"Spring flyers"`
}

// CreateBatchResponse 批量创建结果
type CreateBatchResponse struct {
	Message string   `json:"message" example:"Batch aB3dE5gH created with 3 tags."`
	BatchID string   `json:"batch_id" example:"aB3dE5gH"`
	NumTags int      `json:"num_tags" example:"3"`
	TagIDs  []string `json:"tag_ids"`
}

// CreateBatch godoc
// @Summary 批量创建标签
// @Description 为一个活动生成 num_tags 个标签 (最多 10 个)，共享同一个批次 ID
// @Tags Batch
// @Accept  json
// @Produce  json
// @Param   batch  body   CreateBatchRequest  true  "批次参数"
// @Success 201 {object} CreateBatchResponse "成功响应"
// @Failure 400 {object} map[string]string "超过上限或请求无效"
// @Failure 405 {object} map[string]string "方法不允许"
// @Failure 500 {object} map[string]string "服务器内部错误"
// @Router /api/create_batch [post]
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	batchReq := batch.Request{CampaignID: req.CampaignID, Count: req.NumTags, Label: req.BatchLabel}
	if id, ok := middleware.AccountID(c); ok {
		batchReq.AccountID = &id
	}

	summary, err := h.allocator.Create(c.Request.Context(), batchReq)
	switch {
	case err == nil:
	case errors.Is(err, batch.ErrLimitExceeded),
		errors.Is(err, batch.ErrInvalidCount),
		errors.Is(err, batch.ErrCampaignRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		h.logger.Errorw("批量创建标签失败", "camp_id", req.CampaignID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create batch"})
		return
	}

	c.JSON(http.StatusCreated, CreateBatchResponse{
		Message: fmt.Sprintf("Batch %s created with %d tags.", summary.BatchID, summary.Count),
		BatchID: summary.BatchID,
		NumTags: summary.Count,
		TagIDs:  summary.TagIDs,
	})
}

// ExportBatch godoc
// @Summary 导出批次
// @Description 以 XLSX 下载一个批次的全部标签和跳转地址
// @Tags Batch
// @Security ApiKeyAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   batch_id  path  string  true  "批次 ID"
// @Success 200 {file} file "XLSX 文件"
// @Failure 404 {object} map[string]string "批次不存在"
// @Router /api/batches/{batch_id}/export [get]
func (h *BatchHandler) ExportBatch(c *gin.Context) {
	batchID := c.Param("batch_id")
	accountID, _ := middleware.AccountID(c)

	var buf bytes.Buffer
	if err := h.allocator.Export(c.Request.Context(), batchID, accountID, h.baseURL, &buf); err != nil {
		if errors.Is(err, batch.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
			return
		}
		h.logger.Errorw("导出批次失败", "batch_id", batchID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export batch"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="batch-%s.xlsx"`, batchID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
