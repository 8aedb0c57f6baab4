// Package batch 批量创建 NFC 标签。
//
// 一个批次共享一个随机生成的批次 ID，批次内的标签 ID 为 "<batch_id>-<i>"，
// i 从 0 开始。标签和批次汇总在同一个事务中写入，要么全部可见，要么都不可见。
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfc-redirect-platform/internal/metrics"
	"nfc-redirect-platform/internal/model"

	"go.uber.org/zap"
)

// MaxTagsPerBatch 单次请求允许创建的最大标签数
const MaxTagsPerBatch = 10

var (
	ErrLimitExceeded    = fmt.Errorf("limit exceeded: at most %d tags per batch", MaxTagsPerBatch)
	ErrInvalidCount     = errors.New("num_tags must be at least 1")
	ErrCampaignRequired = errors.New("camp_id is required")
	ErrPersistence      = errors.New("persistence failure")
	ErrBatchNotFound    = errors.New("batch not found")
)

// IDSource 提供全局唯一的批次 ID
type IDSource interface {
	NewID(ctx context.Context) (string, error)
}

// Store 批次持久化
type Store interface {
	CreateBatch(ctx context.Context, batch *model.Batch, tags []model.Tag) error
	BatchByID(ctx context.Context, batchID string) (*model.Batch, error)
	TagsByBatch(ctx context.Context, batchID string) ([]model.Tag, error)
}

// Request 批量创建请求
type Request struct {
	CampaignID string
	Count      int
	Label      string
	AccountID  *uint
}

// Summary 批量创建结果
type Summary struct {
	BatchID    string   `json:"batch_id"`
	CampaignID string   `json:"camp_id"`
	Label      string   `json:"batch_label"`
	Count      int      `json:"num_tags"`
	TagIDs     []string `json:"tag_ids"`
}

// Allocator 批量标签分配器
type Allocator struct {
	store  Store
	ids    IDSource
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewAllocator 创建分配器
func NewAllocator(store Store, ids IDSource, logger *zap.SugaredLogger) *Allocator {
	return &Allocator{
		store:  store,
		ids:    ids,
		logger: logger.Named("batch"),
		now:    time.Now,
	}
}

// TagID 批次内第 i 个标签的 ID
func TagID(batchID string, i int) string {
	return fmt.Sprintf("%s-%d", batchID, i)
}

// Validate 在任何写入之前检查请求
func (r Request) Validate() error {
	if r.Count > MaxTagsPerBatch {
		return ErrLimitExceeded
	}
	if r.Count < 1 {
		return ErrInvalidCount
	}
	if r.CampaignID == "" {
		return ErrCampaignRequired
	}
	return nil
}

// Create 生成批次 ID 并在一个事务中写入全部标签和批次记录
func (a *Allocator) Create(ctx context.Context, req Request) (*Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batchID, err := a.ids.NewID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: allocate batch id: %v", ErrPersistence, err)
	}

	createdAt := a.now().UTC()
	tags := make([]model.Tag, req.Count)
	tagIDs := make([]string, req.Count)
	for i := range tags {
		tagIDs[i] = TagID(batchID, i)
		tags[i] = model.Tag{
			TagID:      tagIDs[i],
			CampaignID: req.CampaignID,
			BatchID:    batchID,
			BatchLabel: req.Label,
			AccountID:  req.AccountID,
			CreatedAt:  createdAt,
		}
	}

	record := &model.Batch{
		BatchID:    batchID,
		Label:      req.Label,
		NumTags:    req.Count,
		CampaignID: req.CampaignID,
		AccountID:  req.AccountID,
		CreatedAt:  createdAt,
	}
	if err := a.store.CreateBatch(ctx, record, tags); err != nil {
		a.logger.Errorw("批次写入失败", "batch_id", batchID, "camp_id", req.CampaignID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.BatchesCreated.Inc()
	metrics.TagsCreated.Add(float64(req.Count))
	a.logger.Infow("批次创建成功", "batch_id", batchID, "camp_id", req.CampaignID, "num_tags", req.Count)

	return &Summary{
		BatchID:    batchID,
		CampaignID: req.CampaignID,
		Label:      req.Label,
		Count:      req.Count,
		TagIDs:     tagIDs,
	}, nil
}
