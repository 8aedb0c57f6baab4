// Package store 基于 gorm 的数据访问层，是唯一的事实来源和并发协调点。
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"nfc-redirect-platform/internal/model"

	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrDuplicateKey  = errors.New("record already exists")
)

// Store 封装 gorm 连接
type Store struct {
	db *gorm.DB
}

// New 创建数据访问层
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Models 需要迁移的全部表
func Models() []any {
	return []any{
		&model.Tag{},
		&model.CampaignLink{},
		&model.LinkURL{},
		&model.Batch{},
		&model.Account{},
		&model.RedirectLogEntry{},
	}
}

// Migrate 自动迁移表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// Ping 检查数据库是否可用
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// first 按主键查找，不存在时返回 (nil, nil)
func first[T any](ctx context.Context, db *gorm.DB, column, value string) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where(column+" = ?", value).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询 %s=%s 失败: %w", column, value, err)
	}
	return &row, nil
}

// TagByID 按标签 ID 查找
func (s *Store) TagByID(ctx context.Context, tagID string) (*model.Tag, error) {
	return first[model.Tag](ctx, s.db, "tag_id", tagID)
}

// CampaignLinkByID 按活动 ID 查找
func (s *Store) CampaignLinkByID(ctx context.Context, campaignID string) (*model.CampaignLink, error) {
	return first[model.CampaignLink](ctx, s.db, "camp_id", campaignID)
}

// LinkURLByID 按链接 ID 查找
func (s *Store) LinkURLByID(ctx context.Context, linkID string) (*model.LinkURL, error) {
	return first[model.LinkURL](ctx, s.db, "link_id", linkID)
}

// BatchByID 按批次 ID 查找
func (s *Store) BatchByID(ctx context.Context, batchID string) (*model.Batch, error) {
	return first[model.Batch](ctx, s.db, "batch_id", batchID)
}

// BatchExists 检查批次 ID 是否已被占用
func (s *Store) BatchExists(ctx context.Context, batchID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Batch{}).Where("batch_id = ?", batchID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBatch 在同一个事务中写入批次记录和全部标签
func (s *Store) CreateBatch(ctx context.Context, batch *model.Batch, tags []model.Tag) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return classify(err)
		}
		if len(tags) == 0 {
			return nil
		}
		if err := tx.Create(&tags).Error; err != nil {
			return classify(err)
		}
		return nil
	})
}

// TagsByBatch 按序号顺序返回一个批次的标签
func (s *Store) TagsByBatch(ctx context.Context, batchID string) ([]model.Tag, error) {
	var tags []model.Tag
	if err := s.db.WithContext(ctx).Where("tag_batch_id = ?", batchID).Find(&tags).Error; err != nil {
		return nil, err
	}
	// "<batch>-10" 需要排在 "<batch>-9" 之后，按长度再按字典序
	sort.Slice(tags, func(i, j int) bool {
		a, b := tags[i].TagID, tags[j].TagID
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return tags, nil
}

// CreateTag 创建单个标签
func (s *Store) CreateTag(ctx context.Context, tag *model.Tag) error {
	return classify(s.db.WithContext(ctx).Create(tag).Error)
}

// CreateCampaignLink 创建活动
func (s *Store) CreateCampaignLink(ctx context.Context, campaign *model.CampaignLink) error {
	return classify(s.db.WithContext(ctx).Create(campaign).Error)
}

// CreateLinkURL 创建链接
func (s *Store) CreateLinkURL(ctx context.Context, link *model.LinkURL) error {
	return classify(s.db.WithContext(ctx).Create(link).Error)
}

// AppendRedirectLog 追加一条跳转日志
func (s *Store) AppendRedirectLog(ctx context.Context, entry *model.RedirectLogEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// classify 把主键/唯一约束冲突统一为 ErrDuplicateKey
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

// 未开启 TranslateError 时各驱动的错误文本
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
