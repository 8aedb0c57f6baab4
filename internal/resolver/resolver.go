// Package resolver 把 NFC 标签解析为目标地址：tag -> campaign -> link -> URL。
//
// 每一跳都是按唯一键的查询，按顺序执行，任何一跳未命中立即返回对应的结果。
// 未命中是正常的业务结果，不是错误；error 只用于存储层故障。
// 任何一跳都不做缓存，映射被修改后下一次解析立即生效。
package resolver

import (
	"context"
	"fmt"
	"time"

	"nfc-redirect-platform/internal/metrics"
	"nfc-redirect-platform/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome 解析结果
type Outcome int

const (
	OutcomeResolved Outcome = iota
	OutcomeTagNotFound
	OutcomeCampaignNotFound
	OutcomeLinkNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeTagNotFound:
		return "tag_not_found"
	case OutcomeCampaignNotFound:
		return "campaign_not_found"
	case OutcomeLinkNotFound:
		return "link_not_found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Message 返回给扫码端的纯文本提示
func (o Outcome) Message() string {
	switch o {
	case OutcomeTagNotFound:
		return "NFC tag not found."
	case OutcomeCampaignNotFound:
		return "Campaign link not found."
	case OutcomeLinkNotFound:
		return "Link URL not found."
	default:
		return ""
	}
}

// Result 一次解析的完整结果，已经走到的各跳 ID 都会被填上
type Result struct {
	Outcome    Outcome
	TagID      string
	CampaignID string
	LinkID     string
	URL        string
}

// Found 是否解析到目标地址
func (r Result) Found() bool {
	return r.Outcome == OutcomeResolved
}

// Store 解析链依赖的三个查询，未找到时返回 (nil, nil)
type Store interface {
	TagByID(ctx context.Context, tagID string) (*model.Tag, error)
	CampaignLinkByID(ctx context.Context, campaignID string) (*model.CampaignLink, error)
	LinkURLByID(ctx context.Context, linkID string) (*model.LinkURL, error)
}

// Recorder 接收成功跳转的日志，必须立即返回
type Recorder interface {
	Record(entry model.RedirectLogEntry)
}

// Resolver 标签解析器
type Resolver struct {
	store    Store
	recorder Recorder
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// New 创建解析器，recorder 为 nil 时不记录跳转日志
func New(store Store, recorder Recorder, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		store:    store,
		recorder: recorder,
		logger:   logger.Named("resolver"),
		now:      time.Now,
	}
}

// Resolve 依次查询三跳并返回结果
func (r *Resolver) Resolve(ctx context.Context, tagID string) (Result, error) {
	result := Result{TagID: tagID}

	tag, err := r.store.TagByID(ctx, tagID)
	if err != nil {
		return result, fmt.Errorf("lookup tag %q: %w", tagID, err)
	}
	if tag == nil {
		return r.finish(result, OutcomeTagNotFound), nil
	}
	result.CampaignID = tag.CampaignID

	campaign, err := r.store.CampaignLinkByID(ctx, tag.CampaignID)
	if err != nil {
		return result, fmt.Errorf("lookup campaign %q: %w", tag.CampaignID, err)
	}
	if campaign == nil {
		return r.finish(result, OutcomeCampaignNotFound), nil
	}
	result.LinkID = campaign.LinkID

	link, err := r.store.LinkURLByID(ctx, campaign.LinkID)
	if err != nil {
		return result, fmt.Errorf("lookup link %q: %w", campaign.LinkID, err)
	}
	if link == nil {
		return r.finish(result, OutcomeLinkNotFound), nil
	}
	result.URL = link.URL

	return r.finish(result, OutcomeResolved), nil
}

// ResolveAndRecord 解析标签，成功时把跳转交给 recorder 异步记录
func (r *Resolver) ResolveAndRecord(ctx context.Context, tagID, domain string) (Result, error) {
	result, err := r.Resolve(ctx, tagID)
	if err != nil || !result.Found() || r.recorder == nil {
		return result, err
	}

	r.recorder.Record(model.RedirectLogEntry{
		ID:         uuid.NewString(),
		Timestamp:  r.now().UTC(),
		TagID:      result.TagID,
		CampaignID: result.CampaignID,
		LinkID:     result.LinkID,
		LinkURL:    result.URL,
		Domain:     domain,
	})
	return result, nil
}

func (r *Resolver) finish(result Result, outcome Outcome) Result {
	result.Outcome = outcome
	metrics.Resolutions.WithLabelValues(outcome.String()).Inc()
	if outcome != OutcomeResolved {
		r.logger.Debugw("标签解析未命中", "tag_id", result.TagID, "outcome", outcome.String())
	}
	return result
}
