package analytics

import (
	"context"
	"errors"
	"fmt"

	"nfc-redirect-platform/internal/model"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"
)

// BigQueryConfig BigQuery 目标表和凭证
type BigQueryConfig struct {
	ProjectID   string
	Dataset     string
	Table       string
	Credentials string // service account JSON，为空时使用默认凭证
}

// BigQuerySink 流式插入 <project>.<dataset>.<table>
type BigQuerySink struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	table    string
}

// NewBigQuerySink 创建 BigQuery 客户端
func NewBigQuerySink(ctx context.Context, cfg BigQueryConfig) (*BigQuerySink, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" || cfg.Table == "" {
		return nil, errors.New("bigquery: project, dataset and table are required")
	}

	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.Credentials)))
	}
	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery: new client: %w", err)
	}

	return &BigQuerySink{
		client:   client,
		inserter: client.Dataset(cfg.Dataset).Table(cfg.Table).Inserter(),
		table:    fmt.Sprintf("%s.%s.%s", cfg.ProjectID, cfg.Dataset, cfg.Table),
	}, nil
}

func (s *BigQuerySink) Name() string { return "bigquery" }

func (s *BigQuerySink) Append(ctx context.Context, entry model.RedirectLogEntry) error {
	if err := s.inserter.Put(ctx, bigQueryRow(entry)); err != nil {
		return fmt.Errorf("bigquery: insert into %s: %w", s.table, err)
	}
	return nil
}

func (s *BigQuerySink) Close() error {
	return s.client.Close()
}

// bigQueryRow 实现 bigquery.ValueSaver，条目 ID 作为 insertId 用于去重
type bigQueryRow model.RedirectLogEntry

func (r bigQueryRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"timestamp":   r.Timestamp,
		"tag_id":      r.TagID,
		"campaign_id": r.CampaignID,
		"link_id":     r.LinkID,
		"link_url":    r.LinkURL,
		"domain":      r.Domain,
	}, r.ID, nil
}
