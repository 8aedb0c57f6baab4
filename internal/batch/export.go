package batch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Tags"

var exportHeader = []any{"Tag ID", "Campaign ID", "Batch ID", "Batch Label", "Created At", "Redirect URL"}

// Export 把一个批次的标签写成 XLSX，用于写入实体标签。
// 有归属账户的批次只能由该账户导出。
func (a *Allocator) Export(ctx context.Context, batchID string, requester uint, baseURL string, w io.Writer) error {
	record, err := a.store.BatchByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if record == nil || (record.AccountID != nil && *record.AccountID != requester) {
		return ErrBatchNotFound
	}
	tags, err := a.store.TagsByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			a.logger.Warnf("关闭导出文件失败: %v", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}

	base := strings.TrimRight(baseURL, "/")
	for i, tag := range tags {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			tag.TagID,
			tag.CampaignID,
			tag.BatchID,
			tag.BatchLabel,
			tag.CreatedAt.UTC().Format(time.RFC3339),
			base + "/redirect/" + tag.TagID,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}
