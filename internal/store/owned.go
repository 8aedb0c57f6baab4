package store

import (
	"context"
	"sort"

	"nfc-redirect-platform/internal/model"

	"gorm.io/gorm"
)

// LinkEdit 链接的可编辑字段，空字符串表示保持不变
type LinkEdit struct {
	Label string
	URL   string
}

// TagsByAccount 列出账户拥有的标签
func (s *Store) TagsByAccount(ctx context.Context, accountID uint) ([]model.Tag, error) {
	var tags []model.Tag
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Order("tag_id").Find(&tags).Error
	return tags, err
}

// CampaignLinksByAccount 列出账户拥有的活动
func (s *Store) CampaignLinksByAccount(ctx context.Context, accountID uint) ([]model.CampaignLink, error) {
	var campaigns []model.CampaignLink
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Order("camp_id").Find(&campaigns).Error
	return campaigns, err
}

// LinkURLsByAccount 列出账户拥有的链接
func (s *Store) LinkURLsByAccount(ctx context.Context, accountID uint) ([]model.LinkURL, error) {
	var links []model.LinkURL
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Order("link_id").Find(&links).Error
	return links, err
}

// UpdateTagCampaigns 在一个事务中修改账户标签指向的活动，返回实际修改的行数
func (s *Store) UpdateTagCampaigns(ctx context.Context, accountID uint, edits map[string]string) (int64, error) {
	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tagID := range sortedKeys(edits) {
			res := tx.Model(&model.Tag{}).
				Where("tag_id = ? AND account_id = ?", tagID, accountID).
				Update("tag_camp_id", edits[tagID])
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// UpdateCampaignLinks 在一个事务中修改账户活动指向的链接
func (s *Store) UpdateCampaignLinks(ctx context.Context, accountID uint, edits map[string]string) (int64, error) {
	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, campID := range sortedKeys(edits) {
			res := tx.Model(&model.CampaignLink{}).
				Where("camp_id = ? AND account_id = ?", campID, accountID).
				Update("camp_link_id", edits[campID])
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// UpdateLinkURLs 在一个事务中修改账户链接的标签和地址，空字段不覆盖
func (s *Store) UpdateLinkURLs(ctx context.Context, accountID uint, edits map[string]LinkEdit) (int64, error) {
	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, linkID := range sortedKeys(edits) {
			edit := edits[linkID]
			fields := map[string]any{}
			if edit.Label != "" {
				fields["link_label"] = edit.Label
			}
			if edit.URL != "" {
				fields["link_url"] = edit.URL
			}
			if len(fields) == 0 {
				continue
			}
			res := tx.Model(&model.LinkURL{}).
				Where("link_id = ? AND account_id = ?", linkID, accountID).
				Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
