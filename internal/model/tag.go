package model

import (
	"time"
)

// Tag NFC 标签，指向一个活动 (campaign)
type Tag struct {
	TagID      string    `gorm:"column:tag_id;primaryKey;size:50" json:"tag_id"`
	CampaignID string    `gorm:"column:tag_camp_id;size:50;not null;index" json:"camp_id"`
	BatchID    string    `gorm:"column:tag_batch_id;size:50;index" json:"batch_id,omitempty"`
	BatchLabel string    `gorm:"column:tag_batch_label;size:100" json:"batch_label,omitempty"`
	AccountID  *uint     `gorm:"index" json:"account_id,omitempty"`
	CreatedAt  time.Time `gorm:"column:tag_creation_date;not null" json:"created_at"`
}

// TableName 指定表名
func (Tag) TableName() string {
	return "nfc_tags"
}

// CampaignLink 活动当前指向的链接
type CampaignLink struct {
	CampaignID string `gorm:"column:camp_id;primaryKey;size:50" json:"camp_id"`
	LinkID     string `gorm:"column:camp_link_id;size:50;not null" json:"link_id"`
	AccountID  *uint  `gorm:"index" json:"account_id,omitempty"`
}

func (CampaignLink) TableName() string {
	return "nfc_campaigns"
}
