package model

import "time"

// Batch 一次批量创建标签的汇总记录
type Batch struct {
	BatchID    string    `gorm:"column:batch_id;primaryKey;size:50" json:"batch_id"`
	Label      string    `gorm:"column:batch_label;size:100;not null" json:"batch_label"`
	NumTags    int       `gorm:"column:batch_num_tags;not null" json:"batch_num_tags"`
	CampaignID string    `gorm:"column:batch_camp_id;size:50;not null" json:"batch_camp_id"`
	AccountID  *uint     `gorm:"index" json:"account_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Batch) TableName() string {
	return "nfc_batches"
}
