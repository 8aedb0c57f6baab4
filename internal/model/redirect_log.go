package model

import (
	"time"
)

// RedirectLogEntry 一次成功跳转的追加日志
type RedirectLogEntry struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	TagID      string    `gorm:"size:50;not null" json:"tag_id"`
	CampaignID string    `gorm:"size:50;not null" json:"campaign_id"`
	LinkID     string    `gorm:"size:50;not null" json:"link_id"`
	LinkURL    string    `gorm:"type:text;not null" json:"link_url"`
	Domain     string    `gorm:"size:255" json:"domain"`
}

func (RedirectLogEntry) TableName() string {
	return "nfc_redirect_log"
}
