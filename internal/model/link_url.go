package model

// LinkURL 最终跳转的目标地址
type LinkURL struct {
	LinkID    string `gorm:"column:link_id;primaryKey;size:50" json:"link_id"`
	Label     string `gorm:"column:link_label;size:50" json:"link_label"`
	URL       string `gorm:"column:link_url;type:text;not null" json:"link_url"`
	AccountID *uint  `gorm:"index" json:"account_id,omitempty"`
}

// TableName 指定表名
func (LinkURL) TableName() string {
	return "nfc_links"
}
