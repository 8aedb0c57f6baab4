package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Account 管理后台账户，拥有标签、活动和链接
type Account struct {
	gorm.Model
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	CompanyName  string `gorm:"type:varchar(100)"`
	LastLogin    *time.Time
}

// TableName 指定表名
func (Account) TableName() string {
	return "nfc_users"
}

// SetPassword 加密并设置密码
func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}
