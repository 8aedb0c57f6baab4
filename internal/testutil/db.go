// Package testutil 测试用的内存数据库和数据填充
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"nfc-redirect-platform/internal/model"
	"nfc-redirect-platform/internal/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB 为每个测试打开独立的内存 SQLite 数据库并完成迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "无法连接到内存数据库")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接保证事务串行，也让内存库在测试期间保持存活
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, store.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Chain 写入一条完整的 tag -> campaign -> link 链
func Chain(t testing.TB, db *gorm.DB, owner *uint, tagID, campID, linkID, url string) {
	t.Helper()
	require.NoError(t, db.Create(&model.LinkURL{LinkID: linkID, Label: linkID, URL: url, AccountID: owner}).Error)
	require.NoError(t, db.Create(&model.CampaignLink{CampaignID: campID, LinkID: linkID, AccountID: owner}).Error)
	require.NoError(t, db.Create(&model.Tag{TagID: tagID, CampaignID: campID, AccountID: owner}).Error)
}

// Account 创建一个账户并返回其 ID
func Account(t testing.TB, db *gorm.DB, username, password string) uint {
	t.Helper()
	account := model.Account{Username: username, CompanyName: username + " Inc."}
	require.NoError(t, account.SetPassword(password))
	require.NoError(t, db.Create(&account).Error)
	return account.ID
}
