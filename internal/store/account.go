package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfc-redirect-platform/internal/model"

	"gorm.io/gorm"
)

// AccountByUsername 按用户名查找账户
func (s *Store) AccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return first[model.Account](ctx, s.db, "username", username)
}

// AccountByID 按 ID 查找账户
func (s *Store) AccountByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询账户 %d 失败: %w", id, err)
	}
	return &account, nil
}

// CreateAccount 创建账户，用户名重复时返回 ErrUsernameTaken
func (s *Store) CreateAccount(ctx context.Context, account *model.Account) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Account{}).Where("username = ?", account.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := classify(tx.Create(account).Error); err != nil {
			// 并发注册时由唯一索引兜底
			if errors.Is(err, ErrDuplicateKey) {
				return ErrUsernameTaken
			}
			return err
		}
		return nil
	})
}

// TouchLastLogin 更新账户最近登录时间
func (s *Store) TouchLastLogin(ctx context.Context, accountID uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", accountID).Update("last_login", at).Error
}
