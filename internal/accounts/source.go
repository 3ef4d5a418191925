package accounts

import (
	"context"

	"gorm.io/gorm"
)

type Source interface {
	LoadAll(ctx context.Context) ([]MasterAccount, error)
}

// DBSource reads accounts.master_accounts.
type DBSource struct {
	DB *gorm.DB
}

func (s DBSource) LoadAll(ctx context.Context) ([]MasterAccount, error) {
	var rows []MasterAccount
	err := s.DB.WithContext(ctx).
		Order("account_id").
		Find(&rows).Error
	return rows, err
}
