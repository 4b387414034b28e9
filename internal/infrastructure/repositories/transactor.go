package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/larkes/communities-api/domain"
)

// GormTransactor implements domain.Transactor with a GORM transaction
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a transactor over db
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTx implements domain.Transactor
func (t *GormTransactor) WithinTx(ctx context.Context, fn func(users domain.UserRepository, companies domain.CompanyRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUserRepository(tx), NewCompanyRepository(tx))
	})
}

var _ domain.Transactor = (*GormTransactor)(nil)
