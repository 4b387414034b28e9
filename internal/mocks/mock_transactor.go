package mocks

import (
	"context"

	"github.com/larkes/communities-api/domain"
)

// MockTransactor implements domain.Transactor interface for testing.
// By default fn runs against Users and Companies with no rollback.
type MockTransactor struct {
	Users        domain.UserRepository
	Companies    domain.CompanyRepository
	WithinTxFunc func(ctx context.Context, fn func(users domain.UserRepository, companies domain.CompanyRepository) error) error
	Calls        int
}

// NewMockTransactor creates a new MockTransactor over the given repositories
func NewMockTransactor(users domain.UserRepository, companies domain.CompanyRepository) *MockTransactor {
	return &MockTransactor{Users: users, Companies: companies}
}

// WithinTx runs fn
func (m *MockTransactor) WithinTx(ctx context.Context, fn func(users domain.UserRepository, companies domain.CompanyRepository) error) error {
	m.Calls++
	if m.WithinTxFunc != nil {
		return m.WithinTxFunc(ctx, fn)
	}
	return fn(m.Users, m.Companies)
}

// Compile-time interface compliance verification
var _ domain.Transactor = (*MockTransactor)(nil)
