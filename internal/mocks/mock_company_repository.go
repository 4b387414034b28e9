package mocks

import (
	"context"

	"github.com/larkes/communities-api/domain"
)

// MockCompanyRepository implements domain.CompanyRepository interface for testing
type MockCompanyRepository struct {
	CreateFunc      func(ctx context.Context, cmd domain.CreateCompanyCommand) (*domain.Company, error)
	FindByIDFunc    func(ctx context.Context, id string) (*domain.Company, error)
	FindByOwnerFunc func(ctx context.Context, userID string) (*domain.Company, error)
	UpdateFunc      func(ctx context.Context, id string, cmd domain.UpdateCompanyCommand) (*domain.Company, error)
}

// NewMockCompanyRepository creates a new MockCompanyRepository with default behaviors
func NewMockCompanyRepository() *MockCompanyRepository {
	return &MockCompanyRepository{}
}

// Create creates a company
func (m *MockCompanyRepository) Create(ctx context.Context, cmd domain.CreateCompanyCommand) (*domain.Company, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, cmd)
	}
	return &domain.Company{
		ID:          "company-1",
		Name:        cmd.Name,
		Description: cmd.Description,
		OwnerUserID: cmd.OwnerUserID,
	}, nil
}

// FindByID finds a company by ID
func (m *MockCompanyRepository) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrCompanyNotFound
}

// FindByOwner finds the company owned by a user
func (m *MockCompanyRepository) FindByOwner(ctx context.Context, userID string) (*domain.Company, error) {
	if m.FindByOwnerFunc != nil {
		return m.FindByOwnerFunc(ctx, userID)
	}
	return nil, domain.ErrCompanyNotFound
}

// Update changes company fields
func (m *MockCompanyRepository) Update(ctx context.Context, id string, cmd domain.UpdateCompanyCommand) (*domain.Company, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, cmd)
	}
	return nil, domain.ErrCompanyNotFound
}

// Compile-time interface compliance verification
var _ domain.CompanyRepository = (*MockCompanyRepository)(nil)
