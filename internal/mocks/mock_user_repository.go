package mocks

import (
	"context"

	"github.com/larkes/communities-api/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, cmd domain.CreateUserCommand) (*domain.User, error)
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByPhoneFunc func(ctx context.Context, phone string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	ListFunc        func(ctx context.Context) ([]*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, cmd domain.CreateUserCommand) (*domain.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, cmd)
	}
	// Default behavior: echo the command back with a fixed id
	return &domain.User{
		ID:           "user-1",
		Role:         cmd.Role,
		Phone:        cmd.Phone,
		Email:        cmd.Email,
		PasswordHash: cmd.PasswordHash,
	}, nil
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByPhone finds a user by phone number
func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// List returns all users
func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*domain.User{}, nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
