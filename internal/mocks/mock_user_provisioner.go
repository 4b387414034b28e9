package mocks

import (
	"context"

	"github.com/larkes/communities-api/domain"
)

// MockUserProvisioner implements domain.UserProvisioner interface for testing
type MockUserProvisioner struct {
	ProvisionStudentFunc func(ctx context.Context, phone string) (*domain.User, error)
}

// NewMockUserProvisioner creates a new MockUserProvisioner with default behaviors
func NewMockUserProvisioner() *MockUserProvisioner {
	return &MockUserProvisioner{}
}

// ProvisionStudent returns the student behind phone
func (m *MockUserProvisioner) ProvisionStudent(ctx context.Context, phone string) (*domain.User, error) {
	if m.ProvisionStudentFunc != nil {
		return m.ProvisionStudentFunc(ctx, phone)
	}
	return &domain.User{ID: "student-1", Role: domain.RoleStudent, Phone: phone}, nil
}

// Compile-time interface compliance verification
var _ domain.UserProvisioner = (*MockUserProvisioner)(nil)
