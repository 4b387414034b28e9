package mocks

import "github.com/larkes/communities-api/domain"

// MockPolicyService implements domain.PolicyService interface for testing
type MockPolicyService struct {
	AddPolicyFunc       func(role, resource, action string) error
	RemovePolicyFunc    func(role, resource, action string) error
	CheckPermissionFunc func(role, resource, action string) (bool, error)
	GetPoliciesFunc     func() ([][]string, error)
}

// NewMockPolicyService creates a new MockPolicyService with default behaviors
func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{}
}

// AddPolicy adds a new authorization policy
func (m *MockPolicyService) AddPolicy(role, resource, action string) error {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(role, resource, action)
	}
	return nil
}

// RemovePolicy removes an authorization policy
func (m *MockPolicyService) RemovePolicy(role, resource, action string) error {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(role, resource, action)
	}
	return nil
}

// CheckPermission checks if a role has permission for a resource and action
func (m *MockPolicyService) CheckPermission(role, resource, action string) (bool, error) {
	if m.CheckPermissionFunc != nil {
		return m.CheckPermissionFunc(role, resource, action)
	}
	// Default behavior: only admins pass
	return role == "role_admin", nil
}

// GetPolicies returns all current policies
func (m *MockPolicyService) GetPolicies() ([][]string, error) {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	return [][]string{
		{"role_admin", "/admin/*", "(GET|POST|PUT|PATCH|DELETE)"},
	}, nil
}

// Compile-time interface compliance verification
var _ domain.PolicyService = (*MockPolicyService)(nil)
