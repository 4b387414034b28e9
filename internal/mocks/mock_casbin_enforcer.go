package mocks

import (
	"fmt"

	"github.com/larkes/communities-api/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing.
// The default Enforce is an exact match against the stored policies.
type MockCasbinEnforcer struct {
	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)
	SavePolicyFunc   func() error

	SaveCalls int
	policies  [][]string
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with default behaviors
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{}
}

func toRule(params []interface{}) []string {
	rule := make([]string, len(params))
	for i, p := range params {
		rule[i] = fmt.Sprint(p)
	}
	return rule
}

func sameRule(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (m *MockCasbinEnforcer) indexOf(rule []string) int {
	for i, p := range m.policies {
		if sameRule(p, rule) {
			return i
		}
	}
	return -1
}

// AddPolicy adds a new policy rule
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	rule := toRule(params)
	if m.indexOf(rule) >= 0 {
		return false, nil
	}
	m.policies = append(m.policies, rule)
	return true, nil
}

// RemovePolicy removes a policy rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}
	i := m.indexOf(toRule(params))
	if i < 0 {
		return false, nil
	}
	m.policies = append(m.policies[:i], m.policies[i+1:]...)
	return true, nil
}

// Enforce checks if a request should be allowed
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	return m.indexOf(toRule(rvals)) >= 0, nil
}

// GetPolicy returns a copy of all policies
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	result := make([][]string, len(m.policies))
	for i, policy := range m.policies {
		result[i] = append([]string(nil), policy...)
	}
	return result, nil
}

// SavePolicy saves all policies
func (m *MockCasbinEnforcer) SavePolicy() error {
	m.SaveCalls++
	if m.SavePolicyFunc != nil {
		return m.SavePolicyFunc()
	}
	return nil
}
