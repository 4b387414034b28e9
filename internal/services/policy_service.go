package services

import (
	"fmt"

	"github.com/larkes/communities-api/domain"
)

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service. *casbin.Enforcer satisfies domain.CasbinEnforcer.
func NewPolicyService(enforcer domain.CasbinEnforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{enforcer: enforcer}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if _, err := p.enforcer.AddPolicy(role, resource, action); err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService. The last rule granting the admin role is never removed.
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	if role == domain.RoleAdmin.PolicySubject() {
		if err := p.keepAdminPolicy(resource, action); err != nil {
			return err
		}
	}
	if _, err := p.enforcer.RemovePolicy(role, resource, action); err != nil {
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return p.enforcer.SavePolicy()
}

// keepAdminPolicy refuses removing (resource, action) when it is the only admin rule left
func (p *PolicyServiceImpl) keepAdminPolicy(resource, action string) error {
	policies, err := p.enforcer.GetPolicy()
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	subject := domain.RoleAdmin.PolicySubject()
	adminRules, targeted := 0, false
	for _, rule := range policies {
		if len(rule) < 3 || rule[0] != subject {
			continue
		}
		adminRules++
		if rule[1] == resource && rule[2] == action {
			targeted = true
		}
	}
	if targeted && adminRules == 1 {
		return domain.ErrLastAdminPolicy
	}
	return nil
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() ([][]string, error) {
	return p.enforcer.GetPolicy()
}

var _ domain.PolicyService = (*PolicyServiceImpl)(nil)
