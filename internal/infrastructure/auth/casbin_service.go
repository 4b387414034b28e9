package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// DefaultPolicies are written on first boot when the policy table is empty
var DefaultPolicies = [][]string{
	{"role_admin", "/admin/*", "(GET|POST|PUT|PATCH|DELETE)"},
}

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService loads the RBAC model from modelPath and persists policies through GORM
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("casbin adapter: %w", err)
	}
	e, err := casbin.NewEnforcer(modelPath, adp)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("casbin load policy: %w", err)
	}
	return &CasbinService{E: e}, nil
}

// SeedDefaults adds DefaultPolicies if no policy exists yet. It reports whether anything was written.
func (s *CasbinService) SeedDefaults() (bool, error) {
	policies, err := s.E.GetPolicy()
	if err != nil {
		return false, err
	}
	if len(policies) > 0 {
		return false, nil
	}
	for _, p := range DefaultPolicies {
		if _, err := s.E.AddPolicy(p[0], p[1], p[2]); err != nil {
			return false, err
		}
	}
	return true, s.E.SavePolicy()
}
