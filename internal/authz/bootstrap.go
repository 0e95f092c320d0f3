package authz

import (
	"fmt"

	"github.com/vendapay/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleSeller,
			Policies: []Policy{
				{Object: "/me", Action: "GET"},
				{Object: "/me", Action: "PATCH"},
				{Object: "/me/password", Action: "PUT"},
				{Object: "/auth/logout", Action: "POST"},
				{Object: "/authz/me", Action: "GET"},
				{Object: "/sales", Action: "GET"},
				{Object: "/sales", Action: "POST"},
				{Object: "/sales/:id", Action: "GET"},
				{Object: "/sales/:id", Action: "PUT"},
				{Object: "/sales/:id", Action: "DELETE"},
				{Object: "/commission-reports", Action: "GET"},
				{Object: "/commission-reports/:id", Action: "GET"},
				{Object: "/dashboard/summary", Action: "GET"},
			},
		},
		{
			Role:     constants.RoleManager,
			Inherits: []string{constants.RoleSeller},
			Policies: []Policy{
				{Object: "/accounts", Action: "GET"},
				{Object: "/accounts/:id", Action: "GET"},
				{Object: "/accounts/:id", Action: "PUT"},
				{Object: "/commission-reports", Action: "POST"},
				{Object: "/commission-reports/:id", Action: "PUT"},
				{Object: "/commission-reports/:id/recalculate", Action: "POST"},
				{Object: "/commission-reports/:id/logs", Action: "GET"},
				{Object: "/commission-reports/generate-all", Action: "POST"},
				{Object: "/commission-reports/export", Action: "GET"},
				{Object: "/dashboard/top-sellers", Action: "GET"},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleManager},
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
