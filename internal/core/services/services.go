package services

import "github.com/vncsmyrnk/featurevote/internal/core/ports"

var (
	_ ports.UserService     = (*UserService)(nil)
	_ ports.IdentityService = (*IdentityService)(nil)
	_ ports.RoleService     = (*RoleService)(nil)
	_ ports.ProductService  = (*ProductService)(nil)
	_ ports.SessionService  = (*SessionService)(nil)
	_ ports.CatalogService  = (*CatalogService)(nil)
	_ ports.LedgerService   = (*LedgerService)(nil)
	_ ports.BudgetService   = (*BudgetService)(nil)
	_ ports.ResultsService  = (*ResultsService)(nil)
)
