package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fms-support/internal/auth"
	"github.com/spec-kit/fms-support/internal/config"
	"github.com/spec-kit/fms-support/internal/domain"
	"github.com/spec-kit/fms-support/internal/repository"
	"github.com/spec-kit/fms-support/pkg/util"
)

// OrgService manages companies, divisions, and account administration.
type OrgService struct {
	companies  repository.CompanyRepository
	divisions  repository.DivisionRepository
	users      repository.UserRepository
	bcryptCost int
}

// OrgDependencies encapsulates repositories required for org management.
type OrgDependencies struct {
	CompanyRepo  repository.CompanyRepository
	DivisionRepo repository.DivisionRepository
	UserRepo     repository.UserRepository
}

// NewOrgService constructs the service.
func NewOrgService(cfg config.Config, deps OrgDependencies) *OrgService {
	return &OrgService{
		companies:  deps.CompanyRepo,
		divisions:  deps.DivisionRepo,
		users:      deps.UserRepo,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

func requireAdmin(actor Actor) error {
	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return util.NewForbidden("admin role required")
	}
	return nil
}

// CreateCompany creates a new company.
func (s *OrgService) CreateCompany(ctx context.Context, actor Actor, name string) (*domain.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	company := &domain.Company{Name: name, IsActive: true}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, util.MapError(err)
	}
	return company, nil
}

// ListCompanies returns active companies for the intake form.
func (s *OrgService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.companies.ListActive(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return companies, nil
}

// UpdateCompany modifies company metadata.
func (s *OrgService) UpdateCompany(ctx context.Context, actor Actor, company *domain.Company) (*domain.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, util.MapError(err)
	}
	return company, nil
}

// CreateDivision creates a division under a company.
func (s *OrgService) CreateDivision(ctx context.Context, actor Actor, companyID, name string) (*domain.Division, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !company.IsActive {
		return nil, util.NewConflict("company inactive", map[string]any{"company_id": companyID})
	}
	division := &domain.Division{CompanyID: companyID, Name: name, IsActive: true}
	if err := s.divisions.Create(ctx, division); err != nil {
		return nil, util.MapError(err)
	}
	return division, nil
}

// ListDivisions lists the active divisions of a company.
func (s *OrgService) ListDivisions(ctx context.Context, companyID string) ([]domain.Division, error) {
	divisions, err := s.divisions.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return divisions, nil
}

// CreateAccount adds a new account with an explicit role. Granting
// master_admin takes a master_admin actor.
func (s *OrgService) CreateAccount(ctx context.Context, actor Actor, fullName, email, password string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role == domain.RoleMasterAdmin && actor.Role != domain.RoleMasterAdmin {
		return nil, util.NewForbidden("granting master admin requires master admin")
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, util.NewConflict("email already exists", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}

// SetAccountRole changes an account's role.
func (s *OrgService) SetAccountRole(ctx context.Context, actor Actor, userID string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role == domain.RoleMasterAdmin && actor.Role != domain.RoleMasterAdmin {
		return nil, util.NewForbidden("granting master admin requires master admin")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, util.MapError(err)
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}

// SetAccountStatus suspends or reactivates an account.
func (s *OrgService) SetAccountStatus(ctx context.Context, actor Actor, userID string, status domain.UserStatus) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, util.MapError(err)
	}
	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}
