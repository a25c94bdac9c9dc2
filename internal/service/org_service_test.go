package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/fms-support/internal/domain"
)

func newOrgFixture(users ...*domain.User) (*OrgService, *fakeCompanyRepo, *fakeDivisionRepo, *fakeUserRepo) {
	companies := &fakeCompanyRepo{companies: map[string]*domain.Company{}}
	divisions := &fakeDivisionRepo{divisions: map[string]*domain.Division{}}
	userRepo := newFakeUserRepo(users...)
	svc := NewOrgService(authTestConfig(), OrgDependencies{
		CompanyRepo:  companies,
		DivisionRepo: divisions,
		UserRepo:     userRepo,
	})
	return svc, companies, divisions, userRepo
}

func TestOrgMutationsRequireAdmin(t *testing.T) {
	svc, _, _, _ := newOrgFixture()
	actor := Actor{ID: "u1", Role: domain.RoleApprover}

	_, err := svc.CreateCompany(context.Background(), actor, "Acme")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.CreateDivision(context.Background(), actor, "co-1", "Billing")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.CreateAccount(context.Background(), actor, "Sam", "sam@example.com", "password-123", domain.RoleUser)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestCreateDivisionChecksCompany(t *testing.T) {
	svc, companies, _, _ := newOrgFixture()
	admin := Actor{ID: "a1", Role: domain.RoleAdmin}

	_, err := svc.CreateDivision(context.Background(), admin, "missing", "Billing")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	companies.companies["co-1"] = &domain.Company{ID: "co-1", Name: "Acme", IsActive: false}
	_, err = svc.CreateDivision(context.Background(), admin, "co-1", "Billing")
	assert.Equal(t, "CONFLICT", errCode(t, err))

	companies.companies["co-1"].IsActive = true
	division, err := svc.CreateDivision(context.Background(), admin, "co-1", "Billing")
	require.NoError(t, err)
	assert.Equal(t, "co-1", division.CompanyID)
	assert.True(t, division.IsActive)
}

func TestCreateAccountRoleCeiling(t *testing.T) {
	svc, _, _, users := newOrgFixture()
	admin := Actor{ID: "a1", Role: domain.RoleAdmin}
	master := Actor{ID: "m1", Role: domain.RoleMasterAdmin}

	_, err := svc.CreateAccount(context.Background(), admin, "Sam", "sam@example.com", "password-123", domain.RoleMasterAdmin)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	created, err := svc.CreateAccount(context.Background(), master, "Sam", "sam@example.com", "password-123", domain.RoleMasterAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMasterAdmin, created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password-123")))

	_, err = svc.CreateAccount(context.Background(), admin, "Sam Again", "sam@example.com", "password-123", domain.RoleUser)
	assert.Equal(t, "CONFLICT", errCode(t, err))

	stored, err := users.GetByEmail(context.Background(), "sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestSetAccountRoleAndStatus(t *testing.T) {
	existing := seededUser("dana@example.com", "password-123")
	svc, _, _, _ := newOrgFixture(existing)
	admin := Actor{ID: "a1", Role: domain.RoleAdmin}

	updated, err := svc.SetAccountRole(context.Background(), admin, existing.ID, domain.RoleApprover)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleApprover, updated.Role)

	_, err = svc.SetAccountRole(context.Background(), admin, existing.ID, domain.RoleMasterAdmin)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	suspended, err := svc.SetAccountStatus(context.Background(), admin, existing.ID, domain.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusSuspended, suspended.Status)
}
