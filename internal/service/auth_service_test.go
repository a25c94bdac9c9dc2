package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/fms-support/internal/config"
	"github.com/spec-kit/fms-support/internal/domain"
	"github.com/spec-kit/fms-support/internal/repository"
)

type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
	for _, u := range users {
		repo.byID[u.ID] = u
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = "usr-" + string(rune('0'+r.nextID))
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.byID {
		if u.Role == role && u.Status == domain.UserStatusActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	nextID int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.nextID++
	token.ID = "rst-" + string(rune('0'+r.nextID))
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	for _, token := range r.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func authTestConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   60,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              bcrypt.MinCost,
	}}
}

func seededUser(email, password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &domain.User{
		ID:           "usr-a",
		FullName:     "Dana Ops",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users, PasswordResetRepo: newFakeResetRepo()})

	user, token, exp, err := svc.Register(context.Background(), "Dana Ops", "dana@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	_, _, _, err = svc.Register(context.Background(), "Dana Ops", "dana@example.com", "hunter2hunter2")
	assert.Equal(t, "CONFLICT", errCode(t, err))

	logged, token2, _, err := svc.Login(context.Background(), "dana@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token2)
}

func TestLoginRejections(t *testing.T) {
	suspended := seededUser("sam@example.com", "letmein-letmein")
	suspended.Status = domain.UserStatusSuspended
	users := newFakeUserRepo(suspended)
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users, PasswordResetRepo: newFakeResetRepo()})

	_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever-pass")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	_, _, _, err = svc.Login(context.Background(), "sam@example.com", "letmein-letmein")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	suspended.Status = domain.UserStatusActive
	_, _, _, err = svc.Login(context.Background(), "sam@example.com", "wrong-password")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))
}

func TestPasswordResetFlow(t *testing.T) {
	user := seededUser("dana@example.com", "old-password-1")
	users := newFakeUserRepo(user)
	resets := newFakeResetRepo()
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users, PasswordResetRepo: resets})

	token, err := svc.RequestPasswordReset(context.Background(), "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, token.UserID)

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), token.Token, "new-password-1"))

	_, _, _, err = svc.Login(context.Background(), "dana@example.com", "new-password-1")
	assert.NoError(t, err)

	err = svc.ConfirmPasswordReset(context.Background(), token.Token, "another-pass-2")
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestChangePassword(t *testing.T) {
	user := seededUser("dana@example.com", "old-password-1")
	users := newFakeUserRepo(user)
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users, PasswordResetRepo: newFakeResetRepo()})

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "new-password-1")
	assert.Equal(t, "UNAUTHORIZED", errCode(t, err))

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "old-password-1", "new-password-1"))
	_, _, _, err = svc.Login(context.Background(), "dana@example.com", "new-password-1")
	assert.NoError(t, err)
}
