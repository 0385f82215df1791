package accounts

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/markethaus/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User // keyed by email
	createUserErr error
	updateUserErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	if _, exists := m.users[user.Email]; exists {
		return ErrEmailExists
	}
	u := *user
	m.users[user.Email] = &u
	return nil
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) ListUsers(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].DateJoined.After(users[j].DateJoined)
	})
	return users, nil
}

func (m *mockRepository) UpdateUser(_ context.Context, user *domain.User) error {
	if m.updateUserErr != nil {
		return m.updateUserErr
	}
	for email, u := range m.users {
		if u.ID == user.ID {
			delete(m.users, email)
			copied := *user
			m.users[user.Email] = &copied
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *mockRepository) DeleteUser(_ context.Context, id string) error {
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return ErrUserNotFound
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	generateErr error
	refreshErr  error
}

func (m *mockAuthenticator) GenerateTokens(_ context.Context, _ *domain.User) (*TokenPair, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
}

func (m *mockAuthenticator) ValidateAccessToken(_ context.Context, _ string) (string, domain.Role, error) {
	return "", "", nil
}

func (m *mockAuthenticator) RefreshAccessToken(_ context.Context, _ string) (string, error) {
	if m.refreshErr != nil {
		return "", m.refreshErr
	}
	return "fresh-access-token", nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, &mockAuthenticator{})
}

func TestRegister_CreatesUserWithDefaults(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := newTestService(repo)

	// Act
	user, err := service.Register(context.Background(), RegisterInput{
		Email:     "jane.doe@Example.COM",
		Password:  "correct-horse-battery",
		FirstName: "  jane  ",
		LastName:  "doe",
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "jane.doe@example.com", user.Email, "email domain should be lowercased")
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.Equal(t, domain.RoleCustomer, user.Role, "role should default to customer")
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.False(t, user.DateJoined.IsZero())
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "hash@example.com",
		Password: "correct-horse-battery",
	})

	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash)
	assert.True(t, CheckPassword(user.PasswordHash, "correct-horse-battery"))
	assert.False(t, CheckPassword(user.PasswordHash, "wrong-password"))
}

func TestRegister_EmptyEmail(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	user, err := service.Register(context.Background(), RegisterInput{
		Password: "correct-horse-battery",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailRequired)
	assert.Empty(t, repo.users, "no record should be persisted")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "dup@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "dup@example.com",
		Password: "another-password-42",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_InvalidRole(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "role@example.com",
		Password: "correct-horse-battery",
		Role:     domain.Role("wizard"),
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_WeakPasswordNotPersisted(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "weak@example.com",
		Password: "12345678",
	})

	assert.Nil(t, user)
	var policyErr *PasswordPolicyError
	assert.ErrorAs(t, err, &policyErr)
	assert.Empty(t, repo.users)
}

func TestCreateSuperuser_SetsElevationFlags(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	user, err := service.CreateSuperuser(context.Background(), SuperuserInput{
		Email:    "root@example.com",
		Password: "correct-horse-battery",
	})

	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.Equal(t, domain.RoleCustomer, user.Role)
}

func TestCreateSuperuser_RejectsExplicitFalseFlags(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)
	falseFlag := false

	user, err := service.CreateSuperuser(context.Background(), SuperuserInput{
		Email:    "root@example.com",
		Password: "correct-horse-battery",
		IsStaff:  &falseFlag,
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrSuperuserFlags)
	assert.Empty(t, repo.users)

	user, err = service.CreateSuperuser(context.Background(), SuperuserInput{
		Email:       "root@example.com",
		Password:    "correct-horse-battery",
		IsSuperuser: &falseFlag,
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrSuperuserFlags)
	assert.Empty(t, repo.users)
}

func TestUpdateUser_SparseFields(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:     "sparse@example.com",
		Password:  "correct-horse-battery",
		FirstName: "jane",
		LastName:  "doe",
	})
	require.NoError(t, err)

	firstName := "janet"
	updated, err := service.UpdateUser(context.Background(), created.ID, UpdateInput{
		FirstName: &firstName,
	})

	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName, "untouched fields keep their values")
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.DateJoined, updated.DateJoined)
}

func TestUpdateUser_WithoutPasswordKeepsCredential(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "keep@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	lastName := "smith"
	updated, err := service.UpdateUser(context.Background(), created.ID, UpdateInput{
		LastName: &lastName,
	})

	require.NoError(t, err)
	assert.True(t, CheckPassword(updated.PasswordHash, "correct-horse-battery"),
		"old password should still authenticate")
}

func TestUpdateUser_PasswordRotation(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "rotate@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	newPassword := "completely-different-9"
	updated, err := service.UpdateUser(context.Background(), created.ID, UpdateInput{
		Password: &newPassword,
	})

	require.NoError(t, err)
	assert.False(t, CheckPassword(updated.PasswordHash, "correct-horse-battery"),
		"old password should no longer authenticate")
	assert.True(t, CheckPassword(updated.PasswordHash, newPassword))
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "first@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	second, err := service.Register(context.Background(), RegisterInput{
		Email:    "second@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	takenEmail := "first@example.com"
	updated, err := service.UpdateUser(context.Background(), second.ID, UpdateInput{
		Email: &takenEmail,
	})

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUpdateUser_NotFound(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	email := "ghost@example.com"
	updated, err := service.UpdateUser(context.Background(), "missing-id", UpdateInput{
		Email: &email,
	})

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_Success(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "login@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	user, tokens, err := service.Login(context.Background(), LoginInput{
		Email:    "login@example.com",
		Password: "correct-horse-battery",
	})

	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLogin_NormalizesEmailDomain(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "case@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), LoginInput{
		Email:    "case@EXAMPLE.COM",
		Password: "correct-horse-battery",
	})

	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "wrong@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	user, tokens, err := service.Login(context.Background(), LoginInput{
		Email:    "wrong@example.com",
		Password: "not-the-password",
	})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// The stored record is unaffected.
	stored, err := repo.GetUserByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, CheckPassword(stored.PasswordHash, "correct-horse-battery"))
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	user, tokens, err := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "correct-horse-battery",
	})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "inactive@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	inactive := false
	_, err = service.UpdateUser(context.Background(), created.ID, UpdateInput{
		IsActive: &inactive,
	})
	require.NoError(t, err)

	user, tokens, err := service.Login(context.Background(), LoginInput{
		Email:    "inactive@example.com",
		Password: "correct-horse-battery",
	})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteUser(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo)

	created, err := service.Register(context.Background(), RegisterInput{
		Email:    "delete@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(context.Background(), created.ID))

	_, err = service.GetUserByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, service.DeleteUser(context.Background(), created.ID), ErrUserNotFound)
}

func TestRegister_RepositoryFailure(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("database error")
	service := newTestService(repo)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "fail@example.com",
		Password: "correct-horse-battery",
	})

	assert.Nil(t, user)
	assert.Error(t, err)
}
