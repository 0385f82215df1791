// Package accounts implements the marketplace identity module: user records,
// registration, CRUD and JWT-based authentication.
package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/markethaus/marketplace-api/internal/domain"
)

// TokenPair holds an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Authenticator issues and validates session tokens.
type Authenticator interface {
	// GenerateTokens mints an access/refresh pair for an authenticated user.
	// The access token carries email, role and full_name claims.
	GenerateTokens(ctx context.Context, user *domain.User) (*TokenPair, error)
	ValidateAccessToken(ctx context.Context, token string) (userID string, role domain.Role, err error)
	// RefreshAccessToken validates a refresh token and mints a new access token.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// Service provides accounts business logic.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new accounts service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{
		repo: repo,
		auth: auth,
	}
}

// RegisterInput holds data for creating a user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// Register creates a regular user. The email domain is normalized to lower
// case, names are title-cased, and the password is checked against the
// strength policy and bcrypt-hashed before anything is persisted.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, false, false)
}

// SuperuserInput holds data for the administrative superuser creation path.
// Nil flags default to true; explicitly disabling either flag is rejected.
type SuperuserInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsStaff     *bool
	IsSuperuser *bool
}

// CreateSuperuser creates a user with both elevation flags set.
func (s *Service) CreateSuperuser(ctx context.Context, input SuperuserInput) (*domain.User, error) {
	if input.IsStaff != nil && !*input.IsStaff {
		return nil, fmt.Errorf("%w: is_staff must be true", ErrSuperuserFlags)
	}
	if input.IsSuperuser != nil && !*input.IsSuperuser {
		return nil, fmt.Errorf("%w: is_superuser must be true", ErrSuperuserFlags)
	}

	return s.createUser(ctx, RegisterInput{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}, true, true)
}

func (s *Service) createUser(ctx context.Context, input RegisterInput, isStaff, isSuperuser bool) (*domain.User, error) {
	if input.Email == "" {
		return nil, ErrEmailRequired
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	email := NormalizeEmail(input.Email)
	firstName := NormalizeName(input.FirstName)
	lastName := NormalizeName(input.LastName)

	if err := ValidatePassword(input.Password, email, firstName, lastName); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
		IsStaff:      isStaff,
		IsSuperuser:  isSuperuser,
		// Postgres stores microseconds; truncate so the value read back
		// compares equal to the one returned at creation.
		DateJoined: time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	recordRegistration(string(user.Role))

	return user, nil
}

// GetUserByID returns a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns all users, most recently joined first.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateInput holds a sparse update: nil fields are left untouched.
// A non-nil Password rotates the stored credential hash.
type UpdateInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Role      *domain.Role
	IsActive  *bool
}

// UpdateUser applies the supplied fields to an existing user and persists it.
func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateInput) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}
	if input.FirstName != nil {
		user.FirstName = NormalizeName(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = NormalizeName(*input.LastName)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, *input.Role)
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if err := ValidatePassword(*input.Password, user.Email, user.FirstName, user.LastName); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user record.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a token pair. Credential mismatch,
// unknown email and inactive accounts are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, *TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		recordLogin("failure")
		return nil, nil, ErrInvalidCredentials
	}

	if !CheckPassword(user.PasswordHash, input.Password) {
		recordLogin("failure")
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		recordLogin("failure")
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.auth.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	recordLogin("success")

	return user, tokens, nil
}

// RefreshAccessToken mints a new access token from a valid refresh token.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	return s.auth.RefreshAccessToken(ctx, refreshToken)
}

// ValidateAccessToken validates a bearer token for the auth middleware.
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (string, domain.Role, error) {
	return s.auth.ValidateAccessToken(ctx, token)
}
