package service

import (
	"context"
	"strings"

	"proconnect/internal/auth"
	"proconnect/internal/models"
	"proconnect/internal/observability"
	"proconnect/internal/repository"
	"proconnect/internal/validation"
)

// dummyHash is compared against when the email is unknown so that both login
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z0Dhk7Hc6Ym0q6J6nPR6pWnG"

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an account. Only the bcrypt hash of the password is stored.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "AuthService.Register")
	defer func() { end(err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = validation.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Password) == "" {
		in.Password = ""
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("Email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a bearer token. Unknown emails and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (result *LoginResult, err error) {
	ctx, end := observability.StartSpan(ctx, "AuthService.Login")
	defer func() { end(err) }()

	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = auth.CheckPassword(dummyHash, in.Password)
		return nil, models.NewAuthError("Invalid credentials")
	}
	if err := auth.CheckPassword(user.Password, in.Password); err != nil {
		return nil, models.NewAuthError("Invalid credentials")
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// Verify resolves a bearer token to its user ID.
func (s *AuthService) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}
