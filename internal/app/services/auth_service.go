package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/app/repositories"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/auth"
	"github.com/luct/reporting/internal/pkg/validation"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.UserStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
	now        Clock
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
		now:        defaultClock,
	}
}

// Register creates an account and signs the caller in
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	trim(&req.Name, &req.Faculty, &req.Role)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// multi-byte passwords can pass max=72 and still exceed bcrypt's byte limit
		return nil, apperrors.NewValidationError("Validation failed", map[string]string{
			"password": "password must be at most 72 bytes",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     req.Email,
		Password:  hash,
		Role:      role,
		Name:      req.Name,
		Faculty:   req.Faculty,
		CreatedAt: s.now(),
	}
	if _, err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")
	return s.issue(user)
}

// Login verifies credentials and returns a signed access token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Kind(err) == apperrors.KindNotFound {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Str("email", req.Email).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Profile returns the account behind actor
func (s *AuthService) Profile(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		User: user,
	}, nil
}
