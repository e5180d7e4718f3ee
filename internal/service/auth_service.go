package service

import (
	"context"
	"strings"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/pkg/bcrypt"
	"github.com/sefazor/brandkit-backend/pkg/logger"
	"go.uber.org/zap"
)

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAuthService(users UserStore, tokens TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("email already exists")
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	logger.FromContext(ctx, s.log).Info("user registered", zap.Uint("user_id", user.ID))
	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		logger.FromContext(ctx, s.log).Info("login rejected", zap.Uint("user_id", user.ID))
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil || exists {
		return err
	}

	hashedPassword, err := bcrypt.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		FullName: "Administrator",
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("admin account created", zap.String("email", email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
