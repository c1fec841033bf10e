package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vivesalud/productiva/internal/domain"
	"github.com/vivesalud/productiva/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	auditSvc   *AuditService
	log        *zap.Logger
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, auditSvc *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager, auditSvc: auditSvc, log: log}
}

func (s *AuthService) Login(ctx context.Context, email, password string, ip string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Burn a bcrypt comparison anyway so response time does not reveal
		// whether the email exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, false)
		s.log.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, true)

	claims := &domain.Claims{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           user.Role,
		ProfessionalID: user.ProfessionalID,
	}

	pair, err := s.jwtManager.GenerateTokenPair(claims)
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: user.Email, UserRole: string(user.Role),
		Action: "login", ResourceType: "usuario", ResourceID: user.ID.String(), IPAddress: ip,
	})

	return pair, nil
}

// RefreshToken issues a new access token given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate user is still active
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	updatedClaims := &domain.Claims{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           user.Role,
		ProfessionalID: user.ProfessionalID,
	}

	return s.jwtManager.GenerateTokenPair(updatedClaims)
}

// RegisterUser creates an account. Admin callers only; the default role is
// profesor.
func (s *AuthService) RegisterUser(ctx context.Context, email, name, password string, role domain.Role, professionalID *uuid.UUID, caller Caller) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	var fields []string
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fields = append(fields, "email is required")
	}
	if strings.TrimSpace(name) == "" {
		fields = append(fields, "nombre is required")
	}
	if len(password) < 8 {
		fields = append(fields, "password must be at least 8 characters")
	}
	if role == "" {
		role = domain.RoleProfesor
	} else if !role.IsValid() {
		fields = append(fields, "rol is invalid")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Email:          email,
		Name:           strings.TrimSpace(name),
		PasswordHash:   string(hash),
		Role:           role,
		ProfessionalID: professionalID,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserEmail: caller.Email, UserRole: string(caller.Role),
		Action: "create", ResourceType: "usuario", ResourceID: u.ID.String(), IPAddress: caller.IP,
	})

	return u, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if len(newPassword) < 8 {
		return &ValidationError{Fields: []string{"password must be at least 8 characters"}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}
