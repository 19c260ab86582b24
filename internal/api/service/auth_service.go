package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cosmetic-storefront/internal/config"
	"github.com/cosmetic-storefront/internal/domain/account"
)

// ErrInvalidCredentials covers unknown email and wrong password alike, so a
// login probe cannot tell registered emails apart
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	accountRepo   account.Repository
	jwtSecret     []byte
	tokenTTL      time.Duration
	signupCredits int64
	bcryptCost    int
}

// NewAuthService creates a new auth service
func NewAuthService(accountRepo account.Repository, cfg *config.AuthConfig) AuthService {
	return &AuthServiceImpl{
		accountRepo:   accountRepo,
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenTTL:      cfg.TokenTTL,
		signupCredits: cfg.SignupCredits,
		bcryptCost:    cfg.BcryptCost,
	}
}

// Register creates a new account with the signup credit grant and returns it
// together with a fresh token
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (*account.Account, string, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	acc, err := account.NewAccount(email, string(hash), s.signupCredits)
	if err != nil {
		return nil, "", err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(acc.ID)
	if err != nil {
		return nil, "", err
	}
	return acc, token, nil
}

// Login verifies the credentials and issues a token
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*account.Account, string, error) {
	acc, err := s.accountRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if acc == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(acc.ID)
	if err != nil {
		return nil, "", err
	}
	return acc, token, nil
}

// ChangePassword verifies the current password and stores a new hash
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	acc, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.accountRepo.UpdatePasswordHash(ctx, userID, string(hash))
}

func (s *AuthServiceImpl) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID.String(),
		"iat":    now.Unix(),
		"exp":    now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
