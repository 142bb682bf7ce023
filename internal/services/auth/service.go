// Package auth is the token collaborator: registration, login, and the
// JWT claims the protected routes run on.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"kopa/internal/config"
	"kopa/internal/models"
	"kopa/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

type RegisterRequest struct {
	Email    string
	Phone    string
	Username string
	Password string
	Role     string
}

type Service interface {
	// Register creates the user and provisions their wallet in one step;
	// every owner has exactly one wallet from the moment they exist.
	Register(ctx context.Context, req RegisterRequest) (*models.User, *models.Wallet, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

type service struct {
	owners          repositories.OwnerRepository
	wallets         repositories.WalletRepository
	defaultCurrency string
}

func NewService(owners repositories.OwnerRepository, wallets repositories.WalletRepository, defaultCurrency string) Service {
	if owners == nil {
		panic("owner repository is required")
	}
	if wallets == nil {
		panic("wallet repository is required")
	}
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &service{owners: owners, wallets: wallets, defaultCurrency: defaultCurrency}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, *models.Wallet, error) {
	if len(req.Password) < 8 {
		return nil, nil, ErrWeakPassword
	}
	if _, err := s.owners.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Email:    req.Email,
		Phone:    req.Phone,
		Username: req.Username,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.owners.CreateUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	wallet := &models.Wallet{
		UserID:       &user.ID,
		WalletNumber: NewWalletNumber(),
		Currency:     s.defaultCurrency,
		Status:       models.WalletStatusActive,
	}
	if err := s.wallets.Create(wallet); err != nil {
		return nil, nil, fmt.Errorf("failed to provision wallet: %w", err)
	}
	return user, wallet, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.owners.GetUserByEmail(ctx, email)
	if err != nil {
		log.Printf("login failed: no user for %s", email)
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: bad password for user %d", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(&models.UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// NewWalletNumber produces a new opaque wallet number.
func NewWalletNumber() string {
	return "KP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// GenerateToken signs an access token for the given claims. The secret
// comes from JWT_SECRET.
func GenerateToken(claims *models.UserClaims) (string, error) {
	secret := config.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return "", errors.New("JWT_SECRET not configured")
	}

	now := time.Now()
	full := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "kopa-api",
			Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
		},
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, full).SignedString([]byte(secret))
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenStr string) (*models.UserClaims, error) {
	secret := config.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
