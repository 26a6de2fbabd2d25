package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72
	resetTokenBytes   = 32
	resetTokenTTL     = time.Hour
	defaultTokenTTL   = 30 * 24 * time.Hour
)

// UserService handles sign up, sign in, tokens and password resets
type UserService struct {
	profiles   ProfileStore
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewUserService creates a new user service
func NewUserService(profiles ProfileStore, jwtSecret string, tokenTTL time.Duration) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserService{
		profiles:   profiles,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// AuthResult is returned by sign up and sign in
type AuthResult struct {
	Profile *models.Profile `json:"profile"`
	Token   string          `json:"token"`
}

// SignUp registers a new profile and returns a session token
func (s *UserService) SignUp(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	profile := &models.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	token, err := s.GenerateJWT(profile.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Profile: profile, Token: token}, nil
}

// SignIn verifies credentials and returns a session token
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	profile, err := s.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if profile.Banned {
		return nil, ErrBanned
	}

	token, err := s.GenerateJWT(profile.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Profile: profile, Token: token}, nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse token: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: user_id not found in token", ErrUnauthorized)
	}
	return userID, nil
}

// Authenticate resolves a token to its profile, rejecting banned accounts
func (s *UserService) Authenticate(ctx context.Context, tokenString string) (*models.Profile, error) {
	userID, err := s.ValidateJWT(tokenString)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile no longer exists", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile.Banned {
		return nil, ErrBanned
	}
	return profile, nil
}

// RequestPasswordReset issues a one-hour reset token for the account with
// the given email. Unknown emails succeed silently.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	profile, err := s.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	expiresAt := s.now().Add(resetTokenTTL)
	if err := s.profiles.CreateResetToken(ctx, profile.ID, hashToken(token), expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	log.Info().
		Str("user_id", profile.ID).
		Str("reset_token", token).
		Time("expires_at", expiresAt).
		Msg("Password reset requested")
	return nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	// Hash first so a failure does not burn the single-use token
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.profiles.ConsumeResetToken(ctx, hashToken(token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("token", "is invalid or expired")
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if err := s.profiles.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// validatePassword enforces the length bounds; bcrypt only accepts up to 72 bytes
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") {
		return invalid("email", "must be a valid address")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "must be a valid address")
	}
	return nil
}
