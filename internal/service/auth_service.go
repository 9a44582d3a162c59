package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"lumiere/internal/config"
	"lumiere/internal/database"
	"lumiere/internal/domain"
	"lumiere/internal/models"
	"lumiere/internal/repository"
)

// AuthService issues login codes over SMS and exchanges them for JWT
// access tokens. Email/password login remains for accounts created before
// phone login existed.
type AuthService struct {
	store    domain.Store
	otp      domain.OTPStore
	notifier domain.Notifier
	clock    domain.Clock
	secret   []byte
	devMode  bool
	admins   map[string]bool
	agents   map[string]bool
	logger   *zerolog.Logger
}

func NewAuthService(
	store domain.Store,
	otp domain.OTPStore,
	notifier domain.Notifier,
	clock domain.Clock,
	cfg config.AuthConfig,
	logger *zerolog.Logger,
) *AuthService {
	admins := make(map[string]bool, len(cfg.AdminPhones))
	for _, p := range cfg.AdminPhones {
		admins[p] = true
	}
	agents := make(map[string]bool, len(cfg.AgentPhones))
	for _, p := range cfg.AgentPhones {
		agents[p] = true
	}
	return &AuthService{
		store:    store,
		otp:      otp,
		notifier: notifier,
		clock:    clock,
		secret:   []byte(cfg.JWTSecret),
		devMode:  cfg.DevMode,
		admins:   admins,
		agents:   agents,
		logger:   logger,
	}
}

// SendOTP issues a six-digit login code with a five-minute lifetime. One
// code per phone per minute. In dev mode the code is returned to the
// caller instead of relying on SMS delivery.
func (s *AuthService) SendOTP(ctx context.Context, phone string) (devCode string, err error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("%w: phone is required", ErrValidation)
	}

	allowed, err := s.otp.CheckCooldown(ctx, phone, models.OTPCooldown)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrCooldown
	}

	code, err := generateCode(models.OTPLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	if err := s.otp.SaveCode(ctx, phone, code, models.OTPExpiry); err != nil {
		return "", err
	}

	if err := s.notifier.SendSMS(ctx, phone, "Your Lumière login code: "+code); err != nil {
		s.logger.Error().Err(err).Msg("otp sms delivery failed")
		if !s.devMode {
			return "", fmt.Errorf("failed to deliver code: %w", err)
		}
	}

	s.logger.Info().Str("phone", phone).Msg("login code issued")
	if s.devMode {
		return code, nil
	}
	return "", nil
}

// VerifyOTP exchanges a code for a token, creating the account on first
// login. Three wrong attempts burn the code.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code, name string) (string, *models.User, error) {
	phone = strings.TrimSpace(phone)

	stored, attempts, err := s.otp.GetCode(ctx, phone)
	if errors.Is(err, repository.ErrCodeNotFound) {
		return "", nil, ErrInvalidCode
	}
	if err != nil {
		return "", nil, err
	}
	if attempts >= models.OTPMaxAttempts {
		_ = s.otp.DeleteCode(ctx, phone)
		return "", nil, ErrTooManyAttempts
	}
	if stored != code {
		if _, err := s.otp.IncrAttempts(ctx, phone); err != nil {
			s.logger.Error().Err(err).Msg("failed to count otp attempt")
		}
		return "", nil, ErrInvalidCode
	}
	if err := s.otp.DeleteCode(ctx, phone); err != nil {
		s.logger.Error().Err(err).Msg("failed to burn otp code")
	}

	user, err := s.store.GetUserByPhone(ctx, phone)
	if errors.Is(err, database.ErrNotFound) {
		if strings.TrimSpace(name) == "" {
			return "", nil, fmt.Errorf("%w: name is required for first login", ErrValidation)
		}
		user = &models.User{
			Phone:     phone,
			Name:      strings.TrimSpace(name),
			Role:      s.roleFor(phone),
			CreatedAt: s.clock.Now(),
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return "", nil, err
		}
		s.logger.Info().Str("phone", phone).Str("role", user.Role).Msg("user registered")
	} else if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user.Phone, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Register creates a legacy email/password account.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return "", nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return "", nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, database.ErrNotFound) {
		return "", nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Email doubles as the identity key for accounts without a phone
	user := &models.User{
		Phone:          email,
		Name:           strings.TrimSpace(name),
		Email:          email,
		Role:           models.RoleCustomer,
		HashedPassword: string(hashed),
		CreatedAt:      s.clock.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user.Phone, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login authenticates a legacy email/password account.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if user.HashedPassword == "" {
		return "", nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}

	token, err := s.IssueToken(user.Phone, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetUser resolves the authenticated caller's account.
func (s *AuthService) GetUser(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.store.GetUserByPhone(ctx, phone)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, phone)
	}
	return user, err
}

// IssueToken signs an HS256 access token with the phone as subject.
func (s *AuthService) IssueToken(phone, role string) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":  phone,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(models.TokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its subject phone and role.
func (s *AuthService) ParseToken(tokenString string) (phone, role string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrForbidden
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrForbidden
	}
	phone, _ = claims["sub"].(string)
	role, _ = claims["role"].(string)
	if phone == "" {
		return "", "", ErrForbidden
	}
	if role == "" {
		role = models.RoleCustomer
	}
	return phone, role, nil
}

func (s *AuthService) roleFor(phone string) string {
	switch {
	case s.admins[phone]:
		return models.RoleAdmin
	case s.agents[phone]:
		return models.RoleAgent
	default:
		return models.RoleCustomer
	}
}

func generateCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
