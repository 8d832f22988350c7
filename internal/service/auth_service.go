package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/repository/ports"
	"github.com/aeternum/journeys-backend/internal/util"
)

var (
	ErrAuthValidation     = errors.New("auth validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired or revoked")
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
)

type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	tokens   *util.JWTManager

	googleAud string
}

// NewAuthService wires the repositories and the token manager. The session
// lifetime is the token manager's TTL; session rows only add revocability.
func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, tokens *util.JWTManager, googleAud string) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		googleAud: googleAud,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuthValidation, err)
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, normalized, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the password and opens a session. The signed token doubles
// as the session key so it can be revoked before its JWT expiry.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if isNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// LoginWithGoogle validates a Google ID token and signs the account in,
// creating it on first use. Enabled only when an audience is configured.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (string, *domain.User, error) {
	if strings.TrimSpace(s.googleAud) == "" {
		return "", nil, ErrGoogleDisabled
	}

	payload, err := idtoken.Validate(ctx, idToken, s.googleAud)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid google token", ErrInvalidCredentials)
	}

	email, _ := payload.Claims["email"].(string)
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("%w: google token missing email", ErrInvalidCredentials)
	}
	var displayName *string
	if name, _ := payload.Claims["name"].(string); strings.TrimSpace(name) != "" {
		trimmed := strings.TrimSpace(name)
		displayName = &trimmed
	}

	user, err := s.users.UpsertByEmail(ctx, normalized, displayName)
	if err != nil {
		return "", nil, err
	}
	return s.openSession(ctx, user)
}

// Authenticate resolves a bearer token to its user. The token must both
// parse and match an active session row.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrSessionExpired
	}

	if _, err := s.sessions.FindActiveSession(ctx, token); err != nil {
		if isNotFound(err) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeactivateSession(ctx, token)
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (string, *domain.User, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(normalized, "@")
	if at <= 0 || at == len(normalized)-1 {
		return "", fmt.Errorf("%w: invalid email address", ErrAuthValidation)
	}
	return normalized, nil
}
