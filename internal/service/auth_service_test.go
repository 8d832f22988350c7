package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aeternum/journeys-backend/internal/domain"
	"github.com/aeternum/journeys-backend/internal/repository/ports"
	"github.com/aeternum/journeys-backend/internal/util"
)

func newAuthFixture() (*AuthService, *memoryUserRepo, *memorySessionRepo) {
	users := newMemoryUserRepo()
	sessions := newMemorySessionRepo()
	tokens := util.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, sessions, tokens, ""), users, sessions
}

func TestAuthService_Register_And_Login(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newAuthFixture()

	user, err := svc.Register(ctx, " Traveler@Example.COM ", "wanderlust42")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "traveler@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	token, loggedIn, err := svc.Login(ctx, "traveler@example.com", "wanderlust42")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login resolved wrong user")
	}
	if len(sessions.items) != 1 {
		t.Fatalf("expected one session row, got %d", len(sessions.items))
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture()

	if _, err := svc.Register(ctx, "not-an-email", "wanderlust42"); !errors.Is(err, ErrAuthValidation) {
		t.Fatalf("expected ErrAuthValidation for bad email, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "short1"); !errors.Is(err, ErrAuthValidation) {
		t.Fatalf("expected ErrAuthValidation for weak password, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "nodigitsatall"); !errors.Is(err, ErrAuthValidation) {
		t.Fatalf("expected ErrAuthValidation for password without digit, got %v", err)
	}
	if len(users.items) != 0 {
		t.Fatalf("expected no accounts created, got %d", len(users.items))
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(ctx, "dup@example.com", "wanderlust42"); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "wanderlust42"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(ctx, "traveler@example.com", "wanderlust42"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, _, err := svc.Login(ctx, "traveler@example.com", "wrong-password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "unknown@example.com", "wanderlust42"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_Authenticate_And_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	user, err := svc.Register(ctx, "traveler@example.com", "wanderlust42")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	token, _, err := svc.Login(ctx, "traveler@example.com", "wanderlust42")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	authed, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("Authenticate resolved wrong user")
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestAuthService_Authenticate_GarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Authenticate(context.Background(), "not-a-jwt"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired for malformed token, got %v", err)
	}
}

func TestAuthService_LoginWithGoogle_DisabledWithoutAudience(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, _, err := svc.LoginWithGoogle(context.Background(), "some-id-token"); !errors.Is(err, ErrGoogleDisabled) {
		t.Fatalf("expected ErrGoogleDisabled, got %v", err)
	}
}

// --- Test doubles ---

type memoryUserRepo struct {
	items map[uuid.UUID]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{items: make(map[uuid.UUID]*domain.User)}
}

func (m *memoryUserRepo) Create(_ context.Context, email string, hash, salt []byte) (*domain.User, error) {
	for _, existing := range m.items {
		if existing.Email == email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: append([]byte(nil), hash...),
		PasswordSalt: append([]byte(nil), salt...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.items[user.ID] = user
	cloned := *user
	return &cloned, nil
}

func (m *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.items {
		if user.Email == email {
			cloned := *user
			return &cloned, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cloned := *user
	return &cloned, nil
}

func (m *memoryUserRepo) UpsertByEmail(_ context.Context, email string, displayName *string) (*domain.User, error) {
	for _, user := range m.items {
		if user.Email == email {
			if displayName != nil && user.DisplayName == nil {
				user.DisplayName = displayName
			}
			cloned := *user
			return &cloned, nil
		}
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.items[user.ID] = user
	cloned := *user
	return &cloned, nil
}

type memorySessionRepo struct {
	items map[string]*domain.Session
	seq   int64
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{items: make(map[string]*domain.Session)}
}

func (m *memorySessionRepo) CreateSession(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	m.seq++
	session := &domain.Session{
		ID:        m.seq,
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	m.items[token] = session
	cloned := *session
	return &cloned, nil
}

func (m *memorySessionRepo) DeactivateSession(_ context.Context, token string) error {
	if session, ok := m.items[token]; ok {
		session.IsActive = false
	}
	return nil
}

func (m *memorySessionRepo) FindActiveSession(_ context.Context, token string) (*domain.Session, error) {
	session, ok := m.items[token]
	if !ok || !session.IsActive || session.ExpiresAt.Before(time.Now().UTC()) {
		return nil, sql.ErrNoRows
	}
	cloned := *session
	return &cloned, nil
}

var (
	_ ports.UserRepository    = (*memoryUserRepo)(nil)
	_ ports.SessionRepository = (*memorySessionRepo)(nil)
)
