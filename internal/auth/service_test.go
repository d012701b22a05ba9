package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/fruitstand-backend/pkg/auth"
	"github.com/angelmondragon/fruitstand-backend/pkg/config"
	"github.com/angelmondragon/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/angelmondragon/fruitstand-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepository struct {
	byEmail    map[string]*models.User
	byID       map[uuid.UUID]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		byEmail:    map[string]*models.User{},
		byID:       map[uuid.UUID]*models.User{},
		lastLogins: map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserRepository) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogins[id] = at
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "fruitstand",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func buildTestService(t *testing.T, repo *stubUserRepository) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		UserRepo:  repo,
		JWTConfig: testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubUserRepository()
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: mustHashPassword(t, "orchard-pass"),
		IsAdmin:      true,
	}
	repo.add(user)
	svc := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Ada@Example.com",
		Password: "orchard-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User == nil || resp.User.Email != "ada@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if resp.User.LastLoginAt == nil {
		t.Fatal("expected last_login_at to be set")
	}
	if _, ok := repo.lastLogins[user.ID]; !ok {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s, got %s", user.ID, claims.UserID)
	}
	if !claims.IsAdmin {
		t.Fatal("expected admin claim")
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := buildTestService(t, newStubUserRepository())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unexpected message: %s", typed.Message())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepository()
	repo.add(&models.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: mustHashPassword(t, "orchard-pass"),
	})
	svc := buildTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}
	// same message as the unknown-email case, nothing to enumerate against
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unexpected message: %s", typed.Message())
	}
}

func TestLoginEmptyEmail(t *testing.T) {
	svc := buildTestService(t, newStubUserRepository())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "   ", Password: "x"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMe(t *testing.T) {
	repo := newStubUserRepository()
	user := &models.User{
		ID:    uuid.New(),
		Name:  "Ada",
		Email: "ada@example.com",
	}
	repo.add(user)
	svc := buildTestService(t, repo)

	dto, err := svc.Me(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if dto.ID != user.ID || dto.Email != user.Email {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	_, err = svc.Me(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}
}
