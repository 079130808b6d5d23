package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/ecofinds/ecofinds-backend/pkg/auth"
	"github.com/ecofinds/ecofinds-backend/pkg/auth/session"
	"github.com/ecofinds/ecofinds-backend/pkg/config"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "ecofinds-test",
		ExpirationMinutes: 15,
	}
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "eco@example.com",
		Username:     "ecouser",
		PasswordHash: hash,
		EcoLevel:     enums.EcoLevelApprentice,
	}
}

func newAuthService(t *testing.T, user *models.User, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUsers{user: user},
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginByEmailIssuesTokenPair(t *testing.T) {
	t.Parallel()

	user := testUser(t, "hunter2hunter2")
	sessions := &stubSessions{}
	svc := newAuthService(t, user, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Identifier: "ECO@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.Username != "ecouser" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID || claims.EcoLevel != enums.EcoLevelApprentice {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if sessions.generated != claims.ID {
		t.Fatal("session access id must match token jti")
	}
}

func TestLoginByUsername(t *testing.T) {
	t.Parallel()

	user := testUser(t, "hunter2hunter2")
	svc := newAuthService(t, user, &stubSessions{})

	if _, err := svc.Login(context.Background(), LoginRequest{Identifier: "ecouser", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("login by username: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	user := testUser(t, "hunter2hunter2")
	svc := newAuthService(t, user, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "ecouser", Password: "wrong-password"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed := pkgerrors.As(err); typed.Message() != invalidCredentialsMessage {
		t.Fatalf("login failures must not leak detail, got %q", typed.Message())
	}
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()

	svc := newAuthService(t, nil, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "ghost", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	user := testUser(t, "hunter2hunter2")
	sessions := &stubSessions{}
	svc := newAuthService(t, user, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Identifier: "ecouser", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID == sessions.generated {
		t.Fatal("rotation must issue a new access id")
	}
	if sessions.rotatedFrom != sessions.generated {
		t.Fatal("rotation must consume the prior session")
	}
}

func TestRefreshRejectsBadToken(t *testing.T) {
	t.Parallel()

	user := testUser(t, "hunter2hunter2")
	sessions := &stubSessions{rotateErr: session.ErrInvalidRefreshToken}
	svc := newAuthService(t, user, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Identifier: "ecouser", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "stolen",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	svc := newAuthService(t, testUser(t, "hunter2hunter2"), sessions)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revoked != "access-id" {
		t.Fatalf("expected revoke of access-id, got %q", sessions.revoked)
	}
}

type stubUsers struct {
	user *models.User
}

func (s stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

type stubSessions struct {
	generated   string
	rotatedFrom string
	revoked     string
	rotateErr   error
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = accessID
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	s.rotatedFrom = oldAccessID
	newID := session.NewAccessID()
	return newID, "refresh-" + newID, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
