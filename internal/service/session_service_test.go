package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm-admin-gateway/internal/cache"
	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/repository"
	"crm-admin-gateway/internal/response"
)

const testJWTSecret = "test-secret"

// mockSessionRepository is a func-field mock of the session store
type mockSessionRepository struct {
	createFunc         func(ctx context.Context, session *domain.Session) error
	findByUserIDFunc   func(ctx context.Context, userID uuid.UUID) (*domain.Session, error)
	deleteByUserIDFunc func(ctx context.Context, userID uuid.UUID) error
}

var _ repository.SessionRepository = (*mockSessionRepository)(nil)

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return m.createFunc(ctx, session)
}

func (m *mockSessionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	return m.findByUserIDFunc(ctx, userID)
}

func (m *mockSessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return m.deleteByUserIDFunc(ctx, userID)
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func signTestToken(t *testing.T, sub string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func newSessionServiceWithRepo(repo *mockSessionRepository) SessionService {
	logger := zap.NewNop()
	userCache := cache.NewUserCache(repo, 5*time.Minute, logger, nil)
	return NewSessionService(repo, userCache, testJWTSecret, logger)
}

func TestLogin_StoresSession(t *testing.T) {
	userID := uuid.New()
	expiresAt := time.Now().Add(time.Hour)
	var stored *domain.Session
	repo := &mockSessionRepository{
		createFunc: func(ctx context.Context, session *domain.Session) error {
			stored = session
			return nil
		},
	}
	svc := newSessionServiceWithRepo(repo)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Token:   signTestToken(t, userID.String(), expiresAt),
		Profile: map[string]interface{}{"name": "Kim"},
	})
	require.NoError(t, err)
	assert.Equal(t, userID, resp.UserID)
	assert.WithinDuration(t, expiresAt, resp.ExpiresAt, time.Second)
	assert.Equal(t, "Kim", resp.Profile["name"])

	require.NotNil(t, stored)
	assert.Equal(t, userID, stored.UserID)
	assert.NotEmpty(t, stored.Token)
}

func TestLogin_RejectsBadSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	svc := newSessionServiceWithRepo(&mockSessionRepository{})
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Token: signed})
	require.Error(t, err)
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, response.ErrCodeUnauthorized, appErr.Code)
}

func TestLogin_RejectsNonUUIDSubject(t *testing.T) {
	svc := newSessionServiceWithRepo(&mockSessionRepository{})

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Token: signTestToken(t, "employee-42", time.Now().Add(time.Hour)),
	})
	require.Error(t, err)
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, response.ErrCodeUnauthorized, appErr.Code)
}

func TestLogin_RejectsMissingExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.New().String(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	svc := newSessionServiceWithRepo(&mockSessionRepository{})
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Token: signed})
	require.Error(t, err)
}

func TestLogout_RemovesSession(t *testing.T) {
	userID := uuid.New()
	var deleted uuid.UUID
	repo := &mockSessionRepository{
		deleteByUserIDFunc: func(ctx context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	svc := newSessionServiceWithRepo(repo)

	require.NoError(t, svc.Logout(context.Background(), userID))
	assert.Equal(t, userID, deleted)
}

func TestCurrentUser_ReturnsStoredSession(t *testing.T) {
	userID := uuid.New()
	repo := &mockSessionRepository{
		findByUserIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
			return &domain.Session{
				UserID:    id,
				Token:     "tok",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	svc := newSessionServiceWithRepo(repo)

	resp, err := svc.CurrentUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, resp.UserID)
}

func TestCurrentUser_NotFound(t *testing.T) {
	repo := &mockSessionRepository{
		findByUserIDFunc: func(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newSessionServiceWithRepo(repo)

	_, err := svc.CurrentUser(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func TestCurrentUser_ExpiredSessionNotFound(t *testing.T) {
	repo := &mockSessionRepository{
		findByUserIDFunc: func(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
			return &domain.Session{
				UserID:    userID,
				Token:     "tok",
				ExpiresAt: time.Now().Add(-time.Minute),
			}, nil
		},
	}
	svc := newSessionServiceWithRepo(repo)

	_, err := svc.CurrentUser(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}
