package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"crm-admin-gateway/internal/cache"
	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/dto"
	"crm-admin-gateway/internal/repository"
	"crm-admin-gateway/internal/response"
)

// SessionService defines the interface for the stored dashboard session.
// The gateway never issues tokens; Login records a backend-issued token and
// CurrentUser reads the stored session through the user cache.
type SessionService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error)
}

// sessionServiceImpl is the implementation of SessionService
type sessionServiceImpl struct {
	sessionRepo repository.SessionRepository
	userCache   *cache.UserCache
	jwtSecret   string
	logger      *zap.Logger
}

// NewSessionService creates a new instance of SessionService
func NewSessionService(sessionRepo repository.SessionRepository, userCache *cache.UserCache, jwtSecret string, logger *zap.Logger) SessionService {
	return &sessionServiceImpl{
		sessionRepo: sessionRepo,
		userCache:   userCache,
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

// Login validates the backend-issued token, persists the session and drops
// any cached snapshot of the previous one
func (s *sessionServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	userID, expiresAt, err := s.parseToken(req.Token)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "Invalid token", err.Error())
	}

	session := &domain.Session{
		UserID:    userID,
		Token:     req.Token,
		ExpiresAt: expiresAt,
	}
	if req.Profile != nil {
		profile, err := json.Marshal(req.Profile)
		if err != nil {
			return nil, response.NewValidationError("Invalid profile payload", err.Error())
		}
		session.Profile = profile
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to store session", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to store session", err.Error())
	}
	s.userCache.Invalidate(ctx, userID)

	s.logger.Info("Session stored", zap.String("user_id", userID.String()))
	return sessionToResponse(session), nil
}

// Logout removes the stored session and its cached snapshot
func (s *sessionServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to remove session", err.Error())
	}
	s.userCache.Invalidate(ctx, userID)
	return nil
}

// CurrentUser returns the authenticated user's stored session via the cache
func (s *sessionServiceImpl) CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.userCache.Get(ctx, userID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to read session", err.Error())
	}
	if session == nil {
		return nil, response.NewNotFoundError("No active session", "")
	}
	return sessionToResponse(session), nil
}

// parseToken extracts the user id and expiry from a backend-issued JWT
func (s *sessionServiceImpl) parseToken(tokenString string) (uuid.UUID, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, time.Time{}, jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return uuid.Nil, time.Time{}, jwt.ErrTokenInvalidClaims
	}
	return userID, exp.Time, nil
}

func sessionToResponse(session *domain.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}
	if len(session.Profile) > 0 {
		var profile map[string]interface{}
		if err := json.Unmarshal(session.Profile, &profile); err == nil {
			resp.Profile = profile
		}
	}
	return resp
}
