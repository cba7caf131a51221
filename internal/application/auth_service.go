package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dmarques/users-api/internal/domain/entity"
	repo "github.com/dmarques/users-api/internal/domain/repository"
	"github.com/dmarques/users-api/pkg/helpers"
)

// ErrInvalidCredentials covers unknown email, wrong password and bad refresh
// tokens alike, so responses never reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult is the ephemeral aggregate returned on successful login or
// refresh. It is never stored.
type LoginResult struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO   `json:"user"`
}

// AuthService verifies credentials and manages the token lifecycle. Access
// tokens are self-contained JWTs; refresh tokens are opaque random strings
// persisted in Redis (keyed by their SHA-256) and rotated on every use.
type AuthService struct {
	Repo       repo.UserRepository
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Logger     *logrus.Logger
	RefreshTTL time.Duration
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		Repo:       r,
		JWT:        jwt,
		Redis:      rdb,
		Logger:     logger,
		RefreshTTL: refreshTTL,
	}
}

// refreshKey stores only a digest of the token, so a Redis dump cannot be
// replayed as credentials.
func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:refresh:" + hex.EncodeToString(sum[:])
}

// Login verifies email/password and issues a token pair. Unknown email and
// wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !helpers.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(ctx, u)
}

// Refresh exchanges a refresh token for a new pair. The token is consumed
// atomically: a second use of the same token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidCredentials
	}
	userID, err := s.Redis.GetDel(ctx, refreshKey(refreshToken)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(ctx, u)
}

// Revoke invalidates a refresh token. Unknown tokens are a no-op.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Redis.Del(ctx, refreshKey(refreshToken)).Err()
}

func (s *AuthService) issuePair(ctx context.Context, u *entity.User) (*LoginResult, error) {
	token, exp, err := s.JWT.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, err
	}
	refresh, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.Redis.Set(ctx, refreshKey(refresh), u.ID, s.RefreshTTL).Err(); err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:        token,
		RefreshToken: refresh,
		ExpiresAt:    exp,
		User:         NewUserDTO(u),
	}, nil
}

// GenerateRefreshToken produces an opaque token with 256 bits of entropy,
// base64url encoded. It carries no claims.
func GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
