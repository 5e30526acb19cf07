// Package auth authenticates users and issues and reads session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/amirasaad/fintechflow/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// dummyHash is compared against when the email is unknown so both paths cost
// one bcrypt comparison.
const dummyHash = "$2a$10$.IIxpSc3OElWXLV2Wj517eUGmZ64IQgBNQ4OcFbanW85CTrgrIDQy"

// Claim names carried in session tokens.
const (
	ClaimUserID = "user_id"
	ClaimEmail  = "email"
	ClaimRole   = "role"
	ClaimExp    = "exp"
)

// Strategy issues and reads credentials.
type Strategy interface {
	GenerateToken(ctx context.Context, u *user.User) (string, error)
	GetCurrentUserID(token *jwt.Token) (uuid.UUID, error)
}

type Service struct {
	uow      repository.UnitOfWork
	strategy Strategy
	logger   *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	strategy Strategy,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, strategy: strategy, logger: logger}
}

func NewWithJWT(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return New(uow, NewJWTStrategy(cfg, logger), logger)
}

// Login verifies credentials. Unknown emails, wrong passwords and inactive
// users all yield user.ErrUserUnauthorized.
func (s *Service) Login(
	ctx context.Context,
	email, password string,
) (*user.User, error) {
	log := s.logger.With("context", "Login")
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug("Login called", "email", email)

	repo, err := s.uow.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository: %w", err)
	}
	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error("Login lookup failed", "error", err)
			return nil, err
		}
		_ = utils.CheckPasswordHash(password, dummyHash)
		log.Info("Login failed", "reason", "unknown email")
		return nil, user.ErrUserUnauthorized
	}
	if !utils.CheckPasswordHash(password, u.HashedPassword) || !u.IsActive {
		log.Info("Login failed", "userID", u.ID)
		return nil, user.ErrUserUnauthorized
	}
	log.Info("Login successful", "userID", u.ID)
	return u, nil
}

func (s *Service) GenerateToken(
	ctx context.Context,
	u *user.User,
) (string, error) {
	log := s.logger.With("userID", u.ID)
	token, err := s.strategy.GenerateToken(ctx, u)
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Debug("GenerateToken successful")
	return token, nil
}

func (s *Service) GetCurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	userID, err := s.strategy.GetCurrentUserID(token)
	if err != nil {
		s.logger.Warn("GetCurrentUserID failed", "error", err)
	}
	return userID, err
}

// GetCurrentRole loads the token's user and returns its stored role, so
// promotions and demotions apply to tokens already issued. Unknown or
// inactive users are unauthorized.
func (s *Service) GetCurrentRole(ctx context.Context, token *jwt.Token) (user.Role, error) {
	userID, err := s.GetCurrentUserID(token)
	if err != nil {
		return "", err
	}
	repo, err := s.uow.UserRepository()
	if err != nil {
		return "", fmt.Errorf("failed to get user repository: %w", err)
	}
	u, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("GetCurrentRole for unknown user", "userID", userID)
			return "", user.ErrUserUnauthorized
		}
		return "", err
	}
	if !u.IsActive {
		return "", user.ErrUserUnauthorized
	}
	return u.Role, nil
}

// JWTStrategy signs HS256 tokens carrying user id, email and role.
type JWTStrategy struct {
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func NewJWTStrategy(
	cfg *config.Jwt,
	logger *slog.Logger,
) *JWTStrategy {
	return &JWTStrategy{cfg: cfg, logger: logger, now: time.Now}
}

func (s *JWTStrategy) GenerateToken(
	_ context.Context,
	u *user.User,
) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID: u.ID.String(),
		ClaimEmail:  u.Email,
		ClaimRole:   string(u.Role),
		ClaimExp:    s.now().Add(s.cfg.Expiry).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *JWTStrategy) GetCurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	claims, err := mapClaims(token)
	if err != nil {
		return uuid.Nil, err
	}
	raw, ok := claims[ClaimUserID].(string)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", user.ErrUserUnauthorized, err)
	}
	return userID, nil
}

func mapClaims(token *jwt.Token) (jwt.MapClaims, error) {
	if token == nil || !token.Valid {
		return nil, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, user.ErrUserUnauthorized
	}
	return claims, nil
}
