// Package user provides registration and profile operations.
package user

import (
	"context"
	"log/slog"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
)

// AccountOpener opens a PIX account inside an existing unit of work.
type AccountOpener interface {
	OpenAccountFor(
		ctx context.Context,
		uow repository.UnitOfWork,
		u *user.User,
		preferredKey string,
	) (*pix.Account, error)
}

// Service provides business logic for user operations.
type Service struct {
	bus      eventbus.Bus
	uow      repository.UnitOfWork
	accounts AccountOpener
	auth     *config.Auth
	logger   *slog.Logger
}

// New creates a new Service.
func New(
	bus eventbus.Bus,
	uow repository.UnitOfWork,
	accounts AccountOpener,
	auth *config.Auth,
	logger *slog.Logger,
) *Service {
	return &Service{
		bus:      bus,
		uow:      uow,
		accounts: accounts,
		auth:     auth,
		logger:   logger,
	}
}

// Register creates the user and its PIX account in one transaction. Emails
// listed in AUTH_ADMIN_EMAILS get the admin role.
func (s *Service) Register(
	ctx context.Context,
	email, password, fullName, phone string,
) (u *user.User, err error) {
	log := s.logger.With("context", "Register")
	u, err = user.New(email, password, fullName, phone)
	if err != nil {
		return nil, err
	}
	if s.auth != nil && s.auth.IsAdminEmail(u.Email) {
		u.Role = user.RoleAdmin
	}

	var acc *pix.Account
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := users.GetByEmail(ctx, u.Email); err == nil {
			return user.ErrEmailAlreadyRegistered
		}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		acc, err = s.accounts.OpenAccountFor(ctx, uow, u, "")
		return err
	})
	if err != nil {
		log.Warn("Register failed", "error", err)
		return nil, err
	}

	log.Info("User registered", "userID", u.ID, "role", u.Role)
	if s.bus != nil {
		if err := s.bus.Emit(ctx, &events.UserRegistered{
			Meta:   events.NewMeta(),
			UserID: u.ID,
			Email:  u.Email,
			PixKey: acc.PixKey,
		}); err != nil {
			log.Error("failed to emit event", "error", err)
		}
	}
	return u, nil
}

// Me returns the user with the given id.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return users.Get(ctx, userID)
}

// GetByEmail returns the user registered under email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return users.GetByEmail(ctx, email)
}

// Promote grants the admin role to the user registered under email.
func (s *Service) Promote(ctx context.Context, email string) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			return nil
		}
		if err := users.SetRole(ctx, u.ID, user.RoleAdmin); err != nil {
			return err
		}
		u.Role = user.RoleAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User promoted", "userID", u.ID)
	return u, nil
}
