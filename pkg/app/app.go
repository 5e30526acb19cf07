package app

import (
	"log/slog"

	"github.com/amirasaad/fintechflow/pkg/cache"
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
	"github.com/amirasaad/fintechflow/pkg/idempotency"
	"github.com/amirasaad/fintechflow/pkg/provider"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/amirasaad/fintechflow/pkg/service/auth"
	"github.com/amirasaad/fintechflow/pkg/service/card"
	"github.com/amirasaad/fintechflow/pkg/service/kyc"
	"github.com/amirasaad/fintechflow/pkg/service/pix"
	"github.com/amirasaad/fintechflow/pkg/service/user"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Cache    cache.Store
	QRCode   provider.QRCode
	Logger   *slog.Logger
}

type App struct {
	Deps        *Deps
	Config      *config.App
	Idempotency *idempotency.Guard
	AuthService *auth.Service
	UserService *user.Service
	PixService  *pix.Service
	KYCService  *kyc.Service
	CardService *card.Service
}

func New(deps *Deps, cfg *config.App) (*App, error) {
	app := &App{
		Deps:        deps,
		Config:      cfg,
		Idempotency: idempotency.NewGuard(deps.Cache, cfg.Idempotency.TTL, deps.Logger),
	}
	app.setupEventBus()

	app.AuthService = auth.NewWithJWT(deps.Uow, cfg.Auth.Jwt, deps.Logger)
	app.PixService = pix.New(deps.EventBus, deps.Uow, deps.QRCode, cfg.Ledger, deps.Logger)
	app.UserService = user.New(deps.EventBus, deps.Uow, app.PixService, cfg.Auth, deps.Logger)
	app.KYCService = kyc.New(deps.EventBus, deps.Uow, deps.Logger)

	cardSvc, err := card.New(deps.EventBus, deps.Uow, cfg.Card, deps.Logger)
	if err != nil {
		return nil, err
	}
	app.CardService = cardSvc
	return app, nil
}
