// Package testutils builds fully wired services on an in-memory SQLite
// database for package tests.
package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/fintechflow/infra"
	infra_cache "github.com/amirasaad/fintechflow/infra/cache"
	infra_eventbus "github.com/amirasaad/fintechflow/infra/eventbus"
	"github.com/amirasaad/fintechflow/infra/qrcode"
	infra_repository "github.com/amirasaad/fintechflow/infra/repository"
	"github.com/amirasaad/fintechflow/pkg/app"
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/money"
	kycsvc "github.com/amirasaad/fintechflow/pkg/service/kyc"
	"github.com/amirasaad/fintechflow/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the password every helper-created user gets.
const TestPassword = "password123"

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestConfig returns a configuration suitable for tests.
func TestConfig() *config.App {
	return &config.App{
		Env:    "test",
		Server: &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:    &config.Log{Format: "text"},
		DB:     &config.DB{},
		Auth: &config.Auth{
			Jwt:         &config.Jwt{Secret: "test-secret", Expiry: 24 * time.Hour},
			AdminEmails: []string{"admin@example.com"},
		},
		RateLimit:   &config.RateLimit{MaxRequests: 10000, Window: time.Minute},
		Redis:       &config.Redis{KeyPrefix: "test:"},
		EventBus:    &config.EventBus{Driver: "memory"},
		Ledger:      &config.Ledger{PageSize: 100, MerchantCity: "SAO PAULO"},
		Idempotency: &config.Idempotency{TTL: time.Hour},
		Card: &config.Card{
			DefaultDailyLimit:   decimal.RequireFromString("5000.00"),
			DefaultMonthlyLimit: decimal.RequireFromString("50000.00"),
			MaxPerUser:          10,
			BIN:                 "498765",
			CVVSecret:           "test-cvv-secret",
		},
	}
}

// NewTestDB opens a private, migrated in-memory SQLite database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := infra.NewDBConnection(&config.DB{Url: dsn}, "test")
	require.NoError(t, err)
	require.NoError(t, infra_repository.Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// TestApp is an app.App with handles tests need.
type TestApp struct {
	*app.App
	DB  *gorm.DB
	Bus *infra_eventbus.MemoryEventBus
}

// NewTestApp wires every service against a fresh database and the memory bus.
func NewTestApp(t testing.TB, cfg ...*config.App) *TestApp {
	t.Helper()
	c := TestConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		c = cfg[0]
	}
	db := NewTestDB(t)
	logger := Logger()
	store := infra_cache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })
	bus := infra_eventbus.NewWithMemory(logger, infra_eventbus.WithRecording())

	a, err := app.New(&app.Deps{
		Uow:      infra_repository.NewUoW(db),
		EventBus: bus,
		Cache:    store,
		QRCode:   qrcode.New(qrcode.DefaultSize),
		Logger:   logger,
	}, c)
	require.NoError(t, err)
	return &TestApp{App: a, DB: db, Bus: bus}
}

// RegisterUser registers email with TestPassword.
func (a *TestApp) RegisterUser(t testing.TB, email, fullName string) *user.User {
	t.Helper()
	u, err := a.UserService.Register(context.Background(), email, TestPassword, fullName, "")
	require.NoError(t, err)
	return u
}

// RandomEmail returns a unique address.
func RandomEmail() string {
	return fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8])
}

// Fund credits amount to the user's account.
func (a *TestApp) Fund(t testing.TB, u *user.User, amount string) {
	t.Helper()
	acc, err := a.PixService.GetAccount(context.Background(), u.ID)
	require.NoError(t, err)
	_, err = a.PixService.Deposit(context.Background(), acc.PixKey, money.Must(amount), "seed")
	require.NoError(t, err)
}

// ApproveKYC submits documents for u and approves them as reviewer.
func (a *TestApp) ApproveKYC(t testing.TB, u *user.User, reviewer uuid.UUID) *kyc.Document {
	t.Helper()
	ctx := context.Background()
	doc, err := a.KYCService.Submit(ctx, u.ID, SampleKYC())
	require.NoError(t, err)
	doc, err = a.KYCService.Review(ctx, doc.ID, reviewer, kyc.StatusApproved, "ok")
	require.NoError(t, err)
	return doc
}

// Balance returns the user's current balance.
func (a *TestApp) Balance(t testing.TB, u *user.User) money.Money {
	t.Helper()
	acc, err := a.PixService.GetAccount(context.Background(), u.ID)
	require.NoError(t, err)
	return acc.Balance
}

// SampleImage is a tiny base64 payload accepted as a document image.
const SampleImage = "aW1hZ2UtYnl0ZXM="

// SampleKYC is a valid CPF submission.
func SampleKYC() kycsvc.SubmitInput {
	return kycsvc.SubmitInput{
		DocumentType:   kyc.DocumentCPF,
		DocumentNumber: "52998224725",
		DocumentImage:  SampleImage,
		SelfieImage:    SampleImage,
	}
}
