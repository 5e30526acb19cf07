package repository

import (
	"context"

	"github.com/amirasaad/fintechflow/pkg/domain/card"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	// GetForUpdate reads the user and holds a row lock until the
	// enclosing transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	SetKYCStatus(ctx context.Context, id uuid.UUID, status user.KYCStatus) error
	SetRole(ctx context.Context, id uuid.UUID, role user.Role) error
}

// AccountRepository defines data access for PIX accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *pix.Account) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*pix.Account, error)
	GetByPixKey(ctx context.Context, key string) (*pix.Account, error)
	// LockForUpdate loads the accounts holding a row lock until the
	// surrounding transaction ends. Rows are locked in ascending id order.
	LockForUpdate(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*pix.Account, error)
	// Debit subtracts amount only when the balance covers it. It reports
	// false when no row qualified.
	Debit(ctx context.Context, id uuid.UUID, amount money.Money) (bool, error)
	Credit(ctx context.Context, id uuid.UUID, amount money.Money) error
}

// TransactionRepository defines data access for the PIX transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx *pix.Transaction) error
	// ListByUser returns entries where the user is sender or recipient,
	// newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*pix.Transaction, error)
}

// CardRepository defines data access for virtual cards.
type CardRepository interface {
	Create(ctx context.Context, c *card.Card) error
	Get(ctx context.Context, id uuid.UUID) (*card.Card, error)
	// GetForUpdate loads a card holding a row lock.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*card.Card, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*card.Card, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, c *card.Card) error
	// NextSequence returns the next card number sequence value.
	NextSequence(ctx context.Context) (int64, error)
}

// CardTransactionRepository defines data access for card entries.
type CardTransactionRepository interface {
	Create(ctx context.Context, tx *card.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*card.Transaction, error)
	ListByCard(ctx context.Context, cardID uuid.UUID, limit int) ([]*card.Transaction, error)
	HasRefund(ctx context.Context, purchaseID uuid.UUID) (bool, error)
}

// KYCRepository defines data access for KYC documents.
type KYCRepository interface {
	Create(ctx context.Context, d *kyc.Document) error
	Get(ctx context.Context, id uuid.UUID) (*kyc.Document, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*kyc.Document, error)
	// Latest returns the user's most recent document or nil.
	Latest(ctx context.Context, userID uuid.UUID) (*kyc.Document, error)
	Update(ctx context.Context, d *kyc.Document) error
	ListPending(ctx context.Context, limit int) ([]kyc.PendingSummary, error)
}
