package pix

import (
	"time"

	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/google/uuid"
)

// TransactionType tells how money moved.
type TransactionType string

const (
	TypeSend      TransactionType = "send"
	TypeQRPayment TransactionType = "qr_payment"
	TypeDeposit   TransactionType = "deposit"
)

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	FromUserID      *uuid.UUID        `json:"from_user_id,omitempty"`
	ToUserID        uuid.UUID         `json:"to_user_id"`
	FromPixKey      *string           `json:"from_pix_key,omitempty"`
	ToPixKey        string            `json:"to_pix_key"`
	Amount          money.Money       `json:"amount"`
	Description     *string           `json:"description,omitempty"`
	TransactionType TransactionType   `json:"transaction_type"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
}

// NewTransfer records a completed movement from sender to recipient.
func NewTransfer(
	sender, recipient *Account,
	amount money.Money,
	description string,
	kind TransactionType,
	now time.Time,
) *Transaction {
	fromUser := sender.UserID
	fromKey := sender.PixKey
	return &Transaction{
		ID:              uuid.New(),
		FromUserID:      &fromUser,
		ToUserID:        recipient.UserID,
		FromPixKey:      &fromKey,
		ToPixKey:        recipient.PixKey,
		Amount:          amount,
		Description:     optional(description),
		TransactionType: kind,
		Status:          StatusCompleted,
		CreatedAt:       now,
		CompletedAt:     &now,
	}
}

// NewDeposit records a completed credit with no sending account.
func NewDeposit(
	recipient *Account,
	amount money.Money,
	description string,
	now time.Time,
) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		ToUserID:        recipient.UserID,
		ToPixKey:        recipient.PixKey,
		Amount:          amount,
		Description:     optional(description),
		TransactionType: TypeDeposit,
		Status:          StatusCompleted,
		CreatedAt:       now,
		CompletedAt:     &now,
	}
}

// Involves reports whether userID is sender or recipient.
func (t *Transaction) Involves(userID uuid.UUID) bool {
	return t.ToUserID == userID || (t.FromUserID != nil && *t.FromUserID == userID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
