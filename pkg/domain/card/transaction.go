package card

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/google/uuid"
)

var (
	// ErrTransactionNotFound is returned when a card transaction does not exist.
	ErrTransactionNotFound = fmt.Errorf("%w: card transaction not found", domain.ErrNotFound)
	// ErrNotRefundable is returned when refunding anything but a completed purchase.
	ErrNotRefundable = fmt.Errorf("%w: transaction cannot be refunded", domain.ErrFailedPrecondition)
	// ErrMerchantRequired is returned when a charge has no merchant.
	ErrMerchantRequired = fmt.Errorf("%w: merchant name is required", domain.ErrInvalidArgument)
)

// TransactionType classifies a card ledger entry.
type TransactionType string

const (
	TypePurchase TransactionType = "purchase"
	TypeRefund   TransactionType = "refund"
	TypeFee      TransactionType = "fee"
)

// TransactionStatus is the state of a card entry.
type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	TxPending   TransactionStatus = "pending"
	TxFailed    TransactionStatus = "failed"
	TxRefunded  TransactionStatus = "refunded"
)

// Transaction is an immutable record of a charge, refund or fee.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	CardID          uuid.UUID         `json:"card_id"`
	MerchantName    string            `json:"merchant_name"`
	Amount          money.Money       `json:"amount"`
	Currency        money.Code        `json:"currency"`
	Status          TransactionStatus `json:"status"`
	TransactionType TransactionType   `json:"transaction_type"`
	RefundOf        *uuid.UUID        `json:"refund_of,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewPurchase records an accepted charge.
func NewPurchase(cardID uuid.UUID, amount money.Money, merchant string, now time.Time) (*Transaction, error) {
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return nil, ErrMerchantRequired
	}
	return &Transaction{
		ID:              uuid.New(),
		CardID:          cardID,
		MerchantName:    merchant,
		Amount:          amount,
		Currency:        money.BRL,
		Status:          TxCompleted,
		TransactionType: TypePurchase,
		CreatedAt:       now,
	}, nil
}

// NewRefund records the reversal of purchase. The purchase record itself is
// left untouched.
func NewRefund(purchase *Transaction, refunded bool, now time.Time) (*Transaction, error) {
	if purchase.TransactionType != TypePurchase || purchase.Status != TxCompleted || refunded {
		return nil, ErrNotRefundable
	}
	of := purchase.ID
	return &Transaction{
		ID:              uuid.New(),
		CardID:          purchase.CardID,
		MerchantName:    purchase.MerchantName,
		Amount:          purchase.Amount,
		Currency:        purchase.Currency,
		Status:          TxCompleted,
		TransactionType: TypeRefund,
		RefundOf:        &of,
		CreatedAt:       now,
	}, nil
}
