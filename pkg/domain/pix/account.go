// Package pix holds the ledger aggregates: PIX accounts, their immutable
// transaction log, and QR payment requests.
//
// Invariants:
//   - An account belongs to exactly one user and holds a unique pix key.
//   - Balance is never negative after a committed transaction.
//   - A completed transaction is never mutated.
package pix

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/amirasaad/fintechflow/pkg/utils"
	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound is returned when the caller has no PIX account.
	ErrAccountNotFound = fmt.Errorf("%w: PIX account not found", domain.ErrNotFound)
	// ErrRecipientNotFound is returned when no account holds the target key.
	ErrRecipientNotFound = fmt.Errorf("%w: recipient not found", domain.ErrNotFound)
	// ErrAccountExists is returned when the user already owns an account.
	ErrAccountExists = fmt.Errorf("%w: PIX account already exists", domain.ErrConflict)
	// ErrKeyTaken is returned when another account already uses the key.
	ErrKeyTaken = fmt.Errorf("%w: PIX key already in use", domain.ErrConflict)
	// ErrAmountMustBePositive is returned for zero or negative amounts.
	ErrAmountMustBePositive = fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	// ErrSelfTransfer is returned when the sender targets its own key.
	ErrSelfTransfer = fmt.Errorf("%w: self-transfer", domain.ErrInvalidArgument)
	// ErrInsufficientBalance is returned when the sender cannot cover the amount.
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", domain.ErrFailedPrecondition)
	// ErrAccountInactive is returned when either side of a transfer is disabled.
	ErrAccountInactive = fmt.Errorf("%w: PIX account inactive", domain.ErrFailedPrecondition)
	// ErrEmptyKey is returned when a pix key is blank.
	ErrEmptyKey = fmt.Errorf("%w: PIX key cannot be empty", domain.ErrInvalidArgument)
)

// KeyType classifies a pix key alias.
type KeyType string

const (
	KeyEmail  KeyType = "email"
	KeyPhone  KeyType = "phone"
	KeyCPF    KeyType = "cpf"
	KeyRandom KeyType = "random"
)

// DetectKeyType infers the alias kind of a key.
func DetectKeyType(key string) KeyType {
	switch {
	case utils.IsEmail(key):
		return KeyEmail
	case utils.IsCPF(key):
		return KeyCPF
	case utils.IsPhone(key):
		return KeyPhone
	default:
		return KeyRandom
	}
}

// NewRandomKey returns a random-token pix key.
func NewRandomKey() string {
	return uuid.NewString()
}

// Account is a user's PIX account.
type Account struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	PixKey      string      `json:"pix_key"`
	PixKeyType  KeyType     `json:"pix_key_type"`
	AccountType string      `json:"account_type"`
	Balance     money.Money `json:"balance"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewAccount opens an empty checking account for userID under key.
func NewAccount(userID uuid.UUID, key string) (*Account, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &Account{
		ID:          uuid.New(),
		UserID:      userID,
		PixKey:      key,
		PixKeyType:  DetectKeyType(key),
		AccountType: "checking",
		Balance:     money.Zero(),
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ValidateDebit checks whether amount can leave the account.
func (a *Account) ValidateDebit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if !a.IsActive {
		return ErrAccountInactive
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ValidateCredit checks whether amount can enter the account.
func (a *Account) ValidateCredit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if !a.IsActive {
		return ErrAccountInactive
	}
	if _, err := a.Balance.Add(amount); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
