// Package events defines the domain events published after a unit of work
// commits.
package events

import (
	"time"

	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/google/uuid"
)

// EventType represents the type of an event in the system.
type EventType string

func (t EventType) String() string {
	return string(t)
}

// Event type constants
const (
	EventTypeUserRegistered       EventType = "user.registered"
	EventTypePixTransferCompleted EventType = "pix.transfer.completed"
	EventTypePixAccountCredited   EventType = "pix.account.credited"
	EventTypeCardCharged          EventType = "card.charged"
	EventTypeCardRefunded         EventType = "card.refunded"
	EventTypeKYCReviewed          EventType = "kyc.reviewed"
)

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// Meta carries the fields shared by all events.
type Meta struct {
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMeta returns a fresh Meta.
func NewMeta() Meta {
	return Meta{ID: uuid.New(), OccurredAt: time.Now().UTC()}
}

// EventID identifies a single emission, for deduplicating redeliveries.
func (m Meta) EventID() uuid.UUID {
	return m.ID
}

// UserRegistered is emitted once a user and their PIX account exist.
type UserRegistered struct {
	Meta
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	PixKey string    `json:"pix_key"`
}

func (e *UserRegistered) Type() string { return EventTypeUserRegistered.String() }

// PixTransferCompleted is emitted after money moved between two accounts.
type PixTransferCompleted struct {
	Meta
	TransactionID   uuid.UUID   `json:"transaction_id"`
	FromUserID      uuid.UUID   `json:"from_user_id"`
	ToUserID        uuid.UUID   `json:"to_user_id"`
	Amount          money.Money `json:"amount"`
	TransactionType string      `json:"transaction_type"`
}

func (e *PixTransferCompleted) Type() string { return EventTypePixTransferCompleted.String() }

// PixAccountCredited is emitted after a deposit.
type PixAccountCredited struct {
	Meta
	TransactionID uuid.UUID   `json:"transaction_id"`
	UserID        uuid.UUID   `json:"user_id"`
	PixKey        string      `json:"pix_key"`
	Amount        money.Money `json:"amount"`
}

func (e *PixAccountCredited) Type() string { return EventTypePixAccountCredited.String() }

// CardCharged is emitted after a purchase was accepted.
type CardCharged struct {
	Meta
	TransactionID uuid.UUID   `json:"transaction_id"`
	CardID        uuid.UUID   `json:"card_id"`
	UserID        uuid.UUID   `json:"user_id"`
	Amount        money.Money `json:"amount"`
	MerchantName  string      `json:"merchant_name"`
}

func (e *CardCharged) Type() string { return EventTypeCardCharged.String() }

// CardRefunded is emitted after a purchase was refunded.
type CardRefunded struct {
	Meta
	TransactionID uuid.UUID   `json:"transaction_id"`
	RefundOf      uuid.UUID   `json:"refund_of"`
	CardID        uuid.UUID   `json:"card_id"`
	Amount        money.Money `json:"amount"`
}

func (e *CardRefunded) Type() string { return EventTypeCardRefunded.String() }

// KYCReviewed is emitted when a reviewer decided on a document.
type KYCReviewed struct {
	Meta
	KYCID      uuid.UUID `json:"kyc_id"`
	UserID     uuid.UUID `json:"user_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Status     string    `json:"status"`
}

func (e *KYCReviewed) Type() string { return EventTypeKYCReviewed.String() }

// EventTypes maps each type to a constructor so transports can rebuild the
// concrete event from its wire form.
var EventTypes = map[EventType]func() Event{
	EventTypeUserRegistered:       func() Event { return &UserRegistered{} },
	EventTypePixTransferCompleted: func() Event { return &PixTransferCompleted{} },
	EventTypePixAccountCredited:   func() Event { return &PixAccountCredited{} },
	EventTypeCardCharged:          func() Event { return &CardCharged{} },
	EventTypeCardRefunded:         func() Event { return &CardRefunded{} },
	EventTypeKYCReviewed:          func() Event { return &KYCReviewed{} },
}
