// Package card models virtual cards and their per-period spend limits.
//
// Invariants:
//   - A card only accepts charges while active.
//   - After any accepted charge DailySpent <= DailyLimit and
//     MonthlySpent <= MonthlyLimit.
//   - Spend counters belong to the current calendar day/month (UTC); they are
//     reset lazily by ResetIfElapsed before every evaluation.
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
	// ErrCardNotFound is returned when no card matches the id (and owner).
	ErrCardNotFound = fmt.Errorf("%w: card not found", domain.ErrNotFound)
	// ErrKYCRequired is returned when the owner is not KYC approved.
	ErrKYCRequired = fmt.Errorf("%w: KYC approval required for card creation", domain.ErrFailedPrecondition)
	// ErrCardNotActive is returned when charging a blocked or cancelled card.
	ErrCardNotActive = fmt.Errorf("%w: card is not active", domain.ErrFailedPrecondition)
	// ErrCardCancelled is returned when changing the state of a cancelled card.
	ErrCardCancelled = fmt.Errorf("%w: card is cancelled", domain.ErrFailedPrecondition)
	// ErrDailyLimitExceeded is returned when a charge would pass the daily limit.
	ErrDailyLimitExceeded = fmt.Errorf("%w: daily limit exceeded", domain.ErrFailedPrecondition)
	// ErrMonthlyLimitExceeded is returned when a charge would pass the monthly limit.
	ErrMonthlyLimitExceeded = fmt.Errorf("%w: monthly limit exceeded", domain.ErrFailedPrecondition)
	// ErrNegativeLimit is returned for limits below zero.
	ErrNegativeLimit = fmt.Errorf("%w: limits must not be negative", domain.ErrInvalidArgument)
	// ErrAmountMustBePositive is returned for zero or negative charges.
	ErrAmountMustBePositive = fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	// ErrHolderNameRequired is returned when the embossed name is blank.
	ErrHolderNameRequired = fmt.Errorf("%w: card holder name is required", domain.ErrInvalidArgument)
	// ErrTooManyCards is returned when the user reached the per-user card cap.
	ErrTooManyCards = fmt.Errorf("%w: card limit per user reached", domain.ErrFailedPrecondition)
)

// Status is the lifecycle state of a card.
type Status string

const (
	StatusActive    Status = "active"
	StatusBlocked   Status = "blocked"
	StatusCancelled Status = "cancelled"
)

// Card is a virtual card.
type Card struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	CardNumber     string      `json:"card_number"`
	CardHolderName string      `json:"card_holder_name"`
	CVV            string      `json:"cvv"`
	ExpiryDate     string      `json:"expiry_date"`
	Status         Status      `json:"status"`
	DailyLimit     money.Money `json:"daily_limit"`
	MonthlyLimit   money.Money `json:"monthly_limit"`
	DailySpent     money.Money `json:"daily_spent"`
	MonthlySpent   money.Money `json:"monthly_spent"`
	DailyResetAt   time.Time   `json:"-"`
	MonthlyResetAt time.Time   `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	BlockedAt      *time.Time  `json:"blocked_at,omitempty"`
}

// Limits groups the two spend caps.
type Limits struct {
	Daily   money.Money
	Monthly money.Money
}

// Validate rejects negative limits.
func (l Limits) Validate() error {
	if l.Daily.IsNegative() || l.Monthly.IsNegative() {
		return ErrNegativeLimit
	}
	return nil
}

// New issues an active card. The number and CVV come from the Issuer so that
// uniqueness is a property of the sequence, not of retries.
func New(
	userID uuid.UUID,
	holderName string,
	limits Limits,
	number, cvv string,
	now time.Time,
) (*Card, error) {
	holderName = strings.TrimSpace(holderName)
	if holderName == "" {
		return nil, ErrHolderNameRequired
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Card{
		ID:             uuid.New(),
		UserID:         userID,
		CardNumber:     number,
		CardHolderName: strings.ToUpper(holderName),
		CVV:            cvv,
		ExpiryDate:     ExpiryFrom(now),
		Status:         StatusActive,
		DailyLimit:     limits.Daily,
		MonthlyLimit:   limits.Monthly,
		DailySpent:     money.Zero(),
		MonthlySpent:   money.Zero(),
		DailyResetAt:   now,
		MonthlyResetAt: now,
		CreatedAt:      now,
	}, nil
}

// ExpiryFrom returns the MM/YY expiry five years after t.
func ExpiryFrom(t time.Time) string {
	return t.AddDate(5, 0, 0).Format("01/06")
}

// Block stops the card from accepting charges.
func (c *Card) Block(now time.Time) error {
	if c.Status == StatusCancelled {
		return ErrCardCancelled
	}
	c.Status = StatusBlocked
	c.BlockedAt = &now
	return nil
}

// Unblock reactivates a blocked card.
func (c *Card) Unblock() error {
	if c.Status == StatusCancelled {
		return ErrCardCancelled
	}
	c.Status = StatusActive
	c.BlockedAt = nil
	return nil
}

// Cancel terminates the card.
func (c *Card) Cancel() {
	c.Status = StatusCancelled
}

// SetLimits overwrites both limits.
func (c *Card) SetLimits(limits Limits) error {
	if err := limits.Validate(); err != nil {
		return err
	}
	c.DailyLimit = limits.Daily
	c.MonthlyLimit = limits.Monthly
	return nil
}

// ResetIfElapsed zeroes the counters whose calendar period has ended. It
// reports whether anything changed.
func (c *Card) ResetIfElapsed(now time.Time) bool {
	now = now.UTC()
	changed := false
	last := c.DailyResetAt.UTC()
	if now.YearDay() != last.YearDay() || now.Year() != last.Year() {
		c.DailySpent = money.Zero()
		c.DailyResetAt = now
		changed = true
	}
	lastMonth := c.MonthlyResetAt.UTC()
	if now.Month() != lastMonth.Month() || now.Year() != lastMonth.Year() {
		c.MonthlySpent = money.Zero()
		c.MonthlyResetAt = now
		changed = true
	}
	return changed
}

// Authorize checks a charge against state and limits without mutating the
// counters. ResetIfElapsed must have been applied first.
func (c *Card) Authorize(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	if c.Status != StatusActive {
		return ErrCardNotActive
	}
	daily, err := c.DailySpent.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if daily.GreaterThan(c.DailyLimit) {
		return ErrDailyLimitExceeded
	}
	monthly, err := c.MonthlySpent.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if monthly.GreaterThan(c.MonthlyLimit) {
		return ErrMonthlyLimitExceeded
	}
	return nil
}

// Charge resets elapsed periods, authorizes and applies amount to both
// counters. On error the counters are unchanged.
func (c *Card) Charge(amount money.Money, now time.Time) error {
	c.ResetIfElapsed(now)
	if err := c.Authorize(amount); err != nil {
		return err
	}
	c.DailySpent, _ = c.DailySpent.Add(amount)
	c.MonthlySpent, _ = c.MonthlySpent.Add(amount)
	return nil
}

// Release gives back spend for a refunded purchase made at purchasedAt.
// Counters of periods that already rolled over are left alone and never go
// below zero.
func (c *Card) Release(amount money.Money, purchasedAt, now time.Time) {
	c.ResetIfElapsed(now)
	now = now.UTC()
	purchasedAt = purchasedAt.UTC()
	if purchasedAt.Year() == now.Year() && purchasedAt.YearDay() == now.YearDay() {
		c.DailySpent = floorZero(c.DailySpent, amount)
	}
	if purchasedAt.Year() == now.Year() && purchasedAt.Month() == now.Month() {
		c.MonthlySpent = floorZero(c.MonthlySpent, amount)
	}
}

func floorZero(spent, amount money.Money) money.Money {
	left, err := spent.Subtract(amount)
	if err != nil || left.IsNegative() {
		return money.Zero()
	}
	return left
}
