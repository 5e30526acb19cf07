package card

import "github.com/amirasaad/fintechflow/pkg/money"

// CreateInput requests a new virtual card. Omitted limits take the
// configured defaults.
type CreateInput struct {
	CardHolderName string       `json:"card_holder_name" validate:"max=100"`
	DailyLimit     *money.Money `json:"daily_limit"`
	MonthlyLimit   *money.Money `json:"monthly_limit"`
}

// UpdateLimitsInput replaces both spend caps.
type UpdateLimitsInput struct {
	DailyLimit   *money.Money `json:"daily_limit" validate:"required"`
	MonthlyLimit *money.Money `json:"monthly_limit" validate:"required"`
}
