package admin

import "github.com/amirasaad/fintechflow/pkg/money"

// ReviewInput is a reviewer decision.
type ReviewInput struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=1000"`
}

// DepositInput seeds balance into the account holding PixKey.
type DepositInput struct {
	PixKey      string      `json:"pix_key" validate:"required,max=255"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description" validate:"max=140"`
}

// ChargeInput simulates a card network authorization.
type ChargeInput struct {
	Amount       money.Money `json:"amount"`
	MerchantName string      `json:"merchant_name" validate:"required,max=255"`
}

// RefundInput names the purchase to reverse.
type RefundInput struct {
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
}
