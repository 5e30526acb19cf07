package pix

import "github.com/amirasaad/fintechflow/pkg/money"

// GenerateQRInput asks for a payment request of Amount.
type GenerateQRInput struct {
	Amount      money.Money `json:"amount"`
	Description string      `json:"description" validate:"max=140"`
}

// TransferInput moves Amount to the account holding ToPixKey.
type TransferInput struct {
	ToPixKey    string      `json:"to_pix_key" validate:"required,max=255"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description" validate:"max=140"`
}

// PayQRInput pays a payload produced by generate-qr.
type PayQRInput struct {
	Payload string `json:"payload" validate:"required"`
}

// TransferResponse identifies the completed transaction.
type TransferResponse struct {
	TransactionID string      `json:"transaction_id"`
	Amount        money.Money `json:"amount"`
	ToPixKey      string      `json:"to_pix_key"`
	Status        string      `json:"status"`
}
