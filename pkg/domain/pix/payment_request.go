package pix

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/money"
)

// ErrInvalidPayload is returned when a QR payload cannot be decoded.
var ErrInvalidPayload = fmt.Errorf("%w: invalid payment request payload", domain.ErrInvalidArgument)

// PaymentRequest is the canonical content encoded into a payment QR code.
// Fields are declared in lexical key order so the encoding is stable.
type PaymentRequest struct {
	Amount       money.Money `json:"amount"`
	Description  *string     `json:"description"`
	MerchantName string      `json:"merchant_name"`
	PixKey       string      `json:"pix_key"`
}

// NewPaymentRequest builds a request to pay amount into account.
func NewPaymentRequest(
	account *Account,
	amount money.Money,
	description, merchantName string,
) (*PaymentRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountMustBePositive
	}
	return &PaymentRequest{
		Amount:       amount,
		Description:  optional(description),
		MerchantName: merchantName,
		PixKey:       account.PixKey,
	}, nil
}

// Encode serializes the request deterministically.
func (r *PaymentRequest) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DescriptionText returns the description or "".
func (r *PaymentRequest) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

// DecodePaymentRequest parses a payload produced by Encode.
func DecodePaymentRequest(payload []byte) (*PaymentRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var r PaymentRequest
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if r.PixKey == "" {
		return nil, fmt.Errorf("%w: missing pix_key", ErrInvalidPayload)
	}
	if !r.Amount.IsPositive() {
		return nil, ErrAmountMustBePositive
	}
	return &r, nil
}
