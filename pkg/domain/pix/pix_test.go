package pix_test

import (
	"testing"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKeyType(t *testing.T) {
	assert.Equal(t, pix.KeyEmail, pix.DetectKeyType("alice@example.com"))
	assert.Equal(t, pix.KeyCPF, pix.DetectKeyType("123.456.789-09"))
	assert.Equal(t, pix.KeyPhone, pix.DetectKeyType("+5511987654321"))
	assert.Equal(t, pix.KeyRandom, pix.DetectKeyType(pix.NewRandomKey()))
}

func TestNewAccount(t *testing.T) {
	userID := uuid.New()
	acc, err := pix.NewAccount(userID, " alice@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", acc.PixKey)
	assert.Equal(t, pix.KeyEmail, acc.PixKeyType)
	assert.True(t, acc.Balance.IsZero())
	assert.True(t, acc.IsActive)

	_, err = pix.NewAccount(userID, "  ")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAccount_ValidateDebit(t *testing.T) {
	acc, err := pix.NewAccount(uuid.New(), "alice@example.com")
	require.NoError(t, err)
	acc.Balance = money.Must("100.00")

	assert.NoError(t, acc.ValidateDebit(money.Must("100.00")))
	assert.ErrorIs(t, acc.ValidateDebit(money.Must("100.01")), pix.ErrInsufficientBalance)
	assert.ErrorIs(t, acc.ValidateDebit(money.Must("100.01")), domain.ErrFailedPrecondition)
	assert.ErrorIs(t, acc.ValidateDebit(money.Zero()), domain.ErrInvalidArgument)

	acc.IsActive = false
	assert.ErrorIs(t, acc.ValidateDebit(money.Must("1")), pix.ErrAccountInactive)
}

func TestNewTransfer_SnapshotsKeys(t *testing.T) {
	sender, _ := pix.NewAccount(uuid.New(), "a@example.com")
	recipient, _ := pix.NewAccount(uuid.New(), "b@example.com")
	now := time.Now().UTC()

	tx := pix.NewTransfer(sender, recipient, money.Must("30"), "", pix.TypeSend, now)
	assert.Equal(t, pix.StatusCompleted, tx.Status)
	assert.Equal(t, "a@example.com", *tx.FromPixKey)
	assert.Equal(t, "b@example.com", tx.ToPixKey)
	assert.Nil(t, tx.Description)
	require.NotNil(t, tx.CompletedAt)
	assert.True(t, tx.Involves(sender.UserID))
	assert.True(t, tx.Involves(recipient.UserID))
	assert.False(t, tx.Involves(uuid.New()))
}

func TestPaymentRequest_RoundTrip(t *testing.T) {
	acc, _ := pix.NewAccount(uuid.New(), "merchant@example.com")
	req, err := pix.NewPaymentRequest(acc, money.Must("42.50"), "coffee", "Merchant Co")
	require.NoError(t, err)

	payload, err := req.Encode()
	require.NoError(t, err)
	assert.Equal(t,
		`{"amount":42.50,"description":"coffee","merchant_name":"Merchant Co","pix_key":"merchant@example.com"}`,
		string(payload))

	again, err := req.Encode()
	require.NoError(t, err)
	assert.Equal(t, payload, again)

	decoded, err := pix.DecodePaymentRequest(payload)
	require.NoError(t, err)
	assert.Equal(t, "merchant@example.com", decoded.PixKey)
	assert.True(t, decoded.Amount.Equals(money.Must("42.50")))
	assert.Equal(t, "coffee", decoded.DescriptionText())
}

func TestPaymentRequest_Invalid(t *testing.T) {
	acc, _ := pix.NewAccount(uuid.New(), "merchant@example.com")
	_, err := pix.NewPaymentRequest(acc, money.Zero(), "", "M")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = pix.DecodePaymentRequest([]byte(`{"amount":1.00}`))
	require.ErrorIs(t, err, pix.ErrInvalidPayload)

	_, err = pix.DecodePaymentRequest([]byte(`not json`))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
