// Package pix implements the ledger engine: PIX accounts, transfers, QR
// payment requests and the transaction log.
//
// Every balance mutation runs in one UnitOfWork. Transfers lock both account
// rows in ascending id order and debit conditionally, so balances never go
// negative and concurrent transfers on disjoint accounts do not contend.
// Events are emitted only after the unit of work commits.
package pix

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/amirasaad/fintechflow/pkg/provider"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
)

// maxPageSize caps ListTransactions regardless of configuration.
const maxPageSize = 100

// PaymentQR is a rendered payment request.
type PaymentQR struct {
	QRCode  string      `json:"qr_code"`
	PixKey  string      `json:"pix_key"`
	Amount  money.Money `json:"amount"`
	Payload string      `json:"payload"`
}

// Service provides the ledger operations.
type Service struct {
	bus      eventbus.Bus
	uow      repository.UnitOfWork
	qr       provider.QRCode
	pageSize int
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a ledger Service.
func New(
	bus eventbus.Bus,
	uow repository.UnitOfWork,
	qr provider.QRCode,
	cfg *config.Ledger,
	logger *slog.Logger,
) *Service {
	pageSize := maxPageSize
	if cfg != nil && cfg.PageSize > 0 && cfg.PageSize < maxPageSize {
		pageSize = cfg.PageSize
	}
	return &Service{
		bus:      bus,
		uow:      uow,
		qr:       qr,
		pageSize: pageSize,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OpenAccount opens the user's PIX account. preferredKey defaults to the
// user's email.
func (s *Service) OpenAccount(
	ctx context.Context,
	userID uuid.UUID,
	preferredKey string,
) (acc *pix.Account, err error) {
	log := s.logger.With("context", "OpenAccount", "userID", userID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err := users.Get(ctx, userID)
		if err != nil {
			return err
		}
		acc, err = s.OpenAccountFor(ctx, uow, u, preferredKey)
		return err
	})
	if err != nil {
		log.Warn("OpenAccount failed", "error", err)
		return nil, err
	}
	log.Info("PIX account opened", "accountID", acc.ID, "keyType", acc.PixKeyType)
	return acc, nil
}

// OpenAccountFor opens an account for u inside the caller's unit of work.
func (s *Service) OpenAccountFor(
	ctx context.Context,
	uow repository.UnitOfWork,
	u *user.User,
	preferredKey string,
) (*pix.Account, error) {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	if _, err := accounts.GetByUserID(ctx, u.ID); err == nil {
		return nil, pix.ErrAccountExists
	} else if !isNotFound(err) {
		return nil, err
	}

	key := preferredKey
	if key == "" {
		key = u.Email
	}
	acc, err := pix.NewAccount(u.ID, key)
	if err != nil {
		return nil, err
	}
	if _, err := accounts.GetByPixKey(ctx, acc.PixKey); err == nil {
		return nil, pix.ErrKeyTaken
	} else if !isNotFound(err) {
		return nil, err
	}
	if err := accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccount returns the user's PIX account.
func (s *Service) GetAccount(ctx context.Context, userID uuid.UUID) (*pix.Account, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return accounts.GetByUserID(ctx, userID)
}

// GeneratePaymentRequest renders a QR code asking for amount to be paid into
// the user's account. It does not change any state.
func (s *Service) GeneratePaymentRequest(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Money,
	description string,
) (*PaymentQR, error) {
	if !amount.IsPositive() {
		return nil, pix.ErrAmountMustBePositive
	}
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	acc, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	req, err := pix.NewPaymentRequest(acc, amount, description, u.FullName)
	if err != nil {
		return nil, err
	}
	payload, err := req.Encode()
	if err != nil {
		return nil, err
	}
	img, err := s.qr.Render(payload)
	if err != nil {
		return nil, fmt.Errorf("render payment request: %w", err)
	}
	return &PaymentQR{
		QRCode:  base64.StdEncoding.EncodeToString(img),
		PixKey:  acc.PixKey,
		Amount:  amount,
		Payload: string(payload),
	}, nil
}

// DecodePaymentRequest parses a payload produced by GeneratePaymentRequest.
func (s *Service) DecodePaymentRequest(payload string) (*pix.PaymentRequest, error) {
	return pix.DecodePaymentRequest([]byte(payload))
}

// Transfer moves amount from the sender's account to the account holding
// toKey.
func (s *Service) Transfer(
	ctx context.Context,
	senderUserID uuid.UUID,
	toKey string,
	amount money.Money,
	description string,
) (*pix.Transaction, error) {
	return s.transfer(ctx, senderUserID, toKey, amount, description, pix.TypeSend)
}

// PayPaymentRequest decodes a QR payload and pays it from the sender's
// account.
func (s *Service) PayPaymentRequest(
	ctx context.Context,
	senderUserID uuid.UUID,
	payload string,
) (*pix.Transaction, error) {
	req, err := s.DecodePaymentRequest(payload)
	if err != nil {
		return nil, err
	}
	return s.transfer(ctx, senderUserID, req.PixKey, req.Amount, req.DescriptionText(), pix.TypeQRPayment)
}

func (s *Service) transfer(
	ctx context.Context,
	senderUserID uuid.UUID,
	toKey string,
	amount money.Money,
	description string,
	kind pix.TransactionType,
) (tx *pix.Transaction, err error) {
	log := s.logger.With("context", "Transfer", "userID", senderUserID, "type", kind)
	if !amount.IsPositive() {
		return nil, pix.ErrAmountMustBePositive
	}
	if toKey == "" {
		return nil, pix.ErrEmptyKey
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		sender, err := accounts.GetByUserID(ctx, senderUserID)
		if err != nil {
			return err
		}
		if sender.PixKey == toKey {
			return pix.ErrSelfTransfer
		}
		recipient, err := accounts.GetByPixKey(ctx, toKey)
		if err != nil {
			return err
		}

		locked, err := accounts.LockForUpdate(ctx, sender.ID, recipient.ID)
		if err != nil {
			return err
		}
		sender, recipient = locked[sender.ID], locked[recipient.ID]
		if err := sender.ValidateDebit(amount); err != nil {
			return err
		}
		if err := recipient.ValidateCredit(amount); err != nil {
			return err
		}

		debited, err := accounts.Debit(ctx, sender.ID, amount)
		if err != nil {
			return err
		}
		if !debited {
			return pix.ErrInsufficientBalance
		}
		if err := accounts.Credit(ctx, recipient.ID, amount); err != nil {
			return err
		}

		tx = pix.NewTransfer(sender, recipient, amount, description, kind, s.now())
		return txs.Create(ctx, tx)
	})
	if err != nil {
		log.Warn("Transfer rejected", "error", err)
		return nil, err
	}

	log.Info("Transfer completed", "transactionID", tx.ID, "amount", amount.String())
	s.emit(ctx, &events.PixTransferCompleted{
		Meta:            events.NewMeta(),
		TransactionID:   tx.ID,
		FromUserID:      senderUserID,
		ToUserID:        tx.ToUserID,
		Amount:          amount,
		TransactionType: string(kind),
	})
	return tx, nil
}

// Deposit credits the account holding pixKey with no sending account.
func (s *Service) Deposit(
	ctx context.Context,
	pixKey string,
	amount money.Money,
	description string,
) (tx *pix.Transaction, err error) {
	log := s.logger.With("context", "Deposit", "pixKey", pixKey)
	if !amount.IsPositive() {
		return nil, pix.ErrAmountMustBePositive
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		target, err := accounts.GetByPixKey(ctx, pixKey)
		if err != nil {
			return err
		}
		locked, err := accounts.LockForUpdate(ctx, target.ID)
		if err != nil {
			return err
		}
		target = locked[target.ID]
		if err := target.ValidateCredit(amount); err != nil {
			return err
		}
		if err := accounts.Credit(ctx, target.ID, amount); err != nil {
			return err
		}
		tx = pix.NewDeposit(target, amount, description, s.now())
		return txs.Create(ctx, tx)
	})
	if err != nil {
		log.Warn("Deposit rejected", "error", err)
		return nil, err
	}

	log.Info("Deposit completed", "transactionID", tx.ID, "amount", amount.String())
	s.emit(ctx, &events.PixAccountCredited{
		Meta:          events.NewMeta(),
		TransactionID: tx.ID,
		UserID:        tx.ToUserID,
		PixKey:        tx.ToPixKey,
		Amount:        amount,
	})
	return tx, nil
}

// ListTransactions returns the entries the user sent or received, newest
// first.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*pix.Transaction, error) {
	txs, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return txs.ListByUser(ctx, userID, s.pageSize)
}

func (s *Service) emit(ctx context.Context, evt events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, evt); err != nil {
		s.logger.Error("failed to emit event", "type", evt.Type(), "error", err)
	}
}
