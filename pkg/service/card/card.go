// Package card issues virtual cards and enforces their spend limits.
package card

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/card"
	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
)

const (
	listCardsLimit        = 10
	listTransactionsLimit = 100
)

// CreateInput carries a card request. Nil limits take the configured
// defaults; an empty holder name takes the user's full name.
type CreateInput struct {
	HolderName   string
	DailyLimit   *money.Money
	MonthlyLimit *money.Money
}

type Service struct {
	bus        eventbus.Bus
	uow        repository.UnitOfWork
	issuer     *card.Issuer
	defaults   card.Limits
	maxPerUser int
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a card Service from the card configuration.
func New(
	bus eventbus.Bus,
	uow repository.UnitOfWork,
	cfg *config.Card,
	logger *slog.Logger,
) (*Service, error) {
	issuer, err := card.NewIssuer(cfg.BIN, cfg.CVVSecret)
	if err != nil {
		return nil, err
	}
	daily, err := money.New(cfg.DefaultDailyLimit)
	if err != nil {
		return nil, err
	}
	monthly, err := money.New(cfg.DefaultMonthlyLimit)
	if err != nil {
		return nil, err
	}
	return &Service{
		bus:        bus,
		uow:        uow,
		issuer:     issuer,
		defaults:   card.Limits{Daily: daily, Monthly: monthly},
		maxPerUser: cfg.MaxPerUser,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateCard issues a card to a KYC-approved user.
func (s *Service) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	in CreateInput,
) (c *card.Card, err error) {
	log := s.logger.With("context", "CreateCard", "userID", userID)
	limits := s.defaults
	if in.DailyLimit != nil {
		limits.Daily = *in.DailyLimit
	}
	if in.MonthlyLimit != nil {
		limits.Monthly = *in.MonthlyLimit
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		// Locked so concurrent issues cannot both pass the per-user cap.
		u, err := users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !u.CanIssueCards() {
			return card.ErrKYCRequired
		}
		if s.maxPerUser > 0 {
			count, err := cards.CountByUser(ctx, userID)
			if err != nil {
				return err
			}
			if count >= int64(s.maxPerUser) {
				return card.ErrTooManyCards
			}
		}

		seq, err := cards.NextSequence(ctx)
		if err != nil {
			return err
		}
		number, err := s.issuer.Number(seq)
		if err != nil {
			return err
		}
		now := s.now()
		holder := in.HolderName
		if holder == "" {
			holder = u.FullName
		}
		c, err = card.New(userID, holder, limits, number, s.issuer.CVV(number, card.ExpiryFrom(now)), now)
		if err != nil {
			return err
		}
		return cards.Create(ctx, c)
	})
	if err != nil {
		log.Warn("CreateCard rejected", "error", err)
		return nil, err
	}
	log.Info("Card issued", "cardID", c.ID)
	return c, nil
}

// ListCards returns up to ten of the user's cards.
func (s *Service) ListCards(ctx context.Context, userID uuid.UUID) ([]*card.Card, error) {
	cards, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	return cards.ListByUser(ctx, userID, listCardsLimit)
}

// GetCard returns the card when userID owns it.
func (s *Service) GetCard(ctx context.Context, cardID, userID uuid.UUID) (*card.Card, error) {
	cards, err := s.uow.CardRepository()
	if err != nil {
		return nil, err
	}
	c, err := cards.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, card.ErrCardNotFound
	}
	return c, nil
}

// Block stops the card from accepting charges.
func (s *Service) Block(ctx context.Context, cardID, userID uuid.UUID) (*card.Card, error) {
	return s.mutate(ctx, "Block", cardID, &userID, func(c *card.Card) error {
		return c.Block(s.now())
	})
}

// Unblock reactivates a blocked card. Cancelled cards stay cancelled.
func (s *Service) Unblock(ctx context.Context, cardID, userID uuid.UUID) (*card.Card, error) {
	return s.mutate(ctx, "Unblock", cardID, &userID, func(c *card.Card) error {
		return c.Unblock()
	})
}

// Cancel terminates the card.
func (s *Service) Cancel(ctx context.Context, cardID, userID uuid.UUID) (*card.Card, error) {
	return s.mutate(ctx, "Cancel", cardID, &userID, func(c *card.Card) error {
		c.Cancel()
		return nil
	})
}

// UpdateLimits replaces both spend caps.
func (s *Service) UpdateLimits(
	ctx context.Context,
	cardID, userID uuid.UUID,
	daily, monthly money.Money,
) (*card.Card, error) {
	limits := card.Limits{Daily: daily, Monthly: monthly}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "UpdateLimits", cardID, &userID, func(c *card.Card) error {
		return c.SetLimits(limits)
	})
}

// mutate applies fn to the locked card. A nil owner skips the ownership
// check.
func (s *Service) mutate(
	ctx context.Context,
	op string,
	cardID uuid.UUID,
	owner *uuid.UUID,
	fn func(c *card.Card) error,
) (c *card.Card, err error) {
	log := s.logger.With("context", op, "cardID", cardID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		c, err = cards.GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}
		if owner != nil && c.UserID != *owner {
			return card.ErrCardNotFound
		}
		if err := fn(c); err != nil {
			return err
		}
		return cards.Update(ctx, c)
	})
	if err != nil {
		log.Warn(op+" rejected", "error", err)
		return nil, err
	}
	log.Info(op+" applied", "status", c.Status)
	return c, nil
}

// Charge authorizes a purchase against the card's limits and records it.
func (s *Service) Charge(
	ctx context.Context,
	cardID uuid.UUID,
	amount money.Money,
	merchant string,
) (tx *card.Transaction, err error) {
	log := s.logger.With("context", "Charge", "cardID", cardID)
	if !amount.IsPositive() {
		return nil, card.ErrAmountMustBePositive
	}
	var c *card.Card
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		txs, err := uow.CardTransactionRepository()
		if err != nil {
			return err
		}
		c, err = cards.GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}
		now := s.now()
		tx, err = card.NewPurchase(c.ID, amount, merchant, now)
		if err != nil {
			return err
		}
		if err := c.Charge(amount, now); err != nil {
			return err
		}
		if err := cards.Update(ctx, c); err != nil {
			return err
		}
		return txs.Create(ctx, tx)
	})
	if err != nil {
		log.Warn("Charge declined", "error", err)
		return nil, err
	}

	log.Info("Charge accepted", "transactionID", tx.ID, "amount", amount.String())
	s.emit(ctx, &events.CardCharged{
		Meta:          events.NewMeta(),
		TransactionID: tx.ID,
		CardID:        c.ID,
		UserID:        c.UserID,
		Amount:        amount,
		MerchantName:  tx.MerchantName,
	})
	return tx, nil
}

// Refund reverses a completed purchase once. Spend counters are given back
// only for the periods the purchase still belongs to.
func (s *Service) Refund(
	ctx context.Context,
	cardID, transactionID uuid.UUID,
) (refund *card.Transaction, err error) {
	log := s.logger.With("context", "Refund", "cardID", cardID, "transactionID", transactionID)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		cards, err := uow.CardRepository()
		if err != nil {
			return err
		}
		txs, err := uow.CardTransactionRepository()
		if err != nil {
			return err
		}
		c, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}
		purchase, err := txs.Get(ctx, transactionID)
		if err != nil {
			return err
		}
		if purchase.CardID != c.ID {
			return card.ErrTransactionNotFound
		}
		refunded, err := txs.HasRefund(ctx, purchase.ID)
		if err != nil {
			return err
		}
		now := s.now()
		refund, err = card.NewRefund(purchase, refunded, now)
		if err != nil {
			return err
		}
		c.Release(purchase.Amount, purchase.CreatedAt, now)
		if err := cards.Update(ctx, c); err != nil {
			return err
		}
		return txs.Create(ctx, refund)
	})
	if err != nil {
		log.Warn("Refund rejected", "error", err)
		return nil, err
	}

	log.Info("Refund recorded", "refundID", refund.ID)
	s.emit(ctx, &events.CardRefunded{
		Meta:          events.NewMeta(),
		TransactionID: refund.ID,
		RefundOf:      transactionID,
		CardID:        cardID,
		Amount:        refund.Amount,
	})
	return refund, nil
}

// ListCardTransactions returns the card's entries, newest first.
func (s *Service) ListCardTransactions(
	ctx context.Context,
	cardID, userID uuid.UUID,
) ([]*card.Transaction, error) {
	if _, err := s.GetCard(ctx, cardID, userID); err != nil {
		return nil, err
	}
	txs, err := s.uow.CardTransactionRepository()
	if err != nil {
		return nil, err
	}
	return txs.ListByCard(ctx, cardID, listTransactionsLimit)
}

func (s *Service) emit(ctx context.Context, evt events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, evt); err != nil {
		s.logger.Error("failed to emit event", "type", evt.Type(), "error", err)
	}
}
