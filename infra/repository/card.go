package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/fintechflow/pkg/domain/card"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const cardNumberSequence = "card_number"

type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository returns a CardRepository bound to db.
func NewCardRepository(db *gorm.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(ctx context.Context, c *card.Card) error {
	m := mapCardDomainToModel(c)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *cardRepository) Get(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	var m VirtualCard
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, card.ErrCardNotFound)
	}
	return mapCardModelToDomain(&m), nil
}

func (r *cardRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	var m VirtualCard
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, notFoundAs(err, card.ErrCardNotFound)
	}
	return mapCardModelToDomain(&m), nil
}

func (r *cardRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*card.Card, error) {
	var rows []VirtualCard
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*card.Card, 0, len(rows))
	for i := range rows {
		out = append(out, mapCardModelToDomain(&rows[i]))
	}
	return out, nil
}

func (r *cardRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&VirtualCard{}).
		Where("user_id = ? AND status <> ?", userID, string(card.StatusCancelled)).
		Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

// Update persists the mutable columns of a card.
func (r *cardRepository) Update(ctx context.Context, c *card.Card) error {
	res := r.db.WithContext(ctx).Model(&VirtualCard{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"status":           string(c.Status),
			"daily_limit":      c.DailyLimit.Amount(),
			"monthly_limit":    c.MonthlyLimit.Amount(),
			"daily_spent":      c.DailySpent.Amount(),
			"monthly_spent":    c.MonthlySpent.Amount(),
			"daily_reset_at":   c.DailyResetAt,
			"monthly_reset_at": c.MonthlyResetAt,
			"blocked_at":       c.BlockedAt,
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return card.ErrCardNotFound
	}
	return nil
}

// NextSequence increments the counter row; the UPDATE holds the row lock
// until the transaction ends so concurrent callers get distinct values.
func (r *cardRepository) NextSequence(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&CardSequence{}).
		Where("name = ?", cardNumberSequence).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		seq := CardSequence{Name: cardNumberSequence, Value: 1}
		if err := db.Create(&seq).Error; err != nil {
			return 0, MapGormErrorToDomain(err)
		}
		return seq.Value, nil
	}
	var seq CardSequence
	if err := db.First(&seq, "name = ?", cardNumberSequence).Error; err != nil {
		return 0, MapGormErrorToDomain(err)
	}
	return seq.Value, nil
}

type cardTransactionRepository struct {
	db *gorm.DB
}

// NewCardTransactionRepository returns a CardTransactionRepository bound to db.
func NewCardTransactionRepository(db *gorm.DB) repository.CardTransactionRepository {
	return &cardTransactionRepository{db: db}
}

func (r *cardTransactionRepository) Create(ctx context.Context, tx *card.Transaction) error {
	m := mapCardTransactionDomainToModel(tx)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return duplicateAs(err, card.ErrNotRefundable)
	}
	return nil
}

func (r *cardTransactionRepository) Get(ctx context.Context, id uuid.UUID) (*card.Transaction, error) {
	var m CardTransaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, card.ErrTransactionNotFound)
	}
	return mapCardTransactionModelToDomain(&m), nil
}

func (r *cardTransactionRepository) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
	limit int,
) ([]*card.Transaction, error) {
	var rows []CardTransaction
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*card.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, mapCardTransactionModelToDomain(&rows[i]))
	}
	return out, nil
}

func (r *cardTransactionRepository) HasRefund(ctx context.Context, purchaseID uuid.UUID) (bool, error) {
	var m CardTransaction
	err := r.db.WithContext(ctx).First(&m, "refund_of = ?", purchaseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, MapGormErrorToDomain(err)
	}
	return true, nil
}

func mapCardDomainToModel(c *card.Card) VirtualCard {
	return VirtualCard{
		ID:             c.ID,
		UserID:         c.UserID,
		CardNumber:     c.CardNumber,
		CardHolderName: c.CardHolderName,
		CVV:            c.CVV,
		ExpiryDate:     c.ExpiryDate,
		Status:         string(c.Status),
		DailyLimit:     c.DailyLimit.Amount(),
		MonthlyLimit:   c.MonthlyLimit.Amount(),
		DailySpent:     c.DailySpent.Amount(),
		MonthlySpent:   c.MonthlySpent.Amount(),
		DailyResetAt:   c.DailyResetAt,
		MonthlyResetAt: c.MonthlyResetAt,
		CreatedAt:      c.CreatedAt,
		BlockedAt:      c.BlockedAt,
	}
}

func mapCardModelToDomain(m *VirtualCard) *card.Card {
	return &card.Card{
		ID:             m.ID,
		UserID:         m.UserID,
		CardNumber:     m.CardNumber,
		CardHolderName: m.CardHolderName,
		CVV:            m.CVV,
		ExpiryDate:     m.ExpiryDate,
		Status:         card.Status(m.Status),
		DailyLimit:     money.NewFromSmallestUnit(m.DailyLimit),
		MonthlyLimit:   money.NewFromSmallestUnit(m.MonthlyLimit),
		DailySpent:     money.NewFromSmallestUnit(m.DailySpent),
		MonthlySpent:   money.NewFromSmallestUnit(m.MonthlySpent),
		DailyResetAt:   m.DailyResetAt.UTC(),
		MonthlyResetAt: m.MonthlyResetAt.UTC(),
		CreatedAt:      m.CreatedAt,
		BlockedAt:      m.BlockedAt,
	}
}

func mapCardTransactionDomainToModel(t *card.Transaction) CardTransaction {
	return CardTransaction{
		ID:              t.ID,
		CardID:          t.CardID,
		MerchantName:    t.MerchantName,
		Amount:          t.Amount.Amount(),
		Currency:        t.Currency.String(),
		Status:          string(t.Status),
		TransactionType: string(t.TransactionType),
		RefundOf:        t.RefundOf,
		CreatedAt:       t.CreatedAt,
	}
}

func mapCardTransactionModelToDomain(m *CardTransaction) *card.Transaction {
	return &card.Transaction{
		ID:              m.ID,
		CardID:          m.CardID,
		MerchantName:    m.MerchantName,
		Amount:          money.NewFromSmallestUnit(m.Amount),
		Currency:        money.Code(m.Currency),
		Status:          card.TransactionStatus(m.Status),
		TransactionType: card.TransactionType(m.TransactionType),
		RefundOf:        m.RefundOf,
		CreatedAt:       m.CreatedAt,
	}
}
