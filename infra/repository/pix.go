package repository

import (
	"bytes"
	"context"
	"slices"

	"github.com/amirasaad/fintechflow/pkg/domain/pix"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns an AccountRepository bound to db.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *pix.Account) error {
	m := mapAccountDomainToModel(a)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return duplicateAs(err, pix.ErrKeyTaken)
	}
	return nil
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*pix.Account, error) {
	var m PixAccount
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, notFoundAs(err, pix.ErrAccountNotFound)
	}
	return mapAccountModelToDomain(&m), nil
}

func (r *accountRepository) GetByPixKey(ctx context.Context, key string) (*pix.Account, error) {
	var m PixAccount
	if err := r.db.WithContext(ctx).First(&m, "pix_key = ?", key).Error; err != nil {
		return nil, notFoundAs(err, pix.ErrRecipientNotFound)
	}
	return mapAccountModelToDomain(&m), nil
}

func (r *accountRepository) LockForUpdate(
	ctx context.Context,
	ids ...uuid.UUID,
) (map[uuid.UUID]*pix.Account, error) {
	ordered := slices.Clone(ids)
	slices.SortFunc(ordered, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	ordered = slices.Compact(ordered)

	out := make(map[uuid.UUID]*pix.Account, len(ordered))
	for _, id := range ordered {
		var m PixAccount
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, "id = ?", id).Error
		if err != nil {
			return nil, notFoundAs(err, pix.ErrAccountNotFound)
		}
		out[id] = mapAccountModelToDomain(&m)
	}
	return out, nil
}

func (r *accountRepository) Debit(ctx context.Context, id uuid.UUID, amount money.Money) (bool, error) {
	res := r.db.WithContext(ctx).Model(&PixAccount{}).
		Where("id = ? AND balance >= ?", id, amount.Amount()).
		Update("balance", gorm.Expr("balance - ?", amount.Amount()))
	if res.Error != nil {
		return false, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *accountRepository) Credit(ctx context.Context, id uuid.UUID, amount money.Money) error {
	res := r.db.WithContext(ctx).Model(&PixAccount{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount.Amount()))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return pix.ErrAccountNotFound
	}
	return nil
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a TransactionRepository bound to db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *pix.Transaction) error {
	m := mapTransactionDomainToModel(tx)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

func (r *transactionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*pix.Transaction, error) {
	var rows []PixTransaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*pix.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, mapTransactionModelToDomain(&rows[i]))
	}
	return out, nil
}

func mapAccountDomainToModel(a *pix.Account) PixAccount {
	return PixAccount{
		ID:          a.ID,
		UserID:      a.UserID,
		PixKey:      a.PixKey,
		PixKeyType:  string(a.PixKeyType),
		AccountType: a.AccountType,
		Balance:     a.Balance.Amount(),
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
	}
}

func mapAccountModelToDomain(m *PixAccount) *pix.Account {
	return &pix.Account{
		ID:          m.ID,
		UserID:      m.UserID,
		PixKey:      m.PixKey,
		PixKeyType:  pix.KeyType(m.PixKeyType),
		AccountType: m.AccountType,
		Balance:     money.NewFromSmallestUnit(m.Balance),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

func mapTransactionDomainToModel(t *pix.Transaction) PixTransaction {
	return PixTransaction{
		ID:              t.ID,
		FromUserID:      t.FromUserID,
		ToUserID:        t.ToUserID,
		FromPixKey:      t.FromPixKey,
		ToPixKey:        t.ToPixKey,
		Amount:          t.Amount.Amount(),
		Description:     t.Description,
		TransactionType: string(t.TransactionType),
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		CompletedAt:     t.CompletedAt,
	}
}

func mapTransactionModelToDomain(m *PixTransaction) *pix.Transaction {
	return &pix.Transaction{
		ID:              m.ID,
		FromUserID:      m.FromUserID,
		ToUserID:        m.ToUserID,
		FromPixKey:      m.FromPixKey,
		ToPixKey:        m.ToPixKey,
		Amount:          money.NewFromSmallestUnit(m.Amount),
		Description:     m.Description,
		TransactionType: pix.TransactionType(m.TransactionType),
		Status:          pix.TransactionStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		CompletedAt:     m.CompletedAt,
	}
}
