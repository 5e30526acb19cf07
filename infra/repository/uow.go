package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/fintechflow/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Repositories handed out inside Do share the transaction session.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repository.TypeOf[repository.UserRepository](): func(db *gorm.DB) any {
				return NewUserRepository(db)
			},
			repository.TypeOf[repository.AccountRepository](): func(db *gorm.DB) any {
				return NewAccountRepository(db)
			},
			repository.TypeOf[repository.TransactionRepository](): func(db *gorm.DB) any {
				return NewTransactionRepository(db)
			},
			repository.TypeOf[repository.CardRepository](): func(db *gorm.DB) any {
				return NewCardRepository(db)
			},
			repository.TypeOf[repository.CardTransactionRepository](): func(db *gorm.DB) any {
				return NewCardTransactionRepository(db)
			},
			repository.TypeOf[repository.KYCRepository](): func(db *gorm.DB) any {
				return NewKYCRepository(db)
			},
		},
	}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		// Already inside a transaction; join it.
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

// GetRepository provides type-safe access to repositories using the
// transaction session, or the plain connection outside Do.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	session := u.tx
	if session == nil {
		session = u.db
	}
	return constructor(session), nil
}

func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return get[repository.UserRepository](u)
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return get[repository.AccountRepository](u)
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return get[repository.TransactionRepository](u)
}

func (u *UoW) CardRepository() (repository.CardRepository, error) {
	return get[repository.CardRepository](u)
}

func (u *UoW) CardTransactionRepository() (repository.CardTransactionRepository, error) {
	return get[repository.CardTransactionRepository](u)
}

func (u *UoW) KYCRepository() (repository.KYCRepository, error) {
	return get[repository.KYCRepository](u)
}

func get[T any](u *UoW) (T, error) {
	var zero T
	repoAny, err := u.GetRepository(repository.TypeOf[T]())
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("repository %T does not implement %v", repoAny, repository.TypeOf[T]())
	}
	return repo, nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
