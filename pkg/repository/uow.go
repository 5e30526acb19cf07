package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe
// repository access.
//
// Do runs the given function in a transaction boundary. Repositories obtained
// from the UnitOfWork passed to fn share that transaction; repositories
// obtained outside Do run on the plain connection.
//
//	err := uow.Do(ctx, func(tx UnitOfWork) error {
//		accounts, err := tx.AccountRepository()
//		...
//	})
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an error,
	// the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type,
	// bound to the current session.
	GetRepository(repoType reflect.Type) (any, error)

	UserRepository() (UserRepository, error)
	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	CardRepository() (CardRepository, error)
	CardTransactionRepository() (CardTransactionRepository, error)
	KYCRepository() (KYCRepository, error)
}

// TypeOf returns the reflect.Type of the interface T, for GetRepository.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
