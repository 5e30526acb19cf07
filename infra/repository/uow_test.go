package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestUoW_DoAndGetRepository(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		repoAny, err := txUow.GetRepository(repository.TypeOf[repository.AccountRepository]())
		require.NoError(t, err)
		_, ok := repoAny.(*accountRepository)
		assert.True(t, ok)

		repoAny, err = txUow.GetRepository(repository.TypeOf[repository.CardRepository]())
		require.NoError(t, err)
		_, ok = repoAny.(*cardRepository)
		assert.True(t, ok)

		repoAny, err = txUow.GetRepository(repository.TypeOf[repository.KYCRepository]())
		require.NoError(t, err)
		_, ok = repoAny.(*kycRepository)
		assert.True(t, ok)

		_, err = txUow.GetRepository(repository.TypeOf[fmt.Stringer]())
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_TypeSafeMethods(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	userRepo, err := uow.UserRepository()
	require.NoError(t, err)
	assert.NotNil(t, userRepo)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		accounts, err := txUow.AccountRepository()
		require.NoError(t, err)
		assert.NotNil(t, accounts)

		txs, err := txUow.TransactionRepository()
		require.NoError(t, err)
		assert.NotNil(t, txs)

		cardTxs, err := txUow.CardTransactionRepository()
		require.NoError(t, err)
		assert.NotNil(t, cardTxs)

		// Nested Do joins the open transaction.
		return txUow.Do(context.Background(), func(repository.UnitOfWork) error { return nil })
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(repository.UnitOfWork) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_DebitIsConditional(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "pix_accounts" SET "balance"=balance - $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.Debit(context.Background(), id, money.Must("10.00"))
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "pix_accounts" SET "balance"=balance + $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = repo.Credit(context.Background(), id, money.Must("10.00"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_LockForUpdateLocksInIDOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	lo := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	hi := uuid.MustParse("ffffffff-0000-4000-8000-000000000001")
	lockQuery := regexp.QuoteMeta(`SELECT * FROM "pix_accounts" WHERE id = $1`) + `.*FOR UPDATE$`

	for _, id := range []uuid.UUID{lo, hi} {
		mock.ExpectQuery(lockQuery).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "pix_key", "balance"}).
				AddRow(id.String(), uuid.NewString(), id.String()+"@example.com", 1000))
	}

	got, err := repo.LockForUpdate(context.Background(), hi, lo, hi)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10.00", got[lo].Balance.String())
	assert.Equal(t, hi, got[hi].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`) + `.*FOR UPDATE$`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "kyc_status"}).
			AddRow(id.String(), "locked@example.com", "user", "approved"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`) + `.*FOR UPDATE$`).
		WithArgs(id, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	u, err := repo.GetForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "locked@example.com", u.Email)
	assert.Equal(t, user.KYCApproved, u.KYCStatus)

	_, err = repo.GetForUpdate(context.Background(), id)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMapGormErrorToDomain(t *testing.T) {
	assert.NoError(t, MapGormErrorToDomain(nil))
	assert.ErrorIs(t, MapGormErrorToDomain(gorm.ErrRecordNotFound), domain.ErrNotFound)
	assert.ErrorIs(t, MapGormErrorToDomain(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), domain.ErrAlreadyExists)
	assert.ErrorIs(t, MapGormErrorToDomain(gorm.ErrCheckConstraintViolated), domain.ErrFailedPrecondition)

	other := errors.New("connection reset")
	assert.Equal(t, other, MapGormErrorToDomain(other))
	assert.Equal(t, other, WrapError(func() error { return other }))
	assert.ErrorIs(t, duplicateAs(gorm.ErrDuplicatedKey, user.ErrEmailAlreadyRegistered), domain.ErrConflict)
}
