package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB opens gorm on the MariaDB dialect over sqlmock. Every expectation
// must be consumed by the end of the test.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})
	return db, mock
}

func newPurchase(batch string) *models.PackagePurchase {
	return &models.PackagePurchase{
		PurchaseBatchID: batch,
		UserID:          1,
		PackageID:       1,
		Status:          models.PurchaseStatusActive,
		TotalAmount:     decimal.RequireFromString("999.00"),
	}
}

func newAddonPurchase(batch string) *models.AddonPurchase {
	return &models.AddonPurchase{
		PurchaseBatchID: batch,
		UserID:          1,
		AddonID:         1,
		Status:          models.PurchaseStatusActive,
		AmountPaid:      decimal.RequireFromString("150.00"),
	}
}

func TestTransactionCommitsNestedCallsOnce(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)
	purchases := NewPackagePurchaseRepository(db)
	addons := NewAddonPurchaseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `package_purchases`").WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO `addon_purchases`").WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectCommit()

	err := store.Transaction(context.Background(), func(ctx context.Context) error {
		if err := purchases.Create(ctx, newPurchase("b-1")); err != nil {
			return err
		}
		// joins the outer transaction instead of opening a second one
		return store.Transaction(ctx, func(ctx context.Context) error {
			return addons.Create(ctx, newAddonPurchase("b-1"))
		})
	})
	require.NoError(t, err)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)
	purchases := NewPackagePurchaseRepository(db)
	addons := NewAddonPurchaseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `package_purchases`").WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO `addon_purchases`").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(ctx context.Context) error {
		if err := purchases.Create(ctx, newPurchase("b-2")); err != nil {
			return err
		}
		return addons.Create(ctx, newAddonPurchase("b-2"))
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrStoreUnavailable), "got %v", err)
}

func TestTransactionKeepsTypedErrors(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(ctx context.Context) error {
		return apperrors.Forbidden("nope")
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestDuplicateKeyBecomesConflict(t *testing.T) {
	db, mock := newMockDB(t)
	subs := NewFormSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO `form_submissions`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '1-logo_design' for key 'idx_submission_user_form'"})

	err := subs.Create(context.Background(), &models.FormSubmission{UserID: 1, FormType: "logo_design", SchemaVersion: 1})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict), "got %v", err)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.True(t, apperrors.Is(translate(gorm.ErrDuplicatedKey), apperrors.ErrConflict))
	assert.True(t, apperrors.Is(translate(errors.New("boom")), apperrors.ErrStoreUnavailable))

	err := notFound(gorm.ErrRecordNotFound, "Purchase")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Purchase not found", apperrors.From(err).Message)
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		page, size    int
		offset, limit int
	}{
		{0, 0, 0, 20},
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{2, 500, 20, 20},
		{-1, -5, 0, 20},
	}
	for _, tc := range cases {
		offset, limit := paginate(tc.page, tc.size)
		assert.Equal(t, tc.offset, offset, "page %d size %d", tc.page, tc.size)
		assert.Equal(t, tc.limit, limit, "page %d size %d", tc.page, tc.size)
	}
}
