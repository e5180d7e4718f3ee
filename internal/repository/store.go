package repository

import (
	"context"
	"errors"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// Store runs a callback inside one database transaction. Repositories called
// with the callback's context join that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction commits when fn returns nil and rolls back otherwise. A nested
// call joins the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return translate(err)
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// translate maps driver errors onto the application taxonomy. Errors that are
// already typed pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Wrap(err, apperrors.CodeConflict, "Record already exists", apperrors.ErrConflict.HTTPCode)
	}
	return apperrors.Store(err)
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource)
	}
	return translate(err)
}

func paginate(page, pageSize int) (offset, limit int) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return (page - 1) * pageSize, pageSize
}
