package repository

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository bound to db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	m := mapTransactionToModel(tx)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	}); err != nil {
		return err
	}
	tx.ID = m.ID
	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, ref uuid.UUID) (*account.Transaction, error) {
	var m Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where("reference = ?", ref.String()).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return mapTransactionToDomain(&m)
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID int64) ([]*account.Transaction, error) {
	var models []Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("origin_account_id = ? OR destination_account_id = ?", accountID, accountID).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
			Find(&models).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*account.Transaction, 0, len(models))
	for i := range models {
		tx, err := mapTransactionToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}
