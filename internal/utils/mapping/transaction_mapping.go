package mapping

import (
	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
	"github.com/vrcosta/bank_ledger_app/internal/models"
)

// ToModelTransaction converts a domain.Transaction to its DB representation.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:            d.TransactionID,
		AccountID:                d.AccountID,
		Type:                     string(d.Type),
		Amount:                   d.Amount,
		BeforeBalance:            d.BeforeBalance,
		AfterBalance:             d.AfterBalance,
		FromAccountID:            d.FromAccountID,
		ToAccountID:              d.ToAccountID,
		CounterpartTransactionID: d.CounterpartTransactionID,
		OriginalTransactionID:    d.OriginalTransactionID,
		ReversedAt:               d.ReversedAt,
		CreatedAt:                d.CreatedAt,
	}
}

// ToDomainTransaction converts a DB transaction row to the core domain type.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:            m.TransactionID,
		AccountID:                m.AccountID,
		Type:                     domain.TransactionType(m.Type),
		Amount:                   m.Amount,
		BeforeBalance:            m.BeforeBalance,
		AfterBalance:             m.AfterBalance,
		FromAccountID:            m.FromAccountID,
		ToAccountID:              m.ToAccountID,
		CounterpartTransactionID: m.CounterpartTransactionID,
		OriginalTransactionID:    m.OriginalTransactionID,
		ReversedAt:               m.ReversedAt,
		CreatedAt:                m.CreatedAt,
	}
}

// ToDomainTransactionSlice converts a slice of DB transaction rows.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
