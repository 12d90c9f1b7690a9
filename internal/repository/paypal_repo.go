package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bookhaven/payments/internal/domain"
)

// PayPalTxnRepo stores the append-only PayPal lifecycle audit trail. Rows are
// never updated or deleted.
type PayPalTxnRepo struct {
	db *sql.DB
}

func NewPayPalTxnRepo(db *sql.DB) *PayPalTxnRepo {
	return &PayPalTxnRepo{db: db}
}

func (r *PayPalTxnRepo) Insert(t *domain.PayPalTransaction) error {
	_, err := r.db.Exec(
		`INSERT INTO paypal_transactions
		(id, order_id, paypal_order_id, action, amount, currency, capture_id, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		t.ID, t.OrderID, t.PayPalOrderID, string(t.Action), t.Amount,
		t.Currency, t.CaptureID, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert paypal transaction: %w", err)
	}
	return nil
}

func (r *PayPalTxnRepo) ListByOrderID(orderID string) ([]domain.PayPalTransaction, error) {
	rows, err := r.db.Query(
		`SELECT * FROM paypal_transactions WHERE order_id = ? ORDER BY created_at`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var txns []domain.PayPalTransaction
	for rows.Next() {
		var t domain.PayPalTransaction
		var action, createdAt string
		var captureID sql.NullString
		if err := rows.Scan(
			&t.ID, &t.OrderID, &t.PayPalOrderID, &action, &t.Amount,
			&t.Currency, &captureID, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		t.Action = domain.PayPalAction(action)
		t.CaptureID = captureID.String
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// GetByPayPalOrderID returns the bookstore order id a PayPal order belongs to,
// resolved from the earliest audit row. Used by the webhook handler.
func (r *PayPalTxnRepo) GetByPayPalOrderID(paypalOrderID string) (*domain.PayPalTransaction, error) {
	row := r.db.QueryRow(
		`SELECT * FROM paypal_transactions WHERE paypal_order_id = ? ORDER BY created_at LIMIT 1`,
		paypalOrderID,
	)
	var t domain.PayPalTransaction
	var action, createdAt string
	var captureID sql.NullString
	err := row.Scan(
		&t.ID, &t.OrderID, &t.PayPalOrderID, &action, &t.Amount,
		&t.Currency, &captureID, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	t.Action = domain.PayPalAction(action)
	t.CaptureID = captureID.String
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
}
