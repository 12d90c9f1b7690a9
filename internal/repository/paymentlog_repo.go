package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bookhaven/payments/internal/domain"
)

type PaymentLogRepo struct {
	db *sql.DB
}

func NewPaymentLogRepo(db *sql.DB) *PaymentLogRepo {
	return &PaymentLogRepo{db: db}
}

func (r *PaymentLogRepo) Insert(l *domain.PaymentLog) error {
	_, err := r.db.Exec(
		`INSERT INTO payment_logs
		(id, order_id, method_id, amount, currency, customer_email,
		 customer_country, status, transaction_id, error_message,
		 created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.ID, l.OrderID, l.MethodID, l.Amount, l.Currency, l.CustomerEmail,
		l.CustomerCountry, string(l.Status), l.TransactionID, l.ErrorMessage,
		l.CreatedAt.Format(time.RFC3339), l.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert payment log: %w", err)
	}
	return nil
}

// UpdateStatus records the outcome of the attempt identified by order id.
// Empty transaction id and error message leave the existing values in place.
func (r *PaymentLogRepo) UpdateStatus(orderID string, status domain.PaymentStatus, transactionID, errMsg string) error {
	_, err := r.db.Exec(
		`UPDATE payment_logs
		 SET status = ?,
		     transaction_id = CASE WHEN ? != '' THEN ? ELSE transaction_id END,
		     error_message = CASE WHEN ? != '' THEN ? ELSE error_message END,
		     updated_at = ?
		 WHERE order_id = ?`,
		string(status), transactionID, transactionID, errMsg, errMsg,
		time.Now().UTC().Format(time.RFC3339), orderID,
	)
	if err != nil {
		return fmt.Errorf("update payment log: %w", err)
	}
	return nil
}

func (r *PaymentLogRepo) GetByOrderID(orderID string) (*domain.PaymentLog, error) {
	row := r.db.QueryRow(
		`SELECT * FROM payment_logs WHERE order_id = ? ORDER BY created_at DESC LIMIT 1`,
		orderID,
	)
	return scanPaymentLog(row.Scan)
}

// CountRecentByEmail counts attempts by one customer since the given time.
// Used by the fraud velocity check.
func (r *PaymentLogRepo) CountRecentByEmail(email string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM payment_logs WHERE customer_email = ? AND created_at >= ?`,
		email, since.Format(time.RFC3339),
	).Scan(&count)
	return count, err
}

type LogFilter struct {
	MethodID string
	Status   string
	Email    string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

func (r *PaymentLogRepo) List(f LogFilter) ([]domain.PaymentLog, int, error) {
	where, args := buildLogWhere(f)

	var total int
	countSQL := "SELECT COUNT(*) FROM payment_logs" + where
	if err := r.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	querySQL := "SELECT * FROM payment_logs" + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var logs []domain.PaymentLog
	for rows.Next() {
		l, err := scanPaymentLog(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, total, rows.Err()
}

// DashboardStats holds aggregate payment statistics.
type DashboardStats struct {
	Total        int
	Completed    int
	Pending      int
	Failed       int
	TotalVolume  float64
	PaidVolume   float64
	FailedVolume float64
}

func (r *PaymentLogRepo) GetDashboardStats() (*DashboardStats, error) {
	s := &DashboardStats{}
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status='completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status IN ('initiated','pending') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status='failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(CASE WHEN status='completed' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status='failed' THEN amount ELSE 0 END), 0)
		FROM payment_logs
	`).Scan(&s.Total, &s.Completed, &s.Pending, &s.Failed,
		&s.TotalVolume, &s.PaidVolume, &s.FailedVolume)
	return s, err
}

type MethodVolume struct {
	MethodID  string  `json:"method_id"`
	Count     int     `json:"count"`
	PaidTotal float64 `json:"paid_total"`
}

func (r *PaymentLogRepo) GetVolumeByMethod() ([]MethodVolume, error) {
	rows, err := r.db.Query(`
		SELECT method_id, COUNT(*),
			COALESCE(SUM(CASE WHEN status='completed' THEN amount ELSE 0 END), 0)
		FROM payment_logs GROUP BY method_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MethodVolume
	for rows.Next() {
		var mv MethodVolume
		if err := rows.Scan(&mv.MethodID, &mv.Count, &mv.PaidTotal); err != nil {
			return nil, err
		}
		result = append(result, mv)
	}
	return result, rows.Err()
}

// --- helpers ---

func buildLogWhere(f LogFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.MethodID != "" {
		clauses = append(clauses, "method_id = ?")
		args = append(args, f.MethodID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Email != "" {
		clauses = append(clauses, "customer_email = ?")
		args = append(args, f.Email)
	}
	if f.From != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.To.Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanPaymentLog(scan func(...any) error) (*domain.PaymentLog, error) {
	var l domain.PaymentLog
	var status, createdAt, updatedAt string
	var txnID, errMsg sql.NullString

	err := scan(
		&l.ID, &l.OrderID, &l.MethodID, &l.Amount, &l.Currency,
		&l.CustomerEmail, &l.CustomerCountry, &status, &txnID, &errMsg,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = domain.PaymentStatus(status)
	l.TransactionID = txnID.String
	l.ErrorMessage = errMsg.String
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &l, nil
}
