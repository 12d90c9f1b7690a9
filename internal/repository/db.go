package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS payment_logs (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			method_id TEXT NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_country TEXT NOT NULL,
			status TEXT NOT NULL,
			transaction_id TEXT,
			error_message TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_logs_order ON payment_logs(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_logs_status ON payment_logs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_logs_email ON payment_logs(customer_email)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_logs_created_at ON payment_logs(created_at)`,

		`CREATE TABLE IF NOT EXISTS paypal_transactions (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			paypal_order_id TEXT NOT NULL,
			action TEXT NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL,
			capture_id TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paypal_transactions_order ON paypal_transactions(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_paypal_transactions_paypal_order ON paypal_transactions(paypal_order_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
