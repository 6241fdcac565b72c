// Package store persists portfolios and their transaction ledgers in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/date"
)

// ErrNotFound reports a portfolio or transaction id unknown to the store.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS portfolios (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	cached_gain_loss   REAL,
	cached_total_value REAL,
	created_at         TIMESTAMP NOT NULL,
	updated_at         TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id           TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
	symbol       TEXT NOT NULL,
	action       TEXT NOT NULL CHECK (action IN ('buy', 'sell')),
	quantity     TEXT NOT NULL,
	price        TEXT NOT NULL,
	tx_date      TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_portfolio
	ON transactions(portfolio_id, tx_date);
`

// Portfolio is a named ledger with the last stats the refresh job cached.
// Cached fields are nil until the first refresh.
type Portfolio struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	CachedGainLoss   *float64 `json:"cachedGainLoss,omitempty"`
	CachedTotalValue *float64 `json:"cachedTotalValue,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store gives portfolio and transaction persistence over one SQLite file.
// Safe for concurrent use; the driver serializes writers.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. The directory is created when missing.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	log = log.With().Str("component", "store").Logger()
	log.Debug().Str("path", path).Msg("database open")
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// CreatePortfolio registers a new, empty portfolio.
func (s *Store) CreatePortfolio(ctx context.Context, name string) (Portfolio, error) {
	if name == "" {
		return Portfolio{}, errors.New("store: portfolio name is required")
	}
	now := time.Now().UTC()
	p := Portfolio{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO portfolios (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Portfolio{}, fmt.Errorf("store: create portfolio: %w", err)
	}
	s.log.Info().Str("portfolio", p.ID).Str("name", name).Msg("portfolio created")
	return p, nil
}

// Portfolio fetches one portfolio by id.
func (s *Store) Portfolio(ctx context.Context, id string) (Portfolio, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, cached_gain_loss, cached_total_value, created_at, updated_at
		 FROM portfolios WHERE id = ?`, id)
	return scanPortfolio(row)
}

// Portfolios lists every portfolio, oldest first.
func (s *Store) Portfolios(ctx context.Context) ([]Portfolio, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, cached_gain_loss, cached_total_value, created_at, updated_at
		 FROM portfolios ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list portfolios: %w", err)
	}
	defer rows.Close()

	list := make([]Portfolio, 0)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// RenamePortfolio changes a portfolio's display name.
func (s *Store) RenamePortfolio(ctx context.Context, id, name string) error {
	if name == "" {
		return errors.New("store: portfolio name is required")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE portfolios SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: rename portfolio: %w", err)
	}
	return checkAffected(res, id)
}

// DeletePortfolio removes a portfolio and, by cascade, its transactions.
func (s *Store) DeletePortfolio(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete portfolio: %w", err)
	}
	return checkAffected(res, id)
}

// SetCachedStats records the stats the background refresh job computed.
func (s *Store) SetCachedStats(ctx context.Context, id string, gainLoss, totalValue float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE portfolios SET cached_gain_loss = ?, cached_total_value = ?, updated_at = ? WHERE id = ?`,
		gainLoss, totalValue, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: cache stats: %w", err)
	}
	return checkAffected(res, id)
}

// AddTransaction appends one transaction to a portfolio's ledger. A missing
// tx.ID gets a fresh uuid; the stored transaction is returned.
func (s *Store) AddTransaction(ctx context.Context, portfolioID string, tx folio.Transaction) (folio.Transaction, error) {
	if err := validate(tx); err != nil {
		return folio.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := s.exists(ctx, portfolioID); err != nil {
		return folio.Transaction{}, err
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, portfolio_id, symbol, action, quantity, price, tx_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, portfolioID, tx.Symbol, string(tx.Action), tx.Quantity.String(), tx.Price.String(), tx.Date.String(), now, now)
	if err != nil {
		return folio.Transaction{}, fmt.Errorf("store: add transaction: %w", err)
	}
	return tx, nil
}

// BulkAddTransactions appends many transactions atomically: either every
// row is stored or none is.
func (s *Store) BulkAddTransactions(ctx context.Context, portfolioID string, txs []folio.Transaction) ([]folio.Transaction, error) {
	for i, tx := range txs {
		if err := validate(tx); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	if err := s.exists(ctx, portfolioID); err != nil {
		return nil, err
	}

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin bulk add: %w", err)
	}
	defer dbtx.Rollback()

	now := time.Now().UTC()
	stored := make([]folio.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		_, err := dbtx.ExecContext(ctx,
			`INSERT INTO transactions (id, portfolio_id, symbol, action, quantity, price, tx_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, portfolioID, tx.Symbol, string(tx.Action), tx.Quantity.String(), tx.Price.String(), tx.Date.String(), now, now)
		if err != nil {
			return nil, fmt.Errorf("store: bulk add transaction %s: %w", tx.ID, err)
		}
		stored = append(stored, tx)
	}
	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit bulk add: %w", err)
	}
	s.log.Info().Str("portfolio", portfolioID).Int("count", len(stored)).Msg("transactions imported")
	return stored, nil
}

// UpdateTransaction replaces the stored fields of an existing transaction.
func (s *Store) UpdateTransaction(ctx context.Context, portfolioID string, tx folio.Transaction) error {
	if err := validate(tx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET symbol = ?, action = ?, quantity = ?, price = ?, tx_date = ?, updated_at = ?
		 WHERE id = ? AND portfolio_id = ?`,
		tx.Symbol, string(tx.Action), tx.Quantity.String(), tx.Price.String(), tx.Date.String(),
		time.Now().UTC(), tx.ID, portfolioID)
	if err != nil {
		return fmt.Errorf("store: update transaction: %w", err)
	}
	return checkAffected(res, tx.ID)
}

// DeleteTransaction removes one transaction from a portfolio's ledger.
func (s *Store) DeleteTransaction(ctx context.Context, portfolioID, txID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND portfolio_id = ?`, txID, portfolioID)
	if err != nil {
		return fmt.Errorf("store: delete transaction: %w", err)
	}
	return checkAffected(res, txID)
}

// Transactions returns a portfolio's ledger rows in chronological order.
func (s *Store) Transactions(ctx context.Context, portfolioID string) ([]folio.Transaction, error) {
	if err := s.exists(ctx, portfolioID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, action, quantity, price, tx_date
		 FROM transactions WHERE portfolio_id = ? ORDER BY tx_date, created_at, id`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("store: list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]folio.Transaction, 0)
	for rows.Next() {
		var (
			tx              folio.Transaction
			action          string
			quantity, price string
			day             string
		)
		if err := rows.Scan(&tx.ID, &tx.Symbol, &action, &quantity, &price, &day); err != nil {
			return nil, fmt.Errorf("store: scan transaction: %w", err)
		}
		if tx.Action, err = folio.ParseAction(action); err != nil {
			return nil, fmt.Errorf("store: transaction %s: %w", tx.ID, err)
		}
		if tx.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("store: transaction %s quantity: %w", tx.ID, err)
		}
		if tx.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("store: transaction %s price: %w", tx.ID, err)
		}
		if tx.Date, err = date.Parse(day); err != nil {
			return nil, fmt.Errorf("store: transaction %s date: %w", tx.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Ledger materializes a portfolio's ledger for the computation layer.
func (s *Store) Ledger(ctx context.Context, portfolioID string) (*folio.Ledger, error) {
	txs, err := s.Transactions(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return folio.NewLedger(txs...), nil
}

func (s *Store) exists(ctx context.Context, portfolioID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM portfolios WHERE id = ?`, portfolioID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("portfolio %s: %w", portfolioID, ErrNotFound)
	}
	return err
}

// validate enforces the write-boundary rules: ledgers in the computation
// layer tolerate anything, rows entering the store do not.
func validate(tx folio.Transaction) error {
	if tx.Symbol == "" {
		return errors.New("store: transaction symbol is required")
	}
	if tx.Action != folio.Buy && tx.Action != folio.Sell {
		return fmt.Errorf("store: invalid action %q", tx.Action)
	}
	if !tx.Quantity.IsPositive() {
		return fmt.Errorf("store: quantity must be positive, got %s", tx.Quantity)
	}
	if !tx.Price.IsPositive() {
		return fmt.Errorf("store: price must be positive, got %s", tx.Price)
	}
	if tx.Date.IsZero() {
		return errors.New("store: transaction date is required")
	}
	return nil
}

type scanner interface{ Scan(dest ...any) error }

func scanPortfolio(row scanner) (Portfolio, error) {
	var (
		p                    Portfolio
		gainLoss, totalValue sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.Name, &gainLoss, &totalValue, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Portfolio{}, ErrNotFound
	}
	if err != nil {
		return Portfolio{}, fmt.Errorf("store: scan portfolio: %w", err)
	}
	if gainLoss.Valid {
		p.CachedGainLoss = &gainLoss.Float64
	}
	if totalValue.Valid {
		p.CachedTotalValue = &totalValue.Float64
	}
	return p, nil
}

func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
