package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using PostgreSQL. Dates cross the boundary as ISO
// text and amounts as numeric text so no precision is lost.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a new PostgreSQL transaction store
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, to_char(data, 'YYYY-MM-DD'), descricao, valor::text, categoria, tipo, fonte,
		to_char(data_vencimento, 'YYYY-MM-DD')`

// Append inserts txs in one database transaction.
func (s *PostgresStore) Append(ctx context.Context, txs ...transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbtx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = dbtx.Rollback(ctx) }()

	query := `
		INSERT INTO transacoes (id, data, descricao, valor, categoria, tipo, fonte, data_vencimento)
		VALUES ($1, $2::date, $3, $4::numeric, $5, $6, $7, $8::date)`

	for _, tx := range txs {
		_, err := dbtx.Exec(ctx, query,
			tx.ID,
			ToISODate(tx.Date.String()),
			tx.Description,
			tx.Amount.String(),
			tx.Category.String(),
			string(tx.Kind),
			string(tx.Source),
			isoDueDate(tx.DueDate),
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, ErrDuplicateID)
			}
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

// List returns every transaction, newest date first.
func (s *PostgresStore) List(ctx context.Context) ([]transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM transacoes
		ORDER BY data DESC, seq DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

// Get retrieves a transaction by ID
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + `
		FROM transacoes
		WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return transaction.Transaction{}, ErrNotFound
	}
	return tx, err
}

// ReplaceCategory updates the category of one transaction and returns the stored row.
func (s *PostgresStore) ReplaceCategory(ctx context.Context, id uuid.UUID, c categorization.Category) (transaction.Transaction, error) {
	query := `
		UPDATE transacoes
		SET categoria = $2
		WHERE id = $1
		RETURNING ` + selectColumns

	tx, err := scanTransaction(s.db.QueryRow(ctx, query, id, c.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return transaction.Transaction{}, ErrNotFound
	}
	return tx, err
}

// Delete removes a transaction
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM transacoes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearAll removes every transaction and reports how many were deleted.
func (s *PostgresStore) ClearAll(ctx context.Context) (int, error) {
	result, err := s.db.Exec(ctx, `DELETE FROM transacoes`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func scanTransaction(row pgx.Row) (transaction.Transaction, error) {
	var (
		tx                  transaction.Transaction
		date, amount, label string
		kind, source        string
		dueDate             *string
	)
	if err := row.Scan(&tx.ID, &date, &tx.Description, &amount, &label, &kind, &source, &dueDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tx, err
		}
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return decodeRow(tx, date, amount, label, kind, source, dueDate)
}

// decodeRow fills tx from the text columns shared by the SQL stores.
func decodeRow(tx transaction.Transaction, date, amount, label, kind, source string, dueDate *string) (transaction.Transaction, error) {
	var err error
	if tx.Date, err = scanDate(date); err != nil {
		return tx, fmt.Errorf("failed to decode date of %s: %w", tx.ID, err)
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return tx, fmt.Errorf("failed to decode amount of %s: %w", tx.ID, err)
	}
	if tx.Category, err = categorization.ParseCategory(label); err != nil {
		return tx, fmt.Errorf("failed to decode category of %s: %w", tx.ID, err)
	}
	if tx.DueDate, err = scanDueDate(dueDate); err != nil {
		return tx, fmt.Errorf("failed to decode due date of %s: %w", tx.ID, err)
	}
	tx.Kind = transaction.Kind(kind)
	tx.Source = transaction.Source(source)
	return tx, nil
}
