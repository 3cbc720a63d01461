package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

// SQLiteStore implements Store on a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps the pragmas below in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}
	if err := MigrateSQLite(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteColumns = `id, data, descricao, valor, categoria, tipo, fonte, data_vencimento`

func (s *SQLiteStore) Append(ctx context.Context, txs ...transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = dbtx.Rollback() }()

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transacoes (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		_, err := stmt.ExecContext(ctx,
			tx.ID.String(),
			ToISODate(tx.Date.String()),
			tx.Description,
			tx.Amount.String(),
			tx.Category.String(),
			string(tx.Kind),
			string(tx.Source),
			isoDueDate(tx.DueDate),
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, ErrDuplicateID)
			}
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM transacoes
		ORDER BY data DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []transaction.Transaction
	for rows.Next() {
		tx, err := scanSQLiteRow(rows)
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

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (transaction.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM transacoes
		WHERE id = ?`, id.String())

	tx, err := scanSQLiteRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return transaction.Transaction{}, ErrNotFound
	}
	return tx, err
}

func (s *SQLiteStore) ReplaceCategory(ctx context.Context, id uuid.UUID, c categorization.Category) (transaction.Transaction, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE transacoes SET categoria = ? WHERE id = ?`, c.String(), id.String())
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return transaction.Transaction{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transacoes WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transacoes`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared transactions: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRow(row rowScanner) (transaction.Transaction, error) {
	var (
		tx                      transaction.Transaction
		id, date, amount, label string
		kind, source            string
		dueDate                 sql.NullString
	)
	if err := row.Scan(&id, &date, &tx.Description, &amount, &label, &kind, &source, &dueDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tx, err
		}
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return tx, fmt.Errorf("failed to decode id %q: %w", id, err)
	}
	tx.ID = parsed

	var due *string
	if dueDate.Valid {
		due = &dueDate.String
	}
	return decodeRow(tx, date, amount, label, kind, source, due)
}
