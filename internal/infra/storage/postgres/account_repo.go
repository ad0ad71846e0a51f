package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/core/metrics"
	"github.com/vietddude/watchonly/internal/infra/storage"
)

type accountRow struct {
	Position int            `db:"position"`
	ID       string         `db:"id"`
	Address  string         `db:"address"`
	Scopes   pq.StringArray `db:"scopes"`
	Label    string         `db:"label"`
	Type     string         `db:"account_type"`
}

const insertAccount = `
INSERT INTO watch_only_accounts (position, id, address, scopes, label, account_type)
VALUES (:position, :id, :address, :scopes, :label, :account_type)`

const upsertMeta = `
INSERT INTO keyring_snapshot_meta (id, account_count, saved_at)
VALUES (1, $1, NOW())
ON CONFLICT (id) DO UPDATE SET account_count = EXCLUDED.account_count, saved_at = EXCLUDED.saved_at`

// AccountRepo implements storage.SnapshotStore using PostgreSQL. The whole
// account table is replaced inside one transaction on every save.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new PostgreSQL account repository.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

var _ storage.SnapshotStore = (*AccountRepo)(nil)

// Load reads every account ordered by position. It reports
// storage.ErrSnapshotNotFound until the first save.
func (r *AccountRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotLatency.WithLabelValues(r.Name(), "load").Observe(time.Since(start).Seconds())
	}()

	var count int
	err := r.db.GetContext(ctx, &count, `SELECT account_count FROM keyring_snapshot_meta WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot meta: %w", err)
	}

	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT position, id, address, scopes, label, account_type
		FROM watch_only_accounts
		ORDER BY position`); err != nil {
		return nil, fmt.Errorf("failed to list watch-only accounts: %w", err)
	}

	snap := &domain.Snapshot{Accounts: make([]domain.Account, 0, len(rows))}
	for _, row := range rows {
		scopes := make([]domain.Scope, 0, len(row.Scopes))
		for _, s := range row.Scopes {
			scopes = append(scopes, domain.Scope(s))
		}
		snap.Accounts = append(snap.Accounts, domain.Account{
			ID:      row.ID,
			Address: row.Address,
			Scopes:  scopes,
			Options: domain.AccountOptions{Label: row.Label},
			Methods: []string{},
			Type:    domain.AccountType(row.Type),
		})
	}
	return snap, nil
}

// Save replaces all stored accounts with the snapshot contents.
func (r *AccountRepo) Save(ctx context.Context, snapshot *domain.Snapshot) (err error) {
	defer func() {
		metrics.SnapshotPersists.WithLabelValues(r.Name(), metrics.Result(err)).Inc()
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM watch_only_accounts`); err != nil {
		return fmt.Errorf("failed to clear watch-only accounts: %w", err)
	}

	var accounts []domain.Account
	if snapshot != nil {
		accounts = snapshot.Accounts
	}
	for i, account := range accounts {
		scopes := make(pq.StringArray, 0, len(account.Scopes))
		for _, s := range account.Scopes {
			scopes = append(scopes, string(s))
		}
		row := accountRow{
			Position: i,
			ID:       account.ID,
			Address:  account.Address,
			Scopes:   scopes,
			Label:    account.Options.Label,
			Type:     string(account.Type),
		}
		if _, err = tx.NamedExecContext(ctx, insertAccount, row); err != nil {
			return fmt.Errorf("failed to save watch-only account %s: %w", account.ID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, upsertMeta, len(accounts)); err != nil {
		return fmt.Errorf("failed to save snapshot meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// UpdatedAt returns when the snapshot was last saved.
func (r *AccountRepo) UpdatedAt(ctx context.Context) (time.Time, error) {
	var savedAt time.Time
	err := r.db.GetContext(ctx, &savedAt, `SELECT saved_at FROM keyring_snapshot_meta WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read snapshot meta: %w", err)
	}
	return savedAt, nil
}

// Health pings the database.
func (r *AccountRepo) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

func (r *AccountRepo) Name() string {
	return "postgres"
}

func (r *AccountRepo) Close() error {
	return r.db.Close()
}
