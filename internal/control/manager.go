package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/watchonly/internal/core/config"
	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/core/metrics"
	redisclient "github.com/vietddude/watchonly/internal/infra/redis"
	"github.com/vietddude/watchonly/internal/infra/storage"
	"github.com/vietddude/watchonly/internal/infra/storage/file"
	"github.com/vietddude/watchonly/internal/infra/storage/memory"
	"github.com/vietddude/watchonly/internal/infra/storage/postgres"
	"github.com/vietddude/watchonly/internal/keyring"
	"github.com/vietddude/watchonly/internal/keyring/address"
)

// Config holds the manager configuration.
type Config struct {
	Storage  config.StorageConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// Manager owns one keyring for the lifetime of a host session. It restores
// the keyring from the configured store, serializes mutations and persists the
// full snapshot after each one.
type Manager struct {
	keyring *keyring.WatchOnly
	store   storage.SnapshotStore
	log     *slog.Logger
	mu      sync.Mutex
}

// NewManager opens the configured snapshot store and creates an empty keyring.
// Call Start to restore persisted accounts.
func NewManager(ctx context.Context, cfg Config, log *slog.Logger) (*Manager, error) {
	if log == nil {
		log = slog.Default()
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("Using snapshot storage", "store", store.Name())

	return NewManagerWithStore(store, log), nil
}

// NewManagerWithStore creates a manager around an existing store.
func NewManagerWithStore(store storage.SnapshotStore, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		keyring: keyring.New(keyring.WithLogger(log)),
		store:   store,
		log:     log,
	}
}

func openStore(ctx context.Context, cfg Config, log *slog.Logger) (storage.SnapshotStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.NewSnapshotStore(), nil

	case config.DriverFile, "":
		store, err := file.NewSnapshotStore(cfg.Storage.File, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init file storage: %w", err)
		}
		return store, nil

	case config.DriverRedis:
		client, err := redisclient.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis storage: %w", err)
		}
		return storage.NewRetryStore(client, storage.DefaultRetryConfig, log), nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return storage.NewRetryStore(postgres.NewAccountRepo(db), storage.DefaultRetryConfig, log), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Start restores the keyring from the store. A store that has never been
// written to yields an empty keyring.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.store.Load(ctx)
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		m.log.Info("No persisted snapshot, starting with an empty keyring", "store", m.store.Name())
		metrics.Accounts.Set(0)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	if err := m.keyring.Deserialize(ctx, snap); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	metrics.Accounts.Set(float64(m.keyring.Len()))
	return nil
}

// Keyring exposes the underlying backend for read access.
func (m *Manager) Keyring() *keyring.WatchOnly {
	return m.keyring
}

// StoreName returns the name of the active snapshot store.
func (m *Manager) StoreName() string {
	return m.store.Name()
}

// Accounts lists all registered accounts.
func (m *Manager) Accounts(ctx context.Context) ([]domain.Account, error) {
	return m.keyring.ListAccounts(ctx)
}

// Validate runs the address validator against the current accounts. The
// candidate is trimmed first, as the creation form does.
func (m *Manager) Validate(ctx context.Context, candidate string) (address.Result, error) {
	accounts, err := m.keyring.ListAccounts(ctx)
	if err != nil {
		return address.Result{}, err
	}
	return address.Validate(accounts, strings.TrimSpace(candidate)), nil
}

// AddAccount registers a watch-only account from raw form input. An empty
// name is replaced with the next available "Watch Only N" name.
func (m *Manager) AddAccount(ctx context.Context, name, addr string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr = strings.TrimSpace(addr)
	name = strings.TrimSpace(name)

	accounts, err := m.keyring.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	if addr == "" {
		return nil, &domain.ValidationError{Reason: domain.ReasonAddressRequired}
	}
	if res := address.Validate(accounts, addr); !res.IsValid {
		return nil, &domain.ValidationError{Reason: res.Reason}
	}

	if name == "" {
		name = NextAccountName(accounts)
	} else if labelTaken(accounts, name, "") {
		return nil, &domain.ValidationError{Reason: domain.ReasonNameDuplicate}
	}

	var created *domain.Account
	err = m.mutate(ctx, func() error {
		var cerr error
		created, cerr = m.keyring.CreateAccount(ctx, keyring.CreateOptions{Address: addr, Label: name})
		return cerr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveAccount deletes an account and persists the result.
func (m *Manager) RemoveAccount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mutate(ctx, func() error {
		return m.keyring.DeleteAccount(ctx, id)
	})
}

// RenameAccount changes an account label. Labels stay unique across accounts.
func (m *Manager) RenameAccount(ctx context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts, err := m.keyring.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if labelTaken(accounts, strings.TrimSpace(name), id) {
		return &domain.ValidationError{Reason: domain.ReasonNameDuplicate}
	}

	return m.mutate(ctx, func() error {
		return m.keyring.SetLabel(ctx, id, name)
	})
}

// Export returns the encoded snapshot of the keyring.
func (m *Manager) Export(ctx context.Context) ([]byte, error) {
	snap, err := m.keyring.Serialize(ctx)
	if err != nil {
		return nil, err
	}
	return domain.EncodeSnapshot(snap)
}

// Import replaces every account with the contents of an encoded snapshot.
func (m *Manager) Import(ctx context.Context, data []byte) error {
	snap, err := domain.DecodeSnapshot(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mutate(ctx, func() error {
		return m.keyring.Deserialize(ctx, snap)
	})
}

// Sign routes a signing request to the keyring. It never succeeds for
// watch-only accounts.
func (m *Manager) Sign(ctx context.Context, id, method string, params json.RawMessage) error {
	req := domain.NewSigningRequest(id, method, params)
	m.log.Debug("Submitting signing request", "request", req.ID, "account", id, "method", method)

	resp, err := m.keyring.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: unexpected response %+v", domain.ErrUnsupportedSigning, resp)
}

// Health reports whether the snapshot store is reachable.
func (m *Manager) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy:   true,
		Store:     m.store.Name(),
		Accounts:  m.keyring.Len(),
		CheckedAt: time.Now(),
	}
	if hc, ok := m.store.(HealthChecker); ok {
		if err := hc.Health(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
			return status
		}
	}
	if st, ok := m.store.(SaveTracker); ok {
		saved, err := st.UpdatedAt(ctx)
		switch {
		case err == nil:
			status.LastSaved = &saved
		case !errors.Is(err, storage.ErrSnapshotNotFound):
			m.log.Debug("Failed to read snapshot save time", "store", status.Store, "error", err)
		}
	}
	return status
}

// Close releases the snapshot store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// mutate applies fn and persists the resulting snapshot. If persisting fails
// the keyring is rolled back so memory and storage do not diverge.
// Callers must hold m.mu.
func (m *Manager) mutate(ctx context.Context, fn func() error) error {
	prev, err := m.keyring.Serialize(ctx)
	if err != nil {
		return err
	}

	if err := fn(); err != nil {
		return err
	}

	next, err := m.keyring.Serialize(ctx)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, next); err != nil {
		if rerr := m.keyring.Deserialize(ctx, prev); rerr != nil {
			m.log.Error("Failed to roll back keyring", "error", rerr)
		}
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	metrics.Accounts.Set(float64(next.Len()))
	return nil
}

// NextAccountName returns the first "Watch Only N" label not already in use.
func NextAccountName(accounts []domain.Account) string {
	for n := len(accounts) + 1; ; n++ {
		name := fmt.Sprintf("%s %d", domain.KeyringType, n)
		if !labelTaken(accounts, name, "") {
			return name
		}
	}
}

func labelTaken(accounts []domain.Account, name, exceptID string) bool {
	for _, a := range accounts {
		if a.ID != exceptID && strings.EqualFold(strings.TrimSpace(a.Label()), name) {
			return true
		}
	}
	return false
}
