package control

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/watchonly/internal/core/config"
	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/infra/storage"
	"github.com/vietddude/watchonly/internal/infra/storage/file"
	"github.com/vietddude/watchonly/internal/infra/storage/memory"
)

const (
	binance = "0x28C6c06298d514Db089934071355E5743bf21d60"
	vitalik = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
)

// failingStore accepts loads but refuses every save.
type failingStore struct {
	*memory.SnapshotStore
	err error
}

func (f *failingStore) Save(ctx context.Context, s *domain.Snapshot) error {
	return f.err
}

type unhealthyStore struct {
	*memory.SnapshotStore
}

func (u *unhealthyStore) Health(ctx context.Context) error {
	return errors.New("connection refused")
}

// trackedStore records the time of the last successful save.
type trackedStore struct {
	*memory.SnapshotStore
	savedAt time.Time
}

func (s *trackedStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if err := s.SnapshotStore.Save(ctx, snap); err != nil {
		return err
	}
	s.savedAt = time.Now()
	return nil
}

func (s *trackedStore) UpdatedAt(ctx context.Context) (time.Time, error) {
	if s.savedAt.IsZero() {
		return time.Time{}, storage.ErrSnapshotNotFound
	}
	return s.savedAt, nil
}

func newTestManager(t *testing.T) (*Manager, *memory.SnapshotStore) {
	t.Helper()
	store := memory.NewSnapshotStore()
	m := NewManagerWithStore(store, nil)
	require.NoError(t, m.Start(context.Background()))
	return m, store
}

func TestManager_AddAccountPersists(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	account, err := m.AddAccount(ctx, "  Binance Hot  ", "  "+binance+"  ")
	require.NoError(t, err)
	assert.Equal(t, binance, account.ID)
	assert.Equal(t, "Binance Hot", account.Label())
	assert.Equal(t, 1, store.Saves())

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, binance, snap.Accounts[0].Address)
}

func TestManager_AddAccountValidation(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	_, err := m.AddAccount(ctx, "Binance", binance)
	require.NoError(t, err)

	tests := []struct {
		name    string
		label   string
		address string
		reason  string
	}{
		{"blank address", "x", "   ", domain.ReasonAddressRequired},
		{"malformed", "x", "0x123", domain.ReasonAddressInvalid},
		{"duplicate other casing", "x", strings.ToLower(binance), domain.ReasonAddressDuplicate},
		{"duplicate name", "binance", vitalik, domain.ReasonNameDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddAccount(ctx, tt.label, tt.address)
			require.Error(t, err)
			assert.Equal(t, tt.reason, domain.UserMessage(err))
		})
	}

	accounts, err := m.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, 1, store.Saves())
}

func TestManager_DefaultNames(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	first, err := m.AddAccount(ctx, "", binance)
	require.NoError(t, err)
	assert.Equal(t, "Watch Only 1", first.Label())

	// "Watch Only 2" is taken by hand, so the next default skips it.
	require.NoError(t, m.RenameAccount(ctx, binance, "Watch Only 2"))
	second, err := m.AddAccount(ctx, "", vitalik)
	require.NoError(t, err)
	assert.Equal(t, "Watch Only 3", second.Label())
}

func TestManager_RenameAccount(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	_, err := m.AddAccount(ctx, "A", binance)
	require.NoError(t, err)
	_, err = m.AddAccount(ctx, "B", vitalik)
	require.NoError(t, err)

	err = m.RenameAccount(ctx, vitalik, "a")
	assert.Equal(t, domain.ReasonNameDuplicate, domain.UserMessage(err))

	// Renaming to its own label in another casing is allowed.
	require.NoError(t, m.RenameAccount(ctx, vitalik, "b"))

	err = m.RenameAccount(ctx, "0xmissing", "C")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", snap.Accounts[1].Label())
}

func TestManager_RemoveAccount(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	_, err := m.AddAccount(ctx, "A", binance)
	require.NoError(t, err)

	require.NoError(t, m.RemoveAccount(ctx, binance))
	assert.ErrorIs(t, m.RemoveAccount(ctx, binance), domain.ErrNotFound)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestManager_RestoreOnStart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keyring.json")
	cfg := Config{Storage: config.StorageConfig{Driver: config.DriverFile, File: file.Config{Path: path}}}

	m, err := NewManager(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx))
	_, err = m.AddAccount(ctx, "A", binance)
	require.NoError(t, err)
	_, err = m.AddAccount(ctx, "B", vitalik)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	restored, err := NewManager(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, restored.Start(ctx))

	accounts, err := restored.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, binance, accounts[0].ID)
	assert.Equal(t, "A", accounts[0].Label())
	assert.Equal(t, vitalik, accounts[1].ID)
	assert.Equal(t, "B", accounts[1].Label())
}

func TestManager_StartRejectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()
	require.NoError(t, store.Save(ctx, &domain.Snapshot{Accounts: []domain.Account{{ID: binance}}}))

	m := NewManagerWithStore(store, nil)
	err := m.Start(ctx)
	assert.ErrorIs(t, err, domain.ErrFormat)
}

func TestManager_RollbackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{SnapshotStore: memory.NewSnapshotStore(), err: errors.New("disk full")}
	m := NewManagerWithStore(store, nil)
	require.NoError(t, m.Start(ctx))

	_, err := m.AddAccount(ctx, "A", binance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	accounts, err := m.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestManager_ExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestManager(t)
	_, err := src.AddAccount(ctx, "A", binance)
	require.NoError(t, err)

	data, err := src.Export(ctx)
	require.NoError(t, err)

	dst, store := newTestManager(t)
	_, err = dst.AddAccount(ctx, "old", vitalik)
	require.NoError(t, err)

	require.NoError(t, dst.Import(ctx, data))
	accounts, err := dst.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, binance, accounts[0].ID)

	// Bad input leaves the keyring and store untouched.
	saves := store.Saves()
	assert.ErrorIs(t, dst.Import(ctx, []byte(`{"accounts":"nope"}`)), domain.ErrFormat)
	assert.ErrorIs(t, dst.Import(ctx, []byte(`{"accounts":[{"id":"x"}]}`)), domain.ErrFormat)
	assert.Equal(t, saves, store.Saves())

	accounts, err = dst.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestManager_ImportMismatchedIDKeepsStoreRestorable(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	data := []byte(`{"accounts":[{"id":"` + binance + `","address":"` + vitalik + `"}]}`)
	assert.ErrorIs(t, m.Import(ctx, data), domain.ErrFormat)

	_, err := m.AddAccount(ctx, "fresh", binance)
	require.NoError(t, err)
	_, err = m.AddAccount(ctx, "other", vitalik)
	require.NoError(t, err)

	restarted := NewManagerWithStore(store, nil)
	require.NoError(t, restarted.Start(ctx))

	accounts, err := restarted.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, binance, accounts[0].ID)
	assert.Equal(t, vitalik, accounts[1].ID)
}

func TestManager_SignAlwaysFails(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	_, err := m.AddAccount(ctx, "A", binance)
	require.NoError(t, err)

	err = m.Sign(ctx, binance, domain.MethodPersonalSign, json.RawMessage(`["0x68656c6c6f"]`))
	assert.ErrorIs(t, err, domain.ErrUnsupportedSigning)
	assert.Equal(t, domain.UnsupportedMessage, domain.UserMessage(err))

	err = m.Sign(ctx, vitalik, domain.MethodPersonalSign, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_Validate(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	_, err := m.AddAccount(ctx, "A", binance)
	require.NoError(t, err)

	res, err := m.Validate(ctx, " "+strings.ToLower(binance))
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, domain.ReasonAddressDuplicate, res.Reason)

	res, err = m.Validate(ctx, vitalik)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestManager_Health(t *testing.T) {
	m, _ := newTestManager(t)
	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "memory", status.Store)

	bad := NewManagerWithStore(&unhealthyStore{SnapshotStore: memory.NewSnapshotStore()}, nil)
	status = bad.Health(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "connection refused", status.Error)
}

func TestManager_HealthReportsLastSave(t *testing.T) {
	ctx := context.Background()
	store := &trackedStore{SnapshotStore: memory.NewSnapshotStore()}
	m := NewManagerWithStore(store, nil)
	require.NoError(t, m.Start(ctx))

	assert.Nil(t, m.Health(ctx).LastSaved)

	_, err := m.AddAccount(ctx, "A", binance)
	require.NoError(t, err)

	status := m.Health(ctx)
	require.NotNil(t, status.LastSaved)
	assert.WithinDuration(t, time.Now(), *status.LastSaved, time.Minute)

	// The retry wrapper forwards save times from the inner store.
	wrapped := NewManagerWithStore(storage.NewRetryStore(store, storage.DefaultRetryConfig, nil), nil)
	require.NotNil(t, wrapped.Health(ctx).LastSaved)
}

func TestNewManager_UnknownDriver(t *testing.T) {
	_, err := NewManager(context.Background(), Config{Storage: config.StorageConfig{Driver: "etcd"}}, nil)
	assert.Error(t, err)
}

var _ storage.SnapshotStore = (*failingStore)(nil)
