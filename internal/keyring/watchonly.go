package keyring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/core/filter"
	"github.com/vietddude/watchonly/internal/core/metrics"
	"github.com/vietddude/watchonly/internal/keyring/address"
)

// WatchOnly is an account backend for addresses that are observed but never
// signed for. It keeps accounts in insertion order and enforces address
// uniqueness case-insensitively.
type WatchOnly struct {
	mu       sync.RWMutex
	order    []string
	accounts map[string]*domain.Account
	index    *filter.MemoryFilter
	log      *slog.Logger
}

// Option configures a WatchOnly keyring.
type Option func(*WatchOnly)

// WithLogger sets the logger used for rejections and state changes.
func WithLogger(log *slog.Logger) Option {
	return func(w *WatchOnly) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates an empty watch-only keyring.
func New(opts ...Option) *WatchOnly {
	w := &WatchOnly{
		accounts: make(map[string]*domain.Account),
		index:    filter.NewMemoryFilter(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With("keyring", domain.KeyringType)
	return w
}

var _ Backend = (*WatchOnly)(nil)

// Type returns the keyring type name.
func (w *WatchOnly) Type() string {
	return domain.KeyringType
}

// Capabilities reports every management capability and no signing methods.
func (w *WatchOnly) Capabilities() Capabilities {
	return Capabilities{
		Listing:     true,
		Lookup:      true,
		Creation:    true,
		Deletion:    true,
		Persistence: true,
		Signing:     []string{},
	}
}

// ListAccounts returns copies of all accounts in insertion order.
func (w *WatchOnly) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.listLocked(), nil
}

func (w *WatchOnly) listLocked() []domain.Account {
	out := make([]domain.Account, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.accounts[id].Clone())
	}
	return out
}

// GetAccounts returns the address of every account in insertion order.
func (w *WatchOnly) GetAccounts(ctx context.Context) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.accounts[id].Address)
	}
	return out, nil
}

// GetAccount returns a copy of the account for id. A missing account is not
// an error.
func (w *WatchOnly) GetAccount(ctx context.Context, id string) (*domain.Account, bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	account, ok := w.accounts[id]
	if !ok {
		return nil, false, nil
	}
	c := account.Clone()
	return &c, true, nil
}

// Len returns the number of accounts.
func (w *WatchOnly) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// CreateAccount registers opts.Address. The address becomes the account id.
// Malformed addresses and addresses already registered under any casing are
// rejected with a *domain.ValidationError.
func (w *WatchOnly) CreateAccount(ctx context.Context, opts CreateOptions) (*domain.Account, error) {
	account, err := w.create(opts)
	metrics.KeyringOperations.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		w.log.Debug("Rejected account creation", "address", opts.Address, "error", err)
		return nil, err
	}
	w.log.Info("Created watch-only account", "id", account.ID)
	return account, nil
}

func (w *WatchOnly) create(opts CreateOptions) (*domain.Account, error) {
	if opts.Address == "" {
		return nil, &domain.ValidationError{Reason: domain.ReasonAddressRequired}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	reason := ""
	if !address.IsWellFormed(opts.Address) {
		reason = domain.ReasonAddressInvalid
	}
	if _, taken := w.accounts[opts.Address]; taken || w.index.Contains(opts.Address) {
		reason = domain.ReasonAddressDuplicate
	}
	if reason != "" {
		return nil, &domain.ValidationError{Reason: reason}
	}

	account := domain.NewWatchOnlyAccount(opts.Address, opts.Label)
	if err := w.index.Add(account.Address, account.ID); err != nil {
		return nil, fmt.Errorf("failed to index address: %w", err)
	}
	w.accounts[account.ID] = &account
	w.order = append(w.order, account.ID)

	c := account.Clone()
	return &c, nil
}

// DeleteAccount removes the account for id.
func (w *WatchOnly) DeleteAccount(ctx context.Context, id string) error {
	err := w.delete(id)
	metrics.KeyringOperations.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err == nil {
		w.log.Info("Deleted watch-only account", "id", id)
	}
	return err
}

func (w *WatchOnly) delete(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	account, ok := w.accounts[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	delete(w.accounts, id)
	_ = w.index.Remove(account.Address)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateAccount never succeeds. It reports ErrNotFound for unknown ids,
// ErrImmutableField when the address differs and ErrUnsupportedOperation
// otherwise.
func (w *WatchOnly) UpdateAccount(ctx context.Context, account domain.Account) error {
	err := w.update(account)
	metrics.KeyringOperations.WithLabelValues("update", metrics.Result(err)).Inc()
	return err
}

func (w *WatchOnly) update(account domain.Account) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	existing, ok := w.accounts[account.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, account.ID)
	}
	if existing.Address != account.Address {
		return fmt.Errorf("%w: %s", domain.ErrImmutableField, account.ID)
	}
	return fmt.Errorf("%w: watch only account %s cannot updateAccount", domain.ErrUnsupportedOperation, account.ID)
}

// SetLabel changes the display label of an account. It is the only mutation
// allowed after creation.
func (w *WatchOnly) SetLabel(ctx context.Context, id, label string) error {
	err := w.setLabel(id, label)
	metrics.KeyringOperations.WithLabelValues("set_label", metrics.Result(err)).Inc()
	return err
}

func (w *WatchOnly) setLabel(id, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return &domain.ValidationError{Reason: domain.ReasonLabelRequired}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	account, ok := w.accounts[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	account.Options.Label = label
	return nil
}

// FilterAccountChains returns chains unchanged: watch-only accounts observe
// any chain they are asked about.
func (w *WatchOnly) FilterAccountChains(ctx context.Context, id string, chains []string) ([]string, error) {
	w.mu.RLock()
	_, ok := w.accounts[id]
	w.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return append([]string(nil), chains...), nil
}

// Serialize returns a snapshot of all accounts in list order.
func (w *WatchOnly) Serialize(ctx context.Context) (*domain.Snapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return &domain.Snapshot{Accounts: w.listLocked()}, nil
}

// Deserialize replaces the keyring contents with snapshot. The snapshot is
// validated in full before any state changes, so a bad snapshot leaves the
// current accounts untouched.
func (w *WatchOnly) Deserialize(ctx context.Context, snapshot *domain.Snapshot) error {
	err := w.restore(snapshot)
	metrics.KeyringOperations.WithLabelValues("deserialize", metrics.Result(err)).Inc()
	if err != nil {
		w.log.Warn("Rejected snapshot", "error", err)
		return err
	}
	w.log.Info("Restored watch-only accounts", "count", snapshot.Len())
	return nil
}

func (w *WatchOnly) restore(snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: invalid data to deserialize", domain.ErrFormat)
	}

	order := make([]string, 0, len(snapshot.Accounts))
	accounts := make(map[string]*domain.Account, len(snapshot.Accounts))
	index := filter.NewMemoryFilter()

	for i, entry := range snapshot.Accounts {
		if entry.ID == "" || entry.Address == "" {
			return fmt.Errorf("%w: account %d is missing id or address", domain.ErrFormat, i)
		}
		if entry.ID != entry.Address {
			return fmt.Errorf("%w: account %d id %s does not match address %s", domain.ErrFormat, i, entry.ID, entry.Address)
		}
		if _, dup := accounts[entry.ID]; dup {
			return fmt.Errorf("%w: duplicate account id %s", domain.ErrFormat, entry.ID)
		}
		if index.Contains(entry.Address) {
			return fmt.Errorf("%w: duplicate address %s", domain.ErrFormat, entry.Address)
		}

		account := normalizeRestored(entry)
		if err := index.Add(account.Address, account.ID); err != nil {
			return fmt.Errorf("%w: account %d: %v", domain.ErrFormat, i, err)
		}
		accounts[account.ID] = &account
		order = append(order, account.ID)
	}

	w.mu.Lock()
	w.order = order
	w.accounts = accounts
	w.index = index
	w.mu.Unlock()
	return nil
}

// normalizeRestored re-establishes the watch-only invariants on a persisted
// entry: no signing methods, EOA type, and non-empty scopes and label.
func normalizeRestored(entry domain.Account) domain.Account {
	account := entry.Clone()
	account.Methods = []string{}
	account.Type = domain.AccountTypeEOA
	if len(account.Scopes) == 0 {
		account.Scopes = domain.DefaultScopes()
	}
	if account.Options.Label == "" {
		account.Options.Label = domain.DefaultLabel
	}
	return account
}
