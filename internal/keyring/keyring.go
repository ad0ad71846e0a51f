// Package keyring defines the account backend abstraction and the watch-only
// backend that tracks addresses without holding key material.
package keyring

import (
	"context"
	"encoding/json"

	"github.com/vietddude/watchonly/internal/core/domain"
)

// Capabilities describes what an account backend supports. Signing lists the
// request methods the backend can serve; it is empty for watch-only accounts.
type Capabilities struct {
	Listing     bool
	Lookup      bool
	Creation    bool
	Deletion    bool
	Persistence bool
	Signing     []string
}

// CanSign reports whether the backend serves the given request method.
func (c Capabilities) CanSign(method string) bool {
	for _, m := range c.Signing {
		if m == method {
			return true
		}
	}
	return false
}

// CreateOptions are the inputs to account creation.
type CreateOptions struct {
	Address string
	Label   string
}

// Backend is the contract shared by every account backend (watch-only,
// hardware, mnemonic) so the host can manage them uniformly.
type Backend interface {
	// Type identifies the backend
	Type() string

	// Capabilities describes the supported operations
	Capabilities() Capabilities

	// ListAccounts returns every account
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// GetAccounts returns the address of every account, in list order
	GetAccounts(ctx context.Context) ([]string, error)

	// GetAccount looks up an account; absence is reported by found=false
	GetAccount(ctx context.Context, id string) (account *domain.Account, found bool, err error)

	// CreateAccount registers a new account
	CreateAccount(ctx context.Context, opts CreateOptions) (*domain.Account, error)

	// DeleteAccount removes an account
	DeleteAccount(ctx context.Context, id string) error

	// UpdateAccount replaces an account's mutable fields
	UpdateAccount(ctx context.Context, account domain.Account) error

	// FilterAccountChains returns the subset of chains the account supports
	FilterAccountChains(ctx context.Context, id string, chains []string) ([]string, error)

	// Serialize returns the full persisted form of the backend
	Serialize(ctx context.Context) (*domain.Snapshot, error)

	// Deserialize replaces all state with the snapshot contents
	Deserialize(ctx context.Context, snapshot *domain.Snapshot) error

	// SubmitRequest handles a generic signing request
	SubmitRequest(ctx context.Context, req domain.SigningRequest) (*domain.SigningResponse, error)

	// SignMessage signs an eth_sign style message
	SignMessage(ctx context.Context, address, message string) (string, error)

	// SignTransaction signs a transaction
	SignTransaction(ctx context.Context, tx json.RawMessage) (string, error)

	// SignPersonalMessage signs a personal_sign message
	SignPersonalMessage(ctx context.Context, address, message string) (string, error)

	// SignTypedData signs EIP-712 typed data
	SignTypedData(ctx context.Context, address string, data json.RawMessage) (string, error)
}
