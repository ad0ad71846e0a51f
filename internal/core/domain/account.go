package domain

// KeyringType identifies the watch-only backend among other account backends.
const KeyringType = "Watch Only"

// DefaultLabel is assigned when an account is created without a label.
const DefaultLabel = "Watch Only Account"

// AccountType discriminates account representations.
type AccountType string

const (
	// AccountTypeEOA is a non-custodial externally owned account. Watch-only
	// accounts use it without holding the key.
	AccountTypeEOA AccountType = "eip155:eoa"
)

// AccountOptions holds the mutable, display-only fields of an account.
type AccountOptions struct {
	Label string `json:"label"`
}

// Account is a watch-only identity tracking a single address.
type Account struct {
	ID      string         `json:"id"`
	Address string         `json:"address"`
	Scopes  []Scope        `json:"scopes"`
	Options AccountOptions `json:"options"`
	Methods []string       `json:"methods"`
	Type    AccountType    `json:"type"`
}

// Label returns the display name of the account.
func (a Account) Label() string {
	return a.Options.Label
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (a Account) Clone() Account {
	c := a
	c.Scopes = append([]Scope(nil), a.Scopes...)
	if c.Scopes == nil {
		c.Scopes = []Scope{}
	}
	c.Methods = append([]string{}, a.Methods...)
	return c
}

// NewWatchOnlyAccount builds an account for address with default scopes and no
// signing methods.
func NewWatchOnlyAccount(address, label string) Account {
	if label == "" {
		label = DefaultLabel
	}
	return Account{
		ID:      address,
		Address: address,
		Scopes:  DefaultScopes(),
		Options: AccountOptions{Label: label},
		Methods: []string{},
		Type:    AccountTypeEOA,
	}
}
