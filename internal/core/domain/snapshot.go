package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snapshot is the complete persisted form of a keyring. Its JSON shape is the
// on-disk format and must stay backward compatible.
type Snapshot struct {
	Accounts []Account `json:"accounts"`
}

// Len returns the number of accounts in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Accounts)
}

// EncodeSnapshot serializes a snapshot to JSON. A nil snapshot encodes as an
// empty account list.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	if s == nil {
		s = &Snapshot{}
	}
	out := Snapshot{Accounts: make([]Account, 0, len(s.Accounts))}
	for _, a := range s.Accounts {
		out.Accounts = append(out.Accounts, a.Clone())
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// snapshotAccount mirrors Account but keeps the address raw so that numeric
// or boolean values written by older clients can be coerced to strings.
type snapshotAccount struct {
	ID      string          `json:"id"`
	Address json.RawMessage `json:"address"`
	Scopes  []Scope         `json:"scopes"`
	Options AccountOptions  `json:"options"`
	Methods []string        `json:"methods"`
	Type    AccountType     `json:"type"`
}

// DecodeSnapshot parses persisted snapshot bytes. It checks the top-level
// shape only; per-account invariants are enforced on restore.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, fmt.Errorf("%w: invalid data to deserialize", ErrFormat)
	}

	rawAccounts, ok := top["accounts"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(rawAccounts), []byte("[")) {
		return nil, fmt.Errorf("%w: missing accounts array", ErrFormat)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(rawAccounts, &entries); err != nil {
		return nil, fmt.Errorf("%w: missing accounts array", ErrFormat)
	}

	snap := &Snapshot{Accounts: make([]Account, 0, len(entries))}
	for i, entry := range entries {
		var raw snapshotAccount
		if !bytes.HasPrefix(bytes.TrimSpace(entry), []byte("{")) {
			return nil, fmt.Errorf("%w: account %d is not an object", ErrFormat, i)
		}
		if err := json.Unmarshal(entry, &raw); err != nil {
			return nil, fmt.Errorf("%w: account %d: %v", ErrFormat, i, err)
		}
		address, err := coerceString(raw.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: account %d address: %v", ErrFormat, i, err)
		}
		snap.Accounts = append(snap.Accounts, Account{
			ID:      raw.ID,
			Address: address,
			Scopes:  raw.Scopes,
			Options: raw.Options,
			Methods: raw.Methods,
			Type:    raw.Type,
		})
	}

	return snap, nil
}

func coerceString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	// Falsy values collapse to "" so restore rejects them like a missing address.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, ferr := n.Float64(); ferr == nil && f == 0 {
			return "", nil
		}
		return n.String(), nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if !b {
			return "", nil
		}
		return strconv.FormatBool(b), nil
	}

	return "", fmt.Errorf("unsupported value %s", raw)
}
