// Package address validates candidate watch-only addresses before they reach
// the keyring.
package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vietddude/watchonly/internal/core/domain"
)

// Result reports whether a candidate address may be registered.
type Result struct {
	IsValid bool
	Reason  string
}

// IsWellFormed reports whether s is a 0x-prefixed, 20-byte hex address.
// Mixed case is accepted without checksum verification.
func IsWellFormed(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// Checksum returns the EIP-55 form of a well-formed address, or s unchanged.
func Checksum(s string) string {
	if !IsWellFormed(s) {
		return s
	}
	return common.HexToAddress(s).Hex()
}

// Validate checks candidate against the syntax rules and the known accounts.
// When the candidate is both malformed and a duplicate, the duplicate reason
// is reported.
func Validate(known []domain.Account, candidate string) Result {
	reason := ""
	if !IsWellFormed(candidate) {
		reason = domain.ReasonAddressInvalid
	}

	for _, account := range known {
		if strings.EqualFold(account.Address, candidate) {
			reason = domain.ReasonAddressDuplicate
			break
		}
	}

	return Result{IsValid: reason == "", Reason: reason}
}
