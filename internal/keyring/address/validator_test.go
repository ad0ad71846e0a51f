package address

import (
	"testing"

	"github.com/vietddude/watchonly/internal/core/domain"
)

const mixedCase = "0xAbC1230000000000000000000000000000000dEf"

func TestValidate(t *testing.T) {
	known := []domain.Account{domain.NewWatchOnlyAccount(mixedCase, "")}

	tests := []struct {
		name      string
		candidate string
		valid     bool
		reason    string
	}{
		{"new lowercase address", "0x52908400098527886e0f7030069857d2e4169ee7", true, ""},
		{"new mixed case without checksum", "0x52908400098527886E0F7030069857D2e4169eE7", true, ""},
		{"duplicate in different case", "0xabc1230000000000000000000000000000000def", false, domain.ReasonAddressDuplicate},
		{"duplicate exact", mixedCase, false, domain.ReasonAddressDuplicate},
		{"missing prefix", "52908400098527886e0f7030069857d2e4169ee7", false, domain.ReasonAddressInvalid},
		{"upper-case prefix", "0X52908400098527886e0f7030069857d2e4169ee7", false, domain.ReasonAddressInvalid},
		{"too short", "0x1234", false, domain.ReasonAddressInvalid},
		{"non hex", "0xzz908400098527886e0f7030069857d2e4169ee7", false, domain.ReasonAddressInvalid},
		{"empty", "", false, domain.ReasonAddressInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(known, tt.candidate)
			if got.IsValid != tt.valid {
				t.Errorf("IsValid = %v, want %v", got.IsValid, tt.valid)
			}
			if got.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestValidate_DuplicateWinsOverInvalid(t *testing.T) {
	// A malformed address that is nevertheless already known reports the
	// duplicate reason.
	known := []domain.Account{{ID: "0xABC", Address: "0xABC"}}

	got := Validate(known, "0xabc")
	if got.IsValid {
		t.Fatal("expected invalid result")
	}
	if got.Reason != domain.ReasonAddressDuplicate {
		t.Errorf("Reason = %q, want %q", got.Reason, domain.ReasonAddressDuplicate)
	}
}

func TestChecksum(t *testing.T) {
	got := Checksum("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	if got != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Errorf("Checksum = %s", got)
	}
	if Checksum("nope") != "nope" {
		t.Error("expected malformed input to be returned unchanged")
	}
}
