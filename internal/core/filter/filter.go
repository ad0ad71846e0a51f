package filter

// Filter tracks registered addresses and answers case-insensitive membership
// queries.
type Filter interface {
	// Contains checks if an address is tracked, ignoring case
	Contains(address string) bool

	// Owner returns the account id registered for an address
	Owner(address string) (string, bool)

	// Add tracks an address for the given account id
	Add(address, id string) error

	// Remove stops tracking an address
	Remove(address string) error

	// Size returns the number of tracked addresses
	Size() int
}
