package domain

// Scope is a CAIP-2 chain namespace identifier, e.g. "eip155:1".
type Scope string

const (
	ScopeEthereum Scope = "eip155:1"
	ScopePolygon  Scope = "eip155:137"
	ScopeOptimism Scope = "eip155:10"
	ScopeArbitrum Scope = "eip155:42161"
)

// ScopeToName maps a scope to its human-readable chain name.
var ScopeToName = map[Scope]string{
	ScopeEthereum: "ETHEREUM_MAINNET",
	ScopePolygon:  "POLYGON_MAINNET",
	ScopeOptimism: "OPTIMISM_MAINNET",
	ScopeArbitrum: "ARBITRUM_ONE",
}

// DefaultScopes returns the ordered scope set every watch-only account is
// created with.
func DefaultScopes() []Scope {
	return []Scope{ScopeEthereum, ScopePolygon, ScopeOptimism, ScopeArbitrum}
}
