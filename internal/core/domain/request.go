package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Signing methods a generic account backend may be asked to perform.
const (
	MethodPersonalSign    = "personal_sign"
	MethodEthSign         = "eth_sign"
	MethodSignTransaction = "eth_signTransaction"
	MethodSignTypedData   = "eth_signTypedData_v4"
)

// RequestPayload is the JSON-RPC style body of a signing request.
type RequestPayload struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// SigningRequest is the generic request envelope routed to an account backend.
type SigningRequest struct {
	ID      string         `json:"id"`
	Scope   Scope          `json:"scope"`
	Account string         `json:"account"`
	Request RequestPayload `json:"request"`
}

// SigningResponse is what a signing-capable backend would return. Watch-only
// backends never produce one.
type SigningResponse struct {
	Pending bool            `json:"pending"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// NewSigningRequest builds a request for accountID with a fresh request id.
func NewSigningRequest(accountID, method string, params json.RawMessage) SigningRequest {
	return SigningRequest{
		ID:      uuid.NewString(),
		Scope:   ScopeEthereum,
		Account: accountID,
		Request: RequestPayload{
			Method: method,
			Params: params,
		},
	}
}
