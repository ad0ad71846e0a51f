package keyring

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/core/metrics"
)

// Names reported by the direct signing primitives.
const (
	primitiveSignMessage         = "sign messages"
	primitiveSignTransaction     = "sign transactions"
	primitiveSignPersonalMessage = "sign personal messages"
	primitiveSignTypedData       = "sign typed data"
)

// SubmitRequest rejects every request. The target account must exist; the
// request body is never inspected.
func (w *WatchOnly) SubmitRequest(ctx context.Context, req domain.SigningRequest) (*domain.SigningResponse, error) {
	w.mu.RLock()
	_, ok := w.accounts[req.Account]
	w.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, req.Account)
	}

	return nil, w.reject(req.Account, req.Request.Method, "submit_request")
}

// SignMessage always fails.
func (w *WatchOnly) SignMessage(ctx context.Context, _ string, _ string) (string, error) {
	return "", w.reject("", primitiveSignMessage, "sign_message")
}

// SignTransaction always fails.
func (w *WatchOnly) SignTransaction(ctx context.Context, _ json.RawMessage) (string, error) {
	return "", w.reject("", primitiveSignTransaction, "sign_transaction")
}

// SignPersonalMessage always fails.
func (w *WatchOnly) SignPersonalMessage(ctx context.Context, _ string, _ string) (string, error) {
	return "", w.reject("", primitiveSignPersonalMessage, "sign_personal_message")
}

// SignTypedData always fails.
func (w *WatchOnly) SignTypedData(ctx context.Context, _ string, _ json.RawMessage) (string, error) {
	return "", w.reject("", primitiveSignTypedData, "sign_typed_data")
}

func (w *WatchOnly) reject(accountID, method, metric string) error {
	metrics.SigningRejections.WithLabelValues(metric).Inc()
	w.log.Warn("Rejected signing attempt", "account", accountID, "method", method)
	return &domain.SigningError{AccountID: accountID, Method: method}
}
