// Package audit holds event handlers that keep an audit trail of committed transfers.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
)

// HandleTransferCompleted logs one audit record per committed transfer.
func HandleTransferCompleted(logger *slog.Logger) eventbus.HandlerFunc {
	logger = logger.With("handler", "audit.TransferCompleted")
	return func(ctx context.Context, e events.Event) error {
		tc, ok := e.(events.TransferCompleted)
		if !ok {
			return fmt.Errorf("audit: unexpected event %T", e)
		}
		attrs := []any{
			"reference", tc.Reference,
			"origin", tc.OriginAccountID,
			"destination", tc.DestinationAccountID,
			"amount", tc.Amount.StringFixed(2),
			"timestamp", tc.Timestamp,
		}
		if tc.IdempotencyKey != "" {
			attrs = append(attrs, "idempotency_key", tc.IdempotencyKey)
		}
		logger.InfoContext(ctx, "Transfer committed", attrs...)
		return nil
	}
}
