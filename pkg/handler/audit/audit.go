// Package audit records every committed domain event in the structured log.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
)

// Handle returns a handler that logs the event with its identifying fields.
func Handle(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		attrs, err := Attrs(e)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "📒 audit", attrs...)
		return nil
	}
}

// Attrs flattens the fields worth keeping for e.
func Attrs(e events.Event) ([]any, error) {
	switch evt := e.(type) {
	case *events.UserRegistered:
		return []any{"event", e.Type(), "event_id", evt.ID, "user_id", evt.UserID, "pix_key", evt.PixKey}, nil
	case *events.PixTransferCompleted:
		return []any{
			"event", e.Type(), "event_id", evt.ID,
			"transaction_id", evt.TransactionID,
			"from_user_id", evt.FromUserID,
			"to_user_id", evt.ToUserID,
			"amount", evt.Amount.String(),
			"transaction_type", evt.TransactionType,
		}, nil
	case *events.PixAccountCredited:
		return []any{
			"event", e.Type(), "event_id", evt.ID,
			"transaction_id", evt.TransactionID,
			"user_id", evt.UserID,
			"amount", evt.Amount.String(),
		}, nil
	case *events.CardCharged:
		return []any{
			"event", e.Type(), "event_id", evt.ID,
			"transaction_id", evt.TransactionID,
			"card_id", evt.CardID,
			"amount", evt.Amount.String(),
			"merchant", evt.MerchantName,
		}, nil
	case *events.CardRefunded:
		return []any{
			"event", e.Type(), "event_id", evt.ID,
			"transaction_id", evt.TransactionID,
			"refund_of", evt.RefundOf,
			"card_id", evt.CardID,
			"amount", evt.Amount.String(),
		}, nil
	case *events.KYCReviewed:
		return []any{
			"event", e.Type(), "event_id", evt.ID,
			"kyc_id", evt.KYCID,
			"user_id", evt.UserID,
			"reviewer_id", evt.ReviewerID,
			"status", evt.Status,
		}, nil
	default:
		return nil, fmt.Errorf("audit: unexpected event %T", e)
	}
}
