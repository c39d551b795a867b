package domain

import "time"

// Event types
const (
	EventTypeAccountOpened    = "account.opened"
	EventTypeCoinsEarned      = "coins.earned"
	EventTypeCoinsSpent       = "coins.spent"
	EventTypeCoinsTransferred = "coins.transferred"
	EventTypeBonusClaimed     = "bonus.claimed"
	EventTypeOfferRedeemed    = "offer.redeemed"
)

// Aggregate types
const (
	AggregateTypeAccount  = "account"
	AggregateTypeTransfer = "transfer"
)

// OutboxEvent is written in the same transaction as the ledger change it describes.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOutboxEvent builds an unpublished event.
func NewOutboxEvent(id, aggregateType, aggregateID, eventType string, payload map[string]any, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	}
}

// EntryPayload is the common payload for single-entry events.
func EntryPayload(e *LedgerEntry) map[string]any {
	payload := map[string]any{
		"entry_id":      e.ID,
		"account_id":    e.AccountID,
		"amount":        e.Amount,
		"kind":          string(e.Kind),
		"balance_after": e.BalanceAfter,
		"event_at":      e.CreatedAt.Format(time.RFC3339Nano),
	}
	if e.ReferenceID != nil {
		payload["reference_id"] = *e.ReferenceID
	}

	return payload
}
