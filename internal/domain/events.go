package domain

import "time"

// Event types
const (
	EventTypeTransactionRecorded = "transaction.recorded"
	EventTypeAccountCreated      = "account.created"
)

// Aggregate types
const (
	AggregateTypeWallet  = "wallet"
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
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

// NewTransactionRecordedEvent builds the outbox event for a committed transaction.
func NewTransactionRecordedEvent(id string, t *Transaction) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   t.AccountID,
		AggregateType: AggregateTypeWallet,
		EventType:     EventTypeTransactionRecorded,
		Payload: map[string]any{
			"transaction_id": t.ID,
			"account_id":     t.AccountID,
			"type":           string(t.Kind),
			"amount":         t.Amount.StringFixed(MinorUnitPlaces),
			"balance_after":  t.BalanceAfter.StringFixed(MinorUnitPlaces),
			"wallet_version": t.WalletVersion,
		},
		CreatedAt: t.CreatedAt,
	}
}

// NewAccountCreatedEvent builds the outbox event for a new account.
func NewAccountCreatedEvent(id string, a *Account) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": a.ID,
			"name":       a.Name,
			"email":      a.Email,
		},
		CreatedAt: a.CreatedAt,
	}
}
