package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	HashedPassword string             `json:"hashed_password"`
	Role           string             `json:"role"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Transaction struct {
	ID            string             `json:"id"`
	AccountID     string             `json:"account_id"`
	Type          string             `json:"type"`
	Amount        pgtype.Numeric     `json:"amount"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	BalanceBefore pgtype.Numeric     `json:"balance_before"`
	BalanceAfter  pgtype.Numeric     `json:"balance_after"`
	WalletVersion int64              `json:"wallet_version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type Wallet struct {
	AccountID string             `json:"account_id"`
	Balance   pgtype.Numeric     `json:"balance"`
	Version   int64              `json:"version"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}
