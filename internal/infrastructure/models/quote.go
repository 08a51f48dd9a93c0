package models

import (
	"time"

	"github.com/google/uuid"
)

type MintQuote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Amount      uint64    `gorm:"not null"`
	Request     string    `gorm:"type:text;not null"`
	PaymentHash string    `gorm:"type:varchar(64);not null;index"`
	State       string    `gorm:"type:varchar(20);not null;index"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	IssuedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MeltQuote struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Request         string    `gorm:"type:text;not null"`
	PaymentHash     string    `gorm:"type:varchar(64);not null;index"`
	Amount          uint64    `gorm:"not null"`
	FeeReserve      uint64    `gorm:"not null"`
	State           string    `gorm:"type:varchar(20);not null;index"`
	PaymentPreimage string    `gorm:"type:varchar(64)"`
	FeePaid         uint64    `gorm:"default:0"`
	AmountReceived  uint64    `gorm:"default:0"`
	ChangeToken     string    `gorm:"type:text"`
	ExpiresAt       time.Time `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SearchCounter is a single-row table; CounterRowID is the only key ever used.
type SearchCounter struct {
	ID        int `gorm:"primaryKey"`
	Count     uint64
	UpdatedAt time.Time
}

type SearchEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TokenAmount uint64    `gorm:"not null"`
	QueryHash   string    `gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time
}

// CounterRowID is the fixed primary key of the search counter row
const CounterRowID = 1
