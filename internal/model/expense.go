package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense represents a cash outflow against a branch's balance.
type Expense struct {
	ID         string          `gorm:"type:varchar(50);primaryKey" json:"id"`
	Category   string          `gorm:"type:varchar(100)" json:"category"` // free-form, drawn from the configurable list
	Amount     decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	BranchID   string          `gorm:"type:varchar(50);index" json:"branchId"`
	Date       string          `gorm:"type:varchar(10)" json:"date"` // YYYY-MM-DD
	Timestamp  time.Time       `gorm:"index" json:"timestamp"`
	RecordedBy string          `gorm:"type:varchar(100)" json:"recordedBy"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
}

// NewExpenseID generates a prefixed expense token.
func NewExpenseID() string {
	return "EXP-" + uuid.NewString()
}
