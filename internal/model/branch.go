package model

import "github.com/shopspring/decimal"

// Branch is a physical location with a running cash balance. The balance is only
// ever moved by entry/expense/settlement/transfer operations, never edited directly.
type Branch struct {
	ID             string          `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255)" json:"name"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,2)" json:"currentBalance"`
}
