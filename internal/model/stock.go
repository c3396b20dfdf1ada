package model

import (
	"time"

	"github.com/google/uuid"
)

// StockStatus constants — the sheet stores these capitalized.
const (
	StockStatusAvailable = "Available"
	StockStatusUsed      = "Used"
	StockStatusError     = "Error"
)

// Stock speed tiers for pre-printed forms.
const (
	StockCategoryImmediate = "فوري"
	StockCategoryUrgent    = "مستعجل"
	StockCategoryNormal    = "عادي"
)

// StockCategories lists the three speed tiers in display order.
var StockCategories = []string{StockCategoryImmediate, StockCategoryUrgent, StockCategoryNormal}

// StockItem is a single pre-printed numbered form, identified by its barcode.
type StockItem struct {
	Barcode   string    `gorm:"type:varchar(100);primaryKey" json:"barcode"`
	Category  string    `gorm:"type:varchar(30);index" json:"category"`
	Branch    string    `gorm:"type:varchar(50);index" json:"branch"`
	Status    string    `gorm:"type:varchar(20);index" json:"status"` // Available, Used, Error
	CreatedAt time.Time `json:"created_at"`
	UsedBy    string    `gorm:"type:varchar(100)" json:"used_by,omitempty"`
	UsageDate string    `gorm:"type:varchar(10)" json:"usage_date,omitempty"`
	OrderID   string    `gorm:"type:varchar(50);index" json:"order_id,omitempty"`
}

// NewStockBatchID tokens a batch insertion so its items can be traced together.
func NewStockBatchID() string {
	return "BATCH-" + uuid.NewString()
}
