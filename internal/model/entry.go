package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus constants
const (
	EntryStatusActive    = "active"
	EntryStatusCancelled = "cancelled"
	EntryStatusDelivered = "delivered"
)

// ServiceType constants for types with dedicated business rules. The full list of
// offered services is configurable (see Settings); these are the ones the code
// branches on.
const (
	ServiceTypeIDCard         = "بطاقة رقم قومي"
	ServiceTypePassport       = "جواز سفر"
	ServiceTypeDebtSettlement = "سداد مديونية"
)

// BarcodeSource constants — internal barcodes come from the branch's pre-printed
// stock, external ones are typed in from a form the client brought along.
const (
	BarcodeSourceInternal = "internal"
	BarcodeSourceExternal = "external"
)

// Entry represents a single government-service transaction.
// The remote sheet is the source of truth; the gorm tags only shape the local
// snapshot mirror.
type Entry struct {
	ID              string          `gorm:"type:varchar(50);primaryKey" json:"id"`
	ClientName      string          `gorm:"type:varchar(255)" json:"clientName"`
	NationalID      string          `gorm:"type:varchar(20);index" json:"nationalId"`
	Phone           string          `gorm:"type:varchar(20)" json:"phone"`
	ServiceType     string          `gorm:"type:varchar(100)" json:"serviceType"`
	SpeedTier       string          `gorm:"type:varchar(30)" json:"speedTier"`
	EntryDate       string          `gorm:"type:varchar(10)" json:"entryDate"` // YYYY-MM-DD
	AmountPaid      decimal.Decimal `gorm:"type:decimal(18,2)" json:"amountPaid"`
	ServiceCost     decimal.Decimal `gorm:"type:decimal(18,2)" json:"serviceCost"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"remainingAmount"` // = serviceCost - amountPaid, maintained by callers
	BranchID        string          `gorm:"type:varchar(50);index" json:"branchId"`
	Status          string          `gorm:"type:varchar(20);index" json:"status"` // active, cancelled, delivered
	RecordedBy      string          `gorm:"type:varchar(100)" json:"recordedBy"`
	Timestamp       time.Time       `gorm:"index" json:"timestamp"`

	Barcode       string `gorm:"type:varchar(100)" json:"barcode,omitempty"`
	BarcodeSource string `gorm:"type:varchar(20)" json:"barcodeSource,omitempty"`

	// Third-party sub-record: an external office fronting part of the cost,
	// reimbursed later from branch cash.
	ThirdPartyName     string          `gorm:"type:varchar(255)" json:"thirdPartyName,omitempty"`
	ThirdPartyCost     decimal.Decimal `gorm:"type:decimal(18,2)" json:"thirdPartyCost"`
	ThirdPartyPaid     bool            `json:"thirdPartyPaid"`
	ThirdPartyPaidDate string          `gorm:"type:varchar(10)" json:"thirdPartyPaidDate,omitempty"`

	// Electronic-payment sub-record.
	ElectronicPayment bool            `json:"electronicPayment"`
	ElectronicMethod  string          `gorm:"type:varchar(50)" json:"electronicMethod,omitempty"`
	ElectronicAmount  decimal.Decimal `gorm:"type:decimal(18,2)" json:"electronicAmount"`

	// ParentEntryID links a debt-settlement entry back to the entry it pays down.
	ParentEntryID string `gorm:"type:varchar(50);index" json:"parentEntryId,omitempty"`
	DeliveredAt   string `gorm:"type:varchar(10)" json:"deliveredAt,omitempty"`
}

// NewEntryID generates an entry identifier from the creation instant, matching the
// id scheme the sheet rows already use.
func NewEntryID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
