package validation

import (
	"errors"
	"strings"

	"backoffice/internal/mapper"
	"backoffice/internal/model"

	"github.com/shopspring/decimal"
)

// Rule failures, surfaced inline before any network call is made.
var (
	ErrNationalIDLength      = errors.New("national ID must be exactly 14 digits")
	ErrServiceTypeRequired   = errors.New("a service type must be selected")
	ErrPhoneFormat           = errors.New("phone number must start with 0")
	ErrPaymentMethodRequired = errors.New("an electronic payment method must be selected")
	ErrElectronicAmount      = errors.New("electronic amount cannot exceed the collected amount")
	ErrSpeedTierRequired     = errors.New("a speed tier must be selected for this service")
	ErrBarcodeTaken          = errors.New("this barcode is already used by another entry")
	ErrBarcodeRequired       = errors.New("a stock barcode is required for ID-card services")
)

// Services that do not carry the client's own national ID or phone.
var nationalIDExempt = map[string]bool{
	model.ServiceTypeDebtSettlement: true,
	"تصديقات": true,
}

var phoneExempt = map[string]bool{
	model.ServiceTypeDebtSettlement: true,
}

// Services printed on pre-numbered stock forms, which makes the speed tier part
// of the order.
var speedTierRequired = map[string]bool{
	model.ServiceTypeIDCard:   true,
	model.ServiceTypePassport: true,
}

// Submission carries the fields of a new service entry the rule chain inspects.
type Submission struct {
	NationalID        string
	ServiceType       string
	Phone             string
	ElectronicPayment bool
	ElectronicMethod  string
	ElectronicAmount  decimal.Decimal
	AmountPaid        decimal.Decimal
	SpeedTier         string
	Barcode           string
	BarcodeSource     string
}

// BarcodeTaken reports whether a barcode already belongs to another entry.
type BarcodeTaken func(barcode string) bool

// ValidateSubmission runs the business rules in their fixed priority order and
// returns the first failure, or nil. Order matters: tests and the UI both rely
// on the national-ID rule outranking the service-type rule, and so on down.
func ValidateSubmission(sub Submission, taken BarcodeTaken) error {
	if !nationalIDExempt[sub.ServiceType] && !isDigits14(sub.NationalID) {
		return ErrNationalIDLength
	}
	if strings.TrimSpace(sub.ServiceType) == "" {
		return ErrServiceTypeRequired
	}
	if !phoneExempt[sub.ServiceType] {
		phone := mapper.ToEnglishDigits(strings.TrimSpace(sub.Phone))
		if phone == "" || phone[0] != '0' {
			return ErrPhoneFormat
		}
	}
	if sub.ElectronicPayment && strings.TrimSpace(sub.ElectronicMethod) == "" {
		return ErrPaymentMethodRequired
	}
	if sub.ElectronicPayment && sub.ElectronicAmount.GreaterThan(sub.AmountPaid) {
		return ErrElectronicAmount
	}
	if speedTierRequired[sub.ServiceType] && strings.TrimSpace(sub.SpeedTier) == "" {
		return ErrSpeedTierRequired
	}
	if sub.BarcodeSource == model.BarcodeSourceExternal && sub.Barcode != "" && taken != nil && taken(sub.Barcode) {
		return ErrBarcodeTaken
	}
	if sub.BarcodeSource == model.BarcodeSourceInternal && sub.ServiceType == model.ServiceTypeIDCard && strings.TrimSpace(sub.Barcode) == "" {
		return ErrBarcodeRequired
	}
	return nil
}

func isDigits14(s string) bool {
	s = mapper.ToEnglishDigits(strings.TrimSpace(s))
	if len(s) != 14 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
