package validation

import (
	"testing"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		NationalID:  "29801234567890",
		ServiceType: model.ServiceTypePassport,
		Phone:       "01001234567",
		SpeedTier:   model.StockCategoryNormal,
		AmountPaid:  decimal.NewFromInt(300),
	}
}

func TestValidateSubmissionPasses(t *testing.T) {
	require.NoError(t, ValidateSubmission(validSubmission(), nil))
}

func TestNationalIDRuleOutranksServiceType(t *testing.T) {
	// Both the national ID and the service type are invalid; the ID rule fires first.
	sub := Submission{NationalID: "1234567890", ServiceType: ""}
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrNationalIDLength)
}

func TestNationalIDAcceptsArabicDigits(t *testing.T) {
	sub := validSubmission()
	sub.NationalID = "٢٩٨٠١٢٣٤٥٦٧٨٩٠"
	require.NoError(t, ValidateSubmission(sub, nil))
}

func TestNationalIDExemptServices(t *testing.T) {
	sub := validSubmission()
	sub.NationalID = ""
	sub.ServiceType = model.ServiceTypeDebtSettlement
	sub.Phone = ""
	sub.SpeedTier = ""
	require.NoError(t, ValidateSubmission(sub, nil))
}

func TestServiceTypeRequired(t *testing.T) {
	sub := validSubmission()
	sub.ServiceType = "  "
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrServiceTypeRequired)
}

func TestPhoneMustStartWithZero(t *testing.T) {
	sub := validSubmission()
	sub.Phone = "1001234567"
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrPhoneFormat)

	sub.Phone = ""
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrPhoneFormat)

	sub.Phone = "٠١٠٠١٢٣٤٥٦٧"
	require.NoError(t, ValidateSubmission(sub, nil))
}

func TestElectronicPaymentRules(t *testing.T) {
	sub := validSubmission()
	sub.ElectronicPayment = true
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrPaymentMethodRequired)

	sub.ElectronicMethod = "انستاباي"
	sub.ElectronicAmount = decimal.NewFromInt(500)
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrElectronicAmount)

	sub.ElectronicAmount = decimal.NewFromInt(300)
	require.NoError(t, ValidateSubmission(sub, nil))
}

func TestSpeedTierRequiredForStockServices(t *testing.T) {
	sub := validSubmission()
	sub.ServiceType = model.ServiceTypeIDCard
	sub.SpeedTier = ""
	sub.Barcode = "B1"
	sub.BarcodeSource = model.BarcodeSourceInternal
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrSpeedTierRequired)
}

func TestExternalBarcodeUniqueness(t *testing.T) {
	sub := validSubmission()
	sub.Barcode = "B1"
	sub.BarcodeSource = model.BarcodeSourceExternal

	taken := func(barcode string) bool { return barcode == "B1" }
	require.ErrorIs(t, ValidateSubmission(sub, taken), ErrBarcodeTaken)

	sub.Barcode = "B2"
	require.NoError(t, ValidateSubmission(sub, taken))
}

func TestInternalBarcodeRequiredForIDCard(t *testing.T) {
	sub := validSubmission()
	sub.ServiceType = model.ServiceTypeIDCard
	sub.SpeedTier = model.StockCategoryImmediate
	sub.BarcodeSource = model.BarcodeSourceInternal
	sub.Barcode = ""
	require.ErrorIs(t, ValidateSubmission(sub, nil), ErrBarcodeRequired)
}
