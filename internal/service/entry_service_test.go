package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"backoffice/internal/gateway"
	"backoffice/internal/model"
	"backoffice/internal/store"
	"backoffice/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// stubGateway confirms every write and serves no reads.
type stubGateway struct{}

func (stubGateway) Fetch(ctx context.Context, action string, params url.Values) ([]gateway.Row, error) {
	return nil, nil
}

func (stubGateway) Do(ctx context.Context, action string, params url.Values, body any) (gateway.WriteResult, error) {
	return gateway.WriteResult{Success: true}, nil
}

func testStore() *store.Store {
	s := store.New(stubGateway{}, nil, nil)
	s.Warm(
		[]model.Entry{{
			ID:         "E1",
			ClientName: "محمد علي",
			NationalID: "29801234567890",
			BranchID:   "BR-1",
			Barcode:    "B900",
			Status:     model.EntryStatusActive,
			Timestamp:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		}},
		nil, nil,
		[]model.Branch{{ID: "BR-1", Name: "الفرع الرئيسي", CurrentBalance: decimal.NewFromInt(1000)}},
		nil,
		model.Settings{},
	)
	return s
}

func validCreateRequest() CreateEntryRequest {
	return CreateEntryRequest{
		ClientName:  "سارة أحمد",
		NationalID:  "29912345678901",
		Phone:       "01001234567",
		ServiceType: model.ServiceTypePassport,
		SpeedTier:   model.StockCategoryNormal,
		AmountPaid:  "300",
		ServiceCost: "450",
		BranchID:    "BR-1",
	}
}

func TestCreateEntryComputesRemaining(t *testing.T) {
	svc := NewEntryService(testStore())

	entry, err := svc.Create(context.Background(), "عمر", validCreateRequest())
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.True(t, entry.RemainingAmount.Equal(decimal.NewFromInt(150)))
	require.Equal(t, model.EntryStatusActive, entry.Status)
	require.Equal(t, "عمر", entry.RecordedBy)
	require.Equal(t, time.Now().Format("2006-01-02"), entry.EntryDate)
}

func TestCreateEntryRunsValidationChain(t *testing.T) {
	svc := NewEntryService(testStore())

	req := validCreateRequest()
	req.NationalID = "123"
	_, err := svc.Create(context.Background(), "عمر", req)
	require.ErrorIs(t, err, validation.ErrNationalIDLength)
}

func TestCreateEntryRejectsReusedExternalBarcode(t *testing.T) {
	svc := NewEntryService(testStore())

	req := validCreateRequest()
	req.Barcode = "B900"
	req.BarcodeSource = model.BarcodeSourceExternal
	_, err := svc.Create(context.Background(), "عمر", req)
	require.ErrorIs(t, err, validation.ErrBarcodeTaken)
}

func TestCreateEntryRejectsMalformedAmount(t *testing.T) {
	svc := NewEntryService(testStore())

	req := validCreateRequest()
	req.AmountPaid = "abc"
	_, err := svc.Create(context.Background(), "عمر", req)
	require.Error(t, err)
	require.Contains(t, err.Error(), "amountPaid")
}

func TestListFiltersBySearchTerm(t *testing.T) {
	svc := NewEntryService(testStore())

	require.Len(t, svc.List("BR-1", ""), 1)
	require.Len(t, svc.List("BR-1", "محمد"), 1)
	require.Len(t, svc.List("BR-1", "298012"), 1)
	require.Len(t, svc.List("BR-1", "B900"), 1)
	require.Empty(t, svc.List("BR-1", "لا يوجد"))
	require.Empty(t, svc.List("BR-9", ""))
}

func TestUpdateRecomputesRemaining(t *testing.T) {
	st := testStore()
	svc := NewEntryService(st)

	entry, _ := st.FindEntry("E1")
	entry.AmountPaid = decimal.NewFromInt(100)
	entry.ServiceCost = decimal.NewFromInt(450)

	updated, err := svc.Update(context.Background(), entry)
	require.NoError(t, err)
	require.True(t, updated.RemainingAmount.Equal(decimal.NewFromInt(350)))
}

func TestCancelMarksStatusOnly(t *testing.T) {
	st := testStore()
	svc := NewEntryService(st)

	require.NoError(t, svc.Cancel(context.Background(), "E1"))

	entry, ok := st.FindEntry("E1")
	require.True(t, ok, "cancelled entries stay in the list")
	require.Equal(t, model.EntryStatusCancelled, entry.Status)

	require.ErrorIs(t, svc.Cancel(context.Background(), "missing"), store.ErrEntryNotFound)
}
