package store

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"backoffice/internal/gateway"
	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeGateway answers writes per action and records every call.
type fakeGateway struct {
	mu       sync.Mutex
	calls    []string
	results  map[string]gateway.WriteResult
	errs     map[string]error
	rows     map[string][]gateway.Row
	fetchErr error

	// gate, when set, blocks Do until released. Used to hold a mutation
	// in flight.
	gate chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		results: make(map[string]gateway.WriteResult),
		errs:    make(map[string]error),
		rows:    make(map[string][]gateway.Row),
	}
}

func (f *fakeGateway) succeed(actions ...string) *fakeGateway {
	for _, a := range actions {
		f.results[a] = gateway.WriteResult{Success: true}
	}
	return f
}

func (f *fakeGateway) record(action string) {
	f.mu.Lock()
	f.calls = append(f.calls, action)
	f.mu.Unlock()
}

func (f *fakeGateway) callCount(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.calls {
		if a == action {
			n++
		}
	}
	return n
}

func (f *fakeGateway) Fetch(ctx context.Context, action string, params url.Values) ([]gateway.Row, error) {
	f.record(action)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	key := action
	if sheet := params.Get("sheet"); sheet != "" {
		key = action + ":" + sheet
	}
	return f.rows[key], nil
}

func (f *fakeGateway) Do(ctx context.Context, action string, params url.Values, body any) (gateway.WriteResult, error) {
	f.record(action)
	if f.gate != nil {
		<-f.gate
	}
	if err, ok := f.errs[action]; ok {
		return gateway.WriteResult{Message: "connection failed"}, err
	}
	if res, ok := f.results[action]; ok {
		return res, nil
	}
	return gateway.WriteResult{Success: false, Message: "unexpected action " + action}, nil
}

func seededStore(gw *fakeGateway) *Store {
	s := New(gw, nil, nil)
	s.Warm(
		[]model.Entry{{
			ID:              "E1",
			ClientName:      "محمد",
			BranchID:        "BR-1",
			Status:          model.EntryStatusActive,
			AmountPaid:      decimal.NewFromInt(200),
			ServiceCost:     decimal.NewFromInt(300),
			RemainingAmount: decimal.NewFromInt(100),
			Timestamp:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		}},
		[]model.Expense{{
			ID:       "EXP-1",
			Category: "إيجار",
			Amount:   decimal.NewFromInt(50),
			BranchID: "BR-1",
		}},
		[]model.StockItem{
			{Barcode: "B1", Branch: "BR-1", Category: model.StockCategoryImmediate, Status: model.StockStatusAvailable},
			{Barcode: "B2", Branch: "BR-1", Category: model.StockCategoryImmediate, Status: model.StockStatusUsed},
		},
		[]model.Branch{
			{ID: "BR-1", Name: "الفرع الرئيسي", CurrentBalance: decimal.NewFromInt(1000)},
			{ID: "BR-2", Name: "فرع ثاني", CurrentBalance: decimal.NewFromInt(100)},
		},
		nil,
		model.Settings{},
	)
	return s
}

func balance(t *testing.T, s *Store, branchID string) decimal.Decimal {
	t.Helper()
	b, ok := s.BranchByID(branchID)
	require.True(t, ok)
	return b.CurrentBalance
}

func TestAddEntryCreditsBranchAndConsumesBarcode(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionAddRow, gateway.ActionUpdateStockStatus)
	s := seededStore(gw)

	entry := model.Entry{
		ID:            "E2",
		ClientName:    "سارة",
		BranchID:      "BR-1",
		Status:        model.EntryStatusActive,
		AmountPaid:    decimal.NewFromInt(300),
		Barcode:       "B1",
		BarcodeSource: model.BarcodeSourceInternal,
		RecordedBy:    "عمر",
	}
	require.NoError(t, s.AddEntry(context.Background(), entry))

	entries := s.Entries()
	require.Equal(t, "E2", entries[0].ID)
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1300)))

	item, ok := s.FindStockItem("B1")
	require.True(t, ok)
	require.Equal(t, model.StockStatusUsed, item.Status)
	require.Equal(t, "عمر", item.UsedBy)
	require.Equal(t, "E2", item.OrderID)
	require.Equal(t, 1, gw.callCount(gateway.ActionUpdateStockStatus))
}

func TestAddEntryRollsBackOnNetworkFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.errs[gateway.ActionAddRow] = errors.New("retries exhausted")
	s := seededStore(gw)

	before := s.Entries()
	err := s.AddEntry(context.Background(), model.Entry{ID: "E2", BranchID: "BR-1", AmountPaid: decimal.NewFromInt(300)})
	require.Error(t, err)

	require.Equal(t, before, s.Entries())
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1000)))
	require.Zero(t, gw.callCount(gateway.ActionUpdateStockStatus))
}

func TestAddEntrySurfacesRemoteRejection(t *testing.T) {
	gw := newFakeGateway()
	gw.results[gateway.ActionAddRow] = gateway.WriteResult{Success: false, Message: "الباركود مستخدم"}
	s := seededStore(gw)

	err := s.AddEntry(context.Background(), model.Entry{ID: "E2", BranchID: "BR-1"})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "الباركود مستخدم", remote.Message)
	require.Len(t, s.Entries(), 1)
}

func TestSecondMutationWhileInFlightIsBusy(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionAddRow)
	gw.gate = make(chan struct{})
	s := seededStore(gw)

	done := make(chan error, 1)
	go func() {
		done <- s.AddEntry(context.Background(), model.Entry{ID: "E2", BranchID: "BR-1"})
	}()

	// Wait until the first mutation reaches the gateway.
	require.Eventually(t, func() bool {
		return gw.callCount(gateway.ActionAddRow) == 1
	}, time.Second, time.Millisecond)

	err := s.AddExpense(context.Background(), model.Expense{ID: "EXP-2", BranchID: "BR-1"})
	require.ErrorIs(t, err, ErrBusy)

	close(gw.gate)
	require.NoError(t, <-done)
}

func TestUpdateEntryMovesBalanceByDelta(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionUpdateEntry)
	s := seededStore(gw)

	updated, _ := s.FindEntry("E1")
	updated.AmountPaid = decimal.NewFromInt(250)
	require.NoError(t, s.UpdateEntry(context.Background(), updated))

	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1050)))
}

func TestCancelEntryReleasesBarcode(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionUpdateEntry, gateway.ActionUpdateStockStatus)
	s := seededStore(gw)

	cancelled, _ := s.FindEntry("E1")
	cancelled.Status = model.EntryStatusCancelled
	cancelled.Barcode = "B2"
	require.NoError(t, s.UpdateEntry(context.Background(), cancelled))

	item, ok := s.FindStockItem("B2")
	require.True(t, ok)
	require.Equal(t, model.StockStatusAvailable, item.Status)
	require.Empty(t, item.UsedBy)
}

func TestDeliverOrderIsTerminal(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionDeliverOrder)
	s := seededStore(gw)

	require.NoError(t, s.DeliverOrder(context.Background(), "E1", "عمر"))
	entry, _ := s.FindEntry("E1")
	require.Equal(t, model.EntryStatusDelivered, entry.Status)
	require.NotEmpty(t, entry.DeliveredAt)

	// A second delivery is rejected locally without another round-trip.
	require.ErrorIs(t, s.DeliverOrder(context.Background(), "E1", "عمر"), ErrEntryNotActive)
	require.Equal(t, 1, gw.callCount(gateway.ActionDeliverOrder))
}

func TestDeliverOrderRejectsCancelledEntry(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionUpdateEntry, gateway.ActionDeliverOrder)
	s := seededStore(gw)

	cancelled, _ := s.FindEntry("E1")
	cancelled.Status = model.EntryStatusCancelled
	require.NoError(t, s.UpdateEntry(context.Background(), cancelled))

	require.ErrorIs(t, s.DeliverOrder(context.Background(), "E1", "عمر"), ErrEntryNotActive)

	entry, _ := s.FindEntry("E1")
	require.Equal(t, model.EntryStatusCancelled, entry.Status)
	require.Zero(t, gw.callCount(gateway.ActionDeliverOrder))
}

func TestSettleDebt(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionAddRow, gateway.ActionUpdateEntry)
	s := seededStore(gw)

	settlement, err := s.SettleDebt(context.Background(), "E1", decimal.NewFromInt(60), "عمر")
	require.NoError(t, err)

	require.Equal(t, model.ServiceTypeDebtSettlement, settlement.ServiceType)
	require.Equal(t, "E1", settlement.ParentEntryID)
	require.True(t, settlement.AmountPaid.Equal(decimal.NewFromInt(60)))
	require.True(t, settlement.RemainingAmount.IsZero())

	parent, _ := s.FindEntry("E1")
	require.True(t, parent.RemainingAmount.Equal(decimal.NewFromInt(40)))
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1060)))

	// The settlement entry sits at the head of the list.
	require.Equal(t, settlement.ID, s.Entries()[0].ID)
}

func TestSettleDebtRejectsExcessAmount(t *testing.T) {
	gw := newFakeGateway()
	s := seededStore(gw)

	_, err := s.SettleDebt(context.Background(), "E1", decimal.NewFromInt(150), "عمر")
	require.ErrorIs(t, err, ErrSettlementExceeds)

	_, err = s.SettleDebt(context.Background(), "E1", decimal.Zero, "عمر")
	require.ErrorIs(t, err, ErrInvalidAmount)

	// Pre-checks fail before any network call.
	require.Empty(t, gw.calls)
}

func TestSettleDebtRollsBackBothEffects(t *testing.T) {
	gw := newFakeGateway()
	gw.results[gateway.ActionAddRow] = gateway.WriteResult{Success: true}
	gw.results[gateway.ActionUpdateEntry] = gateway.WriteResult{Success: false, Message: "row not found"}
	s := seededStore(gw)

	_, err := s.SettleDebt(context.Background(), "E1", decimal.NewFromInt(60), "عمر")
	require.Error(t, err)

	parent, _ := s.FindEntry("E1")
	require.True(t, parent.RemainingAmount.Equal(decimal.NewFromInt(100)))
	require.Len(t, s.Entries(), 1)
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1000)))
}

func TestSettleThirdParty(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionUpdateEntry, gateway.ActionAddRow)
	s := seededStore(gw)
	s.entries[0].ThirdPartyName = "مكتب الوسيط"
	s.entries[0].ThirdPartyCost = decimal.NewFromInt(120)

	expense, err := s.SettleThirdParty(context.Background(), "E1", "عمر")
	require.NoError(t, err)

	entry, _ := s.FindEntry("E1")
	require.True(t, entry.ThirdPartyPaid)
	require.NotEmpty(t, entry.ThirdPartyPaidDate)

	// The paired expense sits at the head of the list and debits the branch.
	require.Equal(t, expense.ID, s.Expenses()[0].ID)
	require.True(t, expense.Amount.Equal(decimal.NewFromInt(120)))
	require.Equal(t, "BR-1", expense.BranchID)
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(880)))

	_, err = s.SettleThirdParty(context.Background(), "E1", "عمر")
	require.ErrorIs(t, err, ErrThirdPartySettled)
}

func TestSettleThirdPartyPreChecks(t *testing.T) {
	gw := newFakeGateway()
	s := seededStore(gw)

	// E1 carries no third-party cost.
	_, err := s.SettleThirdParty(context.Background(), "E1", "عمر")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.SettleThirdParty(context.Background(), "E9", "عمر")
	require.ErrorIs(t, err, ErrEntryNotFound)

	require.Empty(t, gw.calls)
}

func TestSettleThirdPartyRollsBackAllEffects(t *testing.T) {
	gw := newFakeGateway()
	gw.results[gateway.ActionUpdateEntry] = gateway.WriteResult{Success: true}
	gw.results[gateway.ActionAddRow] = gateway.WriteResult{Success: false, Message: "sheet is locked"}
	s := seededStore(gw)
	s.entries[0].ThirdPartyCost = decimal.NewFromInt(120)

	_, err := s.SettleThirdParty(context.Background(), "E1", "عمر")
	require.Error(t, err)

	entry, _ := s.FindEntry("E1")
	require.False(t, entry.ThirdPartyPaid)
	require.Empty(t, entry.ThirdPartyPaidDate)
	require.Len(t, s.Expenses(), 1)
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1000)))
}

func TestAddExpenseDebitsBranch(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionAddRow)
	s := seededStore(gw)

	require.NoError(t, s.AddExpense(context.Background(), model.Expense{
		ID:       "EXP-2",
		Amount:   decimal.NewFromInt(75),
		BranchID: "BR-1",
	}))
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(925)))
}

func TestDeleteExpenseIsConservative(t *testing.T) {
	gw := newFakeGateway()
	gw.errs[gateway.ActionDeleteExpense] = errors.New("retries exhausted")
	s := seededStore(gw)

	// Failure: the expense stays and the balance does not move.
	require.Error(t, s.DeleteExpense(context.Background(), "EXP-1"))
	require.Len(t, s.Expenses(), 1)
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1000)))

	// Success: removed and credited back.
	delete(gw.errs, gateway.ActionDeleteExpense)
	gw.succeed(gateway.ActionDeleteExpense)
	require.NoError(t, s.DeleteExpense(context.Background(), "EXP-1"))
	require.Empty(t, s.Expenses())
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1050)))
}

func TestBranchTransfer(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionBranchTransfer)
	s := seededStore(gw)

	require.NoError(t, s.BranchTransfer(context.Background(), "BR-1", "BR-2", decimal.NewFromInt(400), "عمر"))
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(600)))
	require.True(t, balance(t, s, "BR-2").Equal(decimal.NewFromInt(500)))
}

func TestBranchTransferPreChecks(t *testing.T) {
	gw := newFakeGateway()
	s := seededStore(gw)

	require.ErrorIs(t, s.BranchTransfer(context.Background(), "BR-2", "BR-1", decimal.NewFromInt(500), "عمر"), ErrInsufficientBalance)
	require.ErrorIs(t, s.BranchTransfer(context.Background(), "BR-1", "BR-9", decimal.NewFromInt(10), "عمر"), ErrBranchNotFound)
	require.ErrorIs(t, s.BranchTransfer(context.Background(), "BR-1", "BR-2", decimal.Zero, "عمر"), ErrInvalidAmount)
	require.Empty(t, gw.calls)
}

func TestBranchTransferRollsBackBothBalances(t *testing.T) {
	gw := newFakeGateway()
	gw.results[gateway.ActionBranchTransfer] = gateway.WriteResult{Success: false, Message: "rejected"}
	s := seededStore(gw)

	require.Error(t, s.BranchTransfer(context.Background(), "BR-1", "BR-2", decimal.NewFromInt(400), "عمر"))
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1000)))
	require.True(t, balance(t, s, "BR-2").Equal(decimal.NewFromInt(100)))
}

func TestUpdateStockStatusGuardsTransitions(t *testing.T) {
	gw := newFakeGateway().succeed(gateway.ActionUpdateStockStatus)
	s := seededStore(gw)

	// Used is terminal except through cancellation paths.
	require.ErrorIs(t, s.UpdateStockStatus(context.Background(), "B2", model.StockStatusAvailable, "عمر"), ErrInvalidStockTransition)

	require.NoError(t, s.UpdateStockStatus(context.Background(), "B1", model.StockStatusError, "عمر"))
	item, _ := s.FindStockItem("B1")
	require.Equal(t, model.StockStatusError, item.Status)

	// Error -> Available is the admin override.
	require.NoError(t, s.UpdateStockStatus(context.Background(), "B1", model.StockStatusAvailable, "عمر"))
	item, _ = s.FindStockItem("B1")
	require.Equal(t, model.StockStatusAvailable, item.Status)
}

func TestAvailableBarcode(t *testing.T) {
	gw := newFakeGateway()
	gw.results[gateway.ActionGetAvailableBarcode] = gateway.WriteResult{
		Success: true,
		Fields:  map[string]any{"barcode": "B1"},
	}
	s := seededStore(gw)

	barcode, err := s.AvailableBarcode(context.Background(), "BR-1", model.StockCategoryImmediate)
	require.NoError(t, err)
	require.Equal(t, "B1", barcode)

	// No available items for the tier: answered locally, no round-trip.
	_, err = s.AvailableBarcode(context.Background(), "BR-1", model.StockCategoryNormal)
	require.ErrorIs(t, err, ErrEmptyStock)
	require.Equal(t, 1, gw.callCount(gateway.ActionGetAvailableBarcode))
}

func TestSyncAllMergesRemoteState(t *testing.T) {
	gw := newFakeGateway()
	gw.rows[gateway.ActionGetData+":"+gateway.SheetEntries] = []gateway.Row{
		{"id": "E1", "clientName": "محمد", "status": model.EntryStatusDelivered, "branchId": "BR-1", "timestamp": "2024-03-01T09:00:00Z"},
		{"id": "E9", "clientName": "جديد", "status": model.EntryStatusActive, "branchId": "BR-1", "timestamp": "2024-03-02T09:00:00Z"},
	}
	gw.rows[gateway.ActionGetBranches] = []gateway.Row{
		{"id": "BR-1", "name": "الفرع الرئيسي", "Current_Balance": float64(1234)},
	}
	s := seededStore(gw)

	require.NoError(t, s.SyncAll(context.Background(), false))

	entries := s.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "E9", entries[0].ID)
	require.Equal(t, model.EntryStatusDelivered, entries[1].Status)

	// Branch list is replaced wholesale by the authoritative fetch.
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1234)))
	require.Len(t, s.Branches(), 1)

	// Users and settings are not fetched without the privileged flag.
	require.Zero(t, gw.callCount(gateway.ActionGetData+":"+gateway.SheetUsers))
}

func TestSyncAllKeepsSliceIdentityWhenUnchanged(t *testing.T) {
	gw := newFakeGateway()
	gw.rows[gateway.ActionGetData+":"+gateway.SheetEntries] = []gateway.Row{
		{"id": "E1", "clientName": "محمد", "status": model.EntryStatusActive, "branchId": "BR-1", "timestamp": "2024-03-01T09:00:00Z"},
	}
	gw.rows[gateway.ActionGetData+":"+gateway.SheetExpenses] = []gateway.Row{
		{"id": "EXP-1", "category": "إيجار", "amount": float64(50), "branchId": "BR-1"},
	}
	s := seededStore(gw)

	require.NoError(t, s.SyncAll(context.Background(), false))
	entriesBefore, expensesBefore := s.entries, s.expenses

	// An identical payload must not swap the in-memory slices for fresh copies.
	require.NoError(t, s.SyncAll(context.Background(), false))
	require.True(t, &s.entries[0] == &entriesBefore[0])
	require.True(t, &s.expenses[0] == &expensesBefore[0])
}

func TestSyncAllFailsOnlyWhenEverythingFails(t *testing.T) {
	gw := newFakeGateway()
	gw.fetchErr = errors.New("retries exhausted")
	s := seededStore(gw)

	require.Error(t, s.SyncAll(context.Background(), false))

	// Local state untouched on total failure.
	require.Len(t, s.Entries(), 1)
	require.True(t, balance(t, s, "BR-1").Equal(decimal.NewFromInt(1000)))
}
