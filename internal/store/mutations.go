package store

import (
	"context"
	"log"
	"net/url"
	"time"

	"backoffice/internal/gateway"
	"backoffice/internal/model"

	"github.com/shopspring/decimal"
)

// AddEntry inserts a new service entry optimistically, confirms it with the
// backend, and on success credits the owning branch by amountPaid without
// re-fetching. An internally-sourced barcode is marked Used afterwards.
func (s *Store) AddEntry(ctx context.Context, entry model.Entry) error {
	err := s.run(ctx, mutation{
		name:      "addEntry",
		resources: []Resource{ResEntries, ResBranches},
		apply: func() error {
			s.entries = append([]model.Entry{entry}, s.entries...)
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionAddRow, url.Values{"sheet": {gateway.SheetEntries}}, entry)
		},
		commit: func() {
			s.applyBalanceDelta(entry.BranchID, entry.AmountPaid)
		},
	})
	if err != nil {
		return err
	}

	if entry.Barcode != "" && entry.BarcodeSource == model.BarcodeSourceInternal {
		s.markBarcode(ctx, entry.Barcode, model.StockStatusUsed, entry.RecordedBy, entry.ID)
	}
	return nil
}

// UpdateEntry replaces an entry in place, restoring the prior value if the
// backend rejects it. The branch balance moves by the difference between the old
// and new amountPaid. Cancelling an entry that holds a barcode releases the
// barcode back to Available through a secondary call.
func (s *Store) UpdateEntry(ctx context.Context, updated model.Entry) error {
	var prev model.Entry
	err := s.run(ctx, mutation{
		name:      "updateEntry",
		resources: []Resource{ResEntries, ResBranches},
		apply: func() error {
			i := s.entryIndex(updated.ID)
			if i < 0 {
				return ErrEntryNotFound
			}
			prev = s.entries[i]
			s.entries[i] = updated
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionUpdateEntry, nil, updated)
		},
		commit: func() {
			s.applyBalanceDelta(updated.BranchID, updated.AmountPaid.Sub(prev.AmountPaid))
		},
	})
	if err != nil {
		return err
	}

	if updated.Status == model.EntryStatusCancelled && updated.Barcode != "" {
		s.markBarcode(ctx, updated.Barcode, model.StockStatusAvailable, "", "")
	}
	return nil
}

// DeliverOrder stamps an active entry delivered. Cancelled and already
// delivered entries are rejected before any remote call.
func (s *Store) DeliverOrder(ctx context.Context, id, deliveredBy string) error {
	date := time.Now().Format("2006-01-02")
	return s.run(ctx, mutation{
		name:      "deliverOrder",
		resources: []Resource{ResEntries},
		apply: func() error {
			i := s.entryIndex(id)
			if i < 0 {
				return ErrEntryNotFound
			}
			if s.entries[i].Status != model.EntryStatusActive {
				return ErrEntryNotActive
			}
			s.entries[i].Status = model.EntryStatusDelivered
			s.entries[i].DeliveredAt = date
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionDeliverOrder, nil, map[string]string{
				"id":          id,
				"deliveredAt": date,
				"deliveredBy": deliveredBy,
			})
		},
	})
}

// SettleDebt creates a settlement entry against parentID for amount and reduces
// the parent's remaining balance. Both local effects commit together or roll
// back together; the backend sees an addRow followed by an updateEntry, so a
// failure between the two can still leave the sheet half-applied until the next
// sync reconciles it.
func (s *Store) SettleDebt(ctx context.Context, parentID string, amount decimal.Decimal, recordedBy string) (model.Entry, error) {
	parent, ok := s.FindEntry(parentID)
	if !ok {
		return model.Entry{}, ErrEntryNotFound
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return model.Entry{}, ErrInvalidAmount
	}
	if amount.GreaterThan(parent.RemainingAmount) {
		return model.Entry{}, ErrSettlementExceeds
	}

	now := time.Now()
	settlement := model.Entry{
		ID:              model.NewEntryID(),
		ClientName:      parent.ClientName,
		NationalID:      parent.NationalID,
		Phone:           parent.Phone,
		ServiceType:     model.ServiceTypeDebtSettlement,
		EntryDate:       now.Format("2006-01-02"),
		AmountPaid:      amount,
		ServiceCost:     amount,
		RemainingAmount: decimal.Zero,
		BranchID:        parent.BranchID,
		Status:          model.EntryStatusActive,
		RecordedBy:      recordedBy,
		Timestamp:       now,
		ParentEntryID:   parent.ID,
	}
	updatedParent := parent
	updatedParent.RemainingAmount = parent.RemainingAmount.Sub(amount)

	err := s.run(ctx, mutation{
		name:      "settleDebt",
		resources: []Resource{ResEntries, ResBranches},
		apply: func() error {
			i := s.entryIndex(parent.ID)
			if i < 0 {
				return ErrEntryNotFound
			}
			s.entries[i] = updatedParent
			s.entries = append([]model.Entry{settlement}, s.entries...)
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			res, err := s.gw.Do(ctx, gateway.ActionAddRow, url.Values{"sheet": {gateway.SheetEntries}}, settlement)
			if err != nil || !res.Success {
				return res, err
			}
			return s.gw.Do(ctx, gateway.ActionUpdateEntry, nil, updatedParent)
		},
		commit: func() {
			s.applyBalanceDelta(parent.BranchID, amount)
		},
	})
	if err != nil {
		return model.Entry{}, err
	}
	return settlement, nil
}

// SettleThirdParty pays out an entry's third-party cost from branch cash. The
// entry is flagged paid with today's date and a paired expense records the
// outflow; both local effects commit together or roll back together. The
// backend sees an updateEntry followed by an addRow, so a failure between the
// two can leave the sheet half-applied until the next sync reconciles it.
func (s *Store) SettleThirdParty(ctx context.Context, entryID, recordedBy string) (model.Expense, error) {
	entry, ok := s.FindEntry(entryID)
	if !ok {
		return model.Expense{}, ErrEntryNotFound
	}
	if entry.ThirdPartyCost.LessThanOrEqual(decimal.Zero) {
		return model.Expense{}, ErrInvalidAmount
	}
	if entry.ThirdPartyPaid {
		return model.Expense{}, ErrThirdPartySettled
	}

	now := time.Now()
	updated := entry
	updated.ThirdPartyPaid = true
	updated.ThirdPartyPaidDate = now.Format("2006-01-02")

	expense := model.Expense{
		ID:         model.NewExpenseID(),
		Category:   "مستحقات جهات خارجية",
		Amount:     entry.ThirdPartyCost,
		BranchID:   entry.BranchID,
		Date:       updated.ThirdPartyPaidDate,
		Timestamp:  now,
		RecordedBy: recordedBy,
		Notes:      "سداد مستحقات " + entry.ThirdPartyName + " عن المعاملة " + entry.ID,
	}

	err := s.run(ctx, mutation{
		name:      "settleThirdParty",
		resources: []Resource{ResEntries, ResExpenses, ResBranches},
		apply: func() error {
			i := s.entryIndex(entry.ID)
			if i < 0 {
				return ErrEntryNotFound
			}
			s.entries[i] = updated
			s.expenses = append([]model.Expense{expense}, s.expenses...)
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			res, err := s.gw.Do(ctx, gateway.ActionUpdateEntry, nil, updated)
			if err != nil || !res.Success {
				return res, err
			}
			return s.gw.Do(ctx, gateway.ActionAddRow, url.Values{"sheet": {gateway.SheetExpenses}}, expense)
		},
		commit: func() {
			s.applyBalanceDelta(entry.BranchID, entry.ThirdPartyCost.Neg())
		},
	})
	if err != nil {
		return model.Expense{}, err
	}
	return expense, nil
}

// AddExpense inserts optimistically and debits the branch on success.
func (s *Store) AddExpense(ctx context.Context, expense model.Expense) error {
	return s.run(ctx, mutation{
		name:      "addExpense",
		resources: []Resource{ResExpenses, ResBranches},
		apply: func() error {
			s.expenses = append([]model.Expense{expense}, s.expenses...)
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionAddRow, url.Values{"sheet": {gateway.SheetExpenses}}, expense)
		},
		commit: func() {
			s.applyBalanceDelta(expense.BranchID, expense.Amount.Neg())
		},
	})
}

// DeleteExpense is conservative: nothing moves locally until the backend
// confirms, then the record is removed and the branch credited back.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	expense, ok := s.FindExpense(id)
	if !ok {
		return ErrExpenseNotFound
	}
	return s.run(ctx, mutation{
		name:      "deleteExpense",
		resources: []Resource{ResExpenses, ResBranches},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionDeleteExpense, nil, map[string]string{
				"id":       id,
				"amount":   expense.Amount.String(),
				"branchId": expense.BranchID,
			})
		},
		commit: func() {
			if i := s.expenseIndex(id); i >= 0 {
				s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			}
			s.applyBalanceDelta(expense.BranchID, expense.Amount)
		},
	})
}

// BranchTransfer moves amount between two branch balances. The two local deltas
// are applied in one state transition, so in-process they commit or revert
// together; server-side atomicity is whatever the single write call provides.
func (s *Store) BranchTransfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, recordedBy string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	from, ok := s.BranchByID(fromID)
	if !ok {
		return ErrBranchNotFound
	}
	if _, ok := s.BranchByID(toID); !ok {
		return ErrBranchNotFound
	}
	if from.CurrentBalance.LessThan(amount) {
		return ErrInsufficientBalance
	}

	return s.run(ctx, mutation{
		name:      "branchTransfer",
		resources: []Resource{ResBranches},
		apply: func() error {
			s.applyBalanceDelta(fromID, amount.Neg())
			s.applyBalanceDelta(toID, amount)
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionBranchTransfer, nil, map[string]string{
				"from":       fromID,
				"to":         toID,
				"amount":     amount.String(),
				"recordedBy": recordedBy,
			})
		},
	})
}

// User management ops accepted by the backend's manageUsers action.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ManageUser applies an admin add/update/delete to the users collection.
// Deletes are conservative like expense deletion.
func (s *Store) ManageUser(ctx context.Context, op string, user model.User) error {
	m := mutation{
		name:      "manageUsers",
		resources: []Resource{ResUsers},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionManageUsers, url.Values{"op": {op}}, user)
		},
	}
	switch op {
	case OpAdd:
		m.apply = func() error {
			s.users = append(s.users, user)
			return nil
		}
	case OpUpdate:
		m.apply = func() error {
			for i := range s.users {
				if s.users[i].ID == user.ID {
					s.users[i] = user
					return nil
				}
			}
			return ErrEntryNotFound
		}
	case OpDelete:
		m.commit = func() {
			for i := range s.users {
				if s.users[i].ID == user.ID {
					s.users = append(s.users[:i], s.users[i+1:]...)
					return
				}
			}
		}
	}
	return s.run(ctx, m)
}

// ManageBranch applies an admin add/delete to the branches collection.
func (s *Store) ManageBranch(ctx context.Context, op string, branch model.Branch) error {
	m := mutation{
		name:      "manageBranches",
		resources: []Resource{ResBranches},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionManageBranches, url.Values{"op": {op}}, branch)
		},
	}
	switch op {
	case OpAdd:
		m.apply = func() error {
			s.branches = append(s.branches, branch)
			return nil
		}
	case OpDelete:
		m.commit = func() {
			if i := s.branchIndex(branch.ID); i >= 0 {
				s.branches = append(s.branches[:i], s.branches[i+1:]...)
			}
		}
	}
	return s.run(ctx, m)
}

// UpdateSettings replaces the configurable lists.
func (s *Store) UpdateSettings(ctx context.Context, settings model.Settings) error {
	return s.run(ctx, mutation{
		name:      "updateSettings",
		resources: []Resource{ResSettings},
		apply: func() error {
			s.settings = settings
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionUpdateSettings, nil, settings)
		},
	})
}

// markBarcode flips a stock item's status after an entry mutation already
// succeeded. Local state and the backend are both updated best-effort: a
// failure here is logged and left for the next sync, it must not undo the
// committed entry.
func (s *Store) markBarcode(ctx context.Context, barcode, status, usedBy, orderID string) {
	s.mu.Lock()
	if i := s.stockIndex(barcode); i >= 0 {
		s.stock[i].Status = status
		s.stock[i].UsedBy = usedBy
		s.stock[i].OrderID = orderID
		if status == model.StockStatusUsed {
			s.stock[i].UsageDate = time.Now().Format("2006-01-02")
		} else {
			s.stock[i].UsageDate = ""
		}
	}
	s.mu.Unlock()
	s.persist(ResStock)

	res, err := s.gw.Do(ctx, gateway.ActionUpdateStockStatus, nil, map[string]string{
		"barcode": barcode,
		"status":  status,
		"usedBy":  usedBy,
		"orderId": orderID,
	})
	if err != nil {
		log.Printf("store: barcode %s status push failed: %v", barcode, err)
	} else if !res.Success {
		log.Printf("store: barcode %s status push rejected: %s", barcode, res.Message)
	}
}
