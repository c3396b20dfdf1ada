package store

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"

	"backoffice/internal/gateway"
	"backoffice/internal/model"
)

// Gateway is the slice of the remote client the store depends on.
type Gateway interface {
	Fetch(ctx context.Context, action string, params url.Values) ([]gateway.Row, error)
	Do(ctx context.Context, action string, params url.Values, body any) (gateway.WriteResult, error)
}

// Cache mirrors committed state for offline continuity. All saves are wholesale
// collection overwrites.
type Cache interface {
	SaveEntries([]model.Entry) error
	SaveExpenses([]model.Expense) error
	SaveStock([]model.StockItem) error
	SaveBranches([]model.Branch) error
	SaveUsers([]model.User) error
	SaveSettings(model.Settings) error
}

// Notifier receives invalidation events after committed changes.
type Notifier interface {
	Notify(event, resource string)
}

// Store owns the authoritative in-process copy of every domain collection and
// mediates all mutation through the optimistic three-phase engine in txn.go.
// Components never reach inside; they go through the accessors and operations.
type Store struct {
	mu       sync.RWMutex
	entries  []model.Entry
	expenses []model.Expense
	stock    []model.StockItem
	branches []model.Branch
	users    []model.User
	settings model.Settings

	gw       Gateway
	cache    Cache
	notifier Notifier

	// submitting enforces at-most-one-mutation-in-flight globally;
	// syncing makes a second SyncAll a no-op rather than a queue entry.
	submitting atomic.Bool
	syncing    atomic.Bool
}

func New(gw Gateway, cache Cache, notifier Notifier) *Store {
	return &Store{
		gw:       gw,
		cache:    cache,
		notifier: notifier,
		settings: model.DefaultSettings(),
	}
}

// Warm seeds the store from the snapshot cache at startup, before the first sync.
func (s *Store) Warm(entries []model.Entry, expenses []model.Expense, stock []model.StockItem, branches []model.Branch, users []model.User, settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.expenses = expenses
	s.stock = stock
	s.branches = branches
	s.users = users
	if len(settings.ServiceTypes) > 0 || len(settings.ExpenseCategories) > 0 {
		s.settings = settings
	}
}

// --- Read accessors (copies; callers never see internal slices) ---

func (s *Store) Entries() []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Entry(nil), s.entries...)
}

// EntriesForBranch returns the entries visible to one branch, newest first.
func (s *Store) EntriesForBranch(branchID string) []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if branchID == "" || e.BranchID == branchID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Expenses() []model.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Expense(nil), s.expenses...)
}

func (s *Store) ExpensesForBranch(branchID string) []model.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if branchID == "" || e.BranchID == branchID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Stock() []model.StockItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.StockItem(nil), s.stock...)
}

func (s *Store) Branches() []model.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Branch(nil), s.branches...)
}

func (s *Store) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.users...)
}

func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Settings{
		ServiceTypes:      append([]string(nil), s.settings.ServiceTypes...),
		ExpenseCategories: append([]string(nil), s.settings.ExpenseCategories...),
	}
}

func (s *Store) FindEntry(id string) (model.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.Entry{}, false
}

func (s *Store) FindExpense(id string) (model.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return model.Expense{}, false
}

func (s *Store) BranchByID(id string) (model.Branch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.branches {
		if b.ID == id {
			return b, true
		}
	}
	return model.Branch{}, false
}

func (s *Store) FindStockItem(barcode string) (model.StockItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.stock {
		if item.Barcode == barcode {
			return item, true
		}
	}
	return model.StockItem{}, false
}

// BarcodeOnAnotherEntry reports whether barcode is already attached to an entry
// other than excludeID. Used by the externally-sourced-barcode validation rule.
func (s *Store) BarcodeOnAnotherEntry(barcode, excludeID string) bool {
	if barcode == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Barcode == barcode && e.ID != excludeID {
			return true
		}
	}
	return false
}

// AvailableStockCount counts Available items for a branch and speed tier.
func (s *Store) AvailableStockCount(branch, category string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.stock {
		if item.Branch == branch && item.Category == category && item.Status == model.StockStatusAvailable {
			count++
		}
	}
	return count
}

// --- Internal helpers (callers hold s.mu) ---

func (s *Store) entryIndex(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) expenseIndex(id string) int {
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) branchIndex(id string) int {
	for i := range s.branches {
		if s.branches[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) stockIndex(barcode string) int {
	for i := range s.stock {
		if s.stock[i].Barcode == barcode {
			return i
		}
	}
	return -1
}

func (s *Store) notify(event, resource string) {
	if s.notifier != nil {
		s.notifier.Notify(event, resource)
	}
}
