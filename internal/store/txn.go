package store

import (
	"context"
	"fmt"
	"log"

	"backoffice/internal/gateway"
	"backoffice/internal/model"

	"github.com/shopspring/decimal"
)

// Resource names a collection the mutation engine may snapshot and persist.
type Resource int

const (
	ResEntries Resource = iota
	ResExpenses
	ResStock
	ResBranches
	ResUsers
	ResSettings
)

var resourceNames = map[Resource]string{
	ResEntries:  "entries",
	ResExpenses: "expenses",
	ResStock:    "stock",
	ResBranches: "branches",
	ResUsers:    "users",
	ResSettings: "settings",
}

// stateSnapshot captures the pre-mutation value of the touched collections so a
// failed confirm restores them exactly.
type stateSnapshot struct {
	entries  []model.Entry
	expenses []model.Expense
	stock    []model.StockItem
	branches []model.Branch
	users    []model.User
	settings model.Settings
	touched  map[Resource]bool
}

// mutation is one optimistic operation in three phases: apply runs locally
// before the network call, confirm talks to the backend, commit applies the
// success-only effects (balance deltas, conservative removals). Either apply or
// commit may be nil. The snapshot/apply/confirm-or-revert shape replaces
// per-operation hand-written inverse logic: a new operation only fills in the
// closures.
type mutation struct {
	name      string
	resources []Resource
	apply     func() error
	confirm   func(ctx context.Context) (gateway.WriteResult, error)
	commit    func()
}

// run executes m under the global at-most-one-mutation-in-flight guard.
func (s *Store) run(ctx context.Context, m mutation) error {
	if !s.submitting.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.submitting.Store(false)

	s.mu.Lock()
	snap := s.capture(m.resources)
	if m.apply != nil {
		if err := m.apply(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	res, err := m.confirm(ctx)
	if err != nil || !res.Success {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
		return &RemoteError{Message: res.Message}
	}

	s.mu.Lock()
	if m.commit != nil {
		m.commit()
	}
	s.mu.Unlock()

	s.persist(m.resources...)
	s.notify("mutation", m.name)
	return nil
}

// capture copies the named collections. Caller holds s.mu.
func (s *Store) capture(resources []Resource) stateSnapshot {
	snap := stateSnapshot{touched: make(map[Resource]bool, len(resources))}
	for _, r := range resources {
		snap.touched[r] = true
		switch r {
		case ResEntries:
			snap.entries = append([]model.Entry(nil), s.entries...)
		case ResExpenses:
			snap.expenses = append([]model.Expense(nil), s.expenses...)
		case ResStock:
			snap.stock = append([]model.StockItem(nil), s.stock...)
		case ResBranches:
			snap.branches = append([]model.Branch(nil), s.branches...)
		case ResUsers:
			snap.users = append([]model.User(nil), s.users...)
		case ResSettings:
			snap.settings = s.settings
		}
	}
	return snap
}

// restore puts captured collections back. Caller holds s.mu.
func (s *Store) restore(snap stateSnapshot) {
	for r := range snap.touched {
		switch r {
		case ResEntries:
			s.entries = snap.entries
		case ResExpenses:
			s.expenses = snap.expenses
		case ResStock:
			s.stock = snap.stock
		case ResBranches:
			s.branches = snap.branches
		case ResUsers:
			s.users = snap.users
		case ResSettings:
			s.settings = snap.settings
		}
	}
}

// persist mirrors the named collections to the snapshot cache. Failures are
// logged, not surfaced: the cache is offline continuity, not correctness.
func (s *Store) persist(resources ...Resource) {
	if s.cache == nil {
		return
	}
	s.mu.RLock()
	entries := append([]model.Entry(nil), s.entries...)
	expenses := append([]model.Expense(nil), s.expenses...)
	stock := append([]model.StockItem(nil), s.stock...)
	branches := append([]model.Branch(nil), s.branches...)
	users := append([]model.User(nil), s.users...)
	settings := s.settings
	s.mu.RUnlock()

	for _, r := range resources {
		var err error
		switch r {
		case ResEntries:
			err = s.cache.SaveEntries(entries)
		case ResExpenses:
			err = s.cache.SaveExpenses(expenses)
		case ResStock:
			err = s.cache.SaveStock(stock)
		case ResBranches:
			err = s.cache.SaveBranches(branches)
		case ResUsers:
			err = s.cache.SaveUsers(users)
		case ResSettings:
			err = s.cache.SaveSettings(settings)
		}
		if err != nil {
			log.Printf("store: snapshot save %s failed: %v", resourceNames[r], err)
		}
	}
}

// applyBalanceDelta moves a branch's running balance. Caller holds s.mu.
// A branch missing from local state is skipped; the next sync brings the
// authoritative figure anyway.
func (s *Store) applyBalanceDelta(branchID string, delta decimal.Decimal) {
	if i := s.branchIndex(branchID); i >= 0 {
		s.branches[i].CurrentBalance = s.branches[i].CurrentBalance.Add(delta)
	}
}
