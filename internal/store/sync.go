package store

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"backoffice/internal/gateway"
	"backoffice/internal/mapper"

	"golang.org/x/sync/errgroup"
)

// SyncAll fans out parallel reads over every remote resource, merges the mapped
// rows into current state (remote wins on id collision), and mirrors changed
// collections to the snapshot cache. A SyncAll arriving while one is already in
// flight is dropped, not queued. Individual fetch failures leave that resource's
// local collection untouched; SyncAll only errors when every fetch failed.
func (s *Store) SyncAll(ctx context.Context, privileged bool) error {
	if !s.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer s.syncing.Store(false)

	var (
		entryRows, expenseRows, stockRows  []gateway.Row
		branchRows, userRows, settingsRows []gateway.Row
		entryErr, expenseErr, stockErr     error
		branchErr, userErr, settingsErr    error
	)

	// Fetch errors are collected per resource instead of cancelling the group:
	// the fan-out is best-effort by design.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entryRows, entryErr = s.gw.Fetch(gctx, gateway.ActionGetData, url.Values{"sheet": {gateway.SheetEntries}})
		return nil
	})
	g.Go(func() error {
		expenseRows, expenseErr = s.gw.Fetch(gctx, gateway.ActionGetData, url.Values{"sheet": {gateway.SheetExpenses}})
		return nil
	})
	g.Go(func() error {
		stockRows, stockErr = s.gw.Fetch(gctx, gateway.ActionGetData, url.Values{"sheet": {gateway.SheetStock}})
		return nil
	})
	g.Go(func() error {
		branchRows, branchErr = s.gw.Fetch(gctx, gateway.ActionGetBranches, nil)
		return nil
	})
	if privileged {
		g.Go(func() error {
			userRows, userErr = s.gw.Fetch(gctx, gateway.ActionGetData, url.Values{"sheet": {gateway.SheetUsers}})
			return nil
		})
		g.Go(func() error {
			settingsRows, settingsErr = s.gw.Fetch(gctx, gateway.ActionGetData, url.Values{"sheet": {gateway.SheetSettings}})
			return nil
		})
	}
	_ = g.Wait()

	var changed []Resource
	s.mu.Lock()
	if entryErr == nil {
		merged := mapper.MergeEntries(s.entries, mapper.MapEntries(entryRows))
		if !mapper.SameEntries(s.entries, merged) {
			s.entries = merged
			changed = append(changed, ResEntries)
		}
	}
	if expenseErr == nil {
		merged := mapper.MergeExpenses(s.expenses, mapper.MapExpenses(expenseRows))
		if !mapper.SameExpenses(s.expenses, merged) {
			s.expenses = merged
			changed = append(changed, ResExpenses)
		}
	}
	if stockErr == nil {
		s.stock = mapper.MergeStock(s.stock, mapper.MapStock(stockRows))
		changed = append(changed, ResStock)
	}
	if branchErr == nil {
		if remote := mapper.MapBranches(branchRows); len(remote) > 0 {
			s.branches = remote
			changed = append(changed, ResBranches)
		}
	}
	if privileged && userErr == nil {
		if remote := mapper.MapUsers(userRows); len(remote) > 0 {
			s.users = remote
			changed = append(changed, ResUsers)
		}
	}
	if privileged && settingsErr == nil {
		if remote := mapper.MapSettings(settingsRows); len(remote.ServiceTypes) > 0 || len(remote.ExpenseCategories) > 0 {
			s.settings = remote
			changed = append(changed, ResSettings)
		}
	}
	s.mu.Unlock()

	for _, err := range []error{entryErr, expenseErr, stockErr, branchErr, userErr, settingsErr} {
		if err != nil {
			log.Printf("store: sync fetch failed: %v", err)
		}
	}

	if len(changed) > 0 {
		s.persist(changed...)
		s.notify("sync", "all")
	}

	if entryErr != nil && expenseErr != nil && stockErr != nil && branchErr != nil {
		return fmt.Errorf("sync failed: %w", entryErr)
	}
	return nil
}
