package store

import (
	"context"
	"net/url"
	"time"

	"backoffice/internal/gateway"
	"backoffice/internal/model"
)

// stockTransitions are the allowed status moves: consumption, damage report,
// and the admin override that returns a damaged form to circulation.
var stockTransitions = map[string]map[string]bool{
	model.StockStatusAvailable: {
		model.StockStatusUsed:  true,
		model.StockStatusError: true,
	},
	model.StockStatusError: {
		model.StockStatusAvailable: true,
	},
}

// AddStockBatch registers a batch of pre-printed forms for a branch.
func (s *Store) AddStockBatch(ctx context.Context, branch, category string, barcodes []string, recordedBy string) (string, error) {
	batchID := model.NewStockBatchID()
	now := time.Now()
	items := make([]model.StockItem, 0, len(barcodes))
	for _, code := range barcodes {
		if code == "" {
			continue
		}
		items = append(items, model.StockItem{
			Barcode:   code,
			Category:  category,
			Branch:    branch,
			Status:    model.StockStatusAvailable,
			CreatedAt: now,
			OrderID:   batchID,
		})
	}
	if len(items) == 0 {
		return "", ErrStockItemNotFound
	}

	err := s.run(ctx, mutation{
		name:      "addStockBatch",
		resources: []Resource{ResStock},
		apply: func() error {
			s.stock = append(s.stock, items...)
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionAddStockBatch, nil, map[string]any{
				"batchId":    batchID,
				"branch":     branch,
				"category":   category,
				"barcodes":   barcodes,
				"recordedBy": recordedBy,
			})
		},
	})
	if err != nil {
		return "", err
	}
	return batchID, nil
}

// UpdateStockStatus performs one guarded status transition.
func (s *Store) UpdateStockStatus(ctx context.Context, barcode, newStatus, by string) error {
	item, ok := s.FindStockItem(barcode)
	if !ok {
		return ErrStockItemNotFound
	}
	if !stockTransitions[item.Status][newStatus] {
		return ErrInvalidStockTransition
	}

	return s.run(ctx, mutation{
		name:      "updateStockStatus",
		resources: []Resource{ResStock},
		apply: func() error {
			i := s.stockIndex(barcode)
			if i < 0 {
				return ErrStockItemNotFound
			}
			s.stock[i].Status = newStatus
			if newStatus == model.StockStatusUsed {
				s.stock[i].UsedBy = by
				s.stock[i].UsageDate = time.Now().Format("2006-01-02")
			} else {
				s.stock[i].UsedBy = ""
				s.stock[i].UsageDate = ""
				s.stock[i].OrderID = ""
			}
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionUpdateStockStatus, nil, map[string]string{
				"barcode": barcode,
				"status":  newStatus,
				"usedBy":  by,
			})
		},
	})
}

// UpdateStockItem replaces an item's editable fields wholesale.
func (s *Store) UpdateStockItem(ctx context.Context, item model.StockItem) error {
	return s.run(ctx, mutation{
		name:      "updateStockItem",
		resources: []Resource{ResStock},
		apply: func() error {
			i := s.stockIndex(item.Barcode)
			if i < 0 {
				return ErrStockItemNotFound
			}
			s.stock[i] = item
			return nil
		},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionUpdateStockItem, nil, item)
		},
	})
}

// DeleteStockItem is conservative, like expense deletion.
func (s *Store) DeleteStockItem(ctx context.Context, barcode string) error {
	if _, ok := s.FindStockItem(barcode); !ok {
		return ErrStockItemNotFound
	}
	return s.run(ctx, mutation{
		name:      "deleteStockItem",
		resources: []Resource{ResStock},
		confirm: func(ctx context.Context) (gateway.WriteResult, error) {
			return s.gw.Do(ctx, gateway.ActionDeleteStockItem, nil, map[string]string{"barcode": barcode})
		},
		commit: func() {
			if i := s.stockIndex(barcode); i >= 0 {
				s.stock = append(s.stock[:i], s.stock[i+1:]...)
			}
		},
	})
}

// AvailableBarcode asks the backend for the next free barcode of a speed tier.
// The local count is checked first so an empty tier answers immediately with
// ErrEmptyStock instead of a round-trip. The item is not consumed here; it
// transitions to Used only when the service entry that carries it is submitted.
func (s *Store) AvailableBarcode(ctx context.Context, branch, category string) (string, error) {
	if s.AvailableStockCount(branch, category) == 0 {
		return "", ErrEmptyStock
	}

	res, err := s.gw.Do(ctx, gateway.ActionGetAvailableBarcode, url.Values{
		"branch":   {branch},
		"category": {category},
	}, nil)
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", &RemoteError{Message: res.Message}
	}
	barcode, _ := res.Fields["barcode"].(string)
	if barcode == "" {
		return "", ErrEmptyStock
	}
	return barcode, nil
}
