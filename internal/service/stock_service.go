package service

import (
	"context"
	"fmt"

	"backoffice/internal/model"
	"backoffice/internal/store"
)

// DTOs

type AddStockBatchRequest struct {
	Branch   string   `json:"branch" binding:"required"`
	Category string   `json:"category" binding:"required"`
	Barcodes []string `json:"barcodes" binding:"required,min=1"`
}

type UpdateStockStatusRequest struct {
	Barcode string `json:"barcode" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type StockService interface {
	List(branch string) []model.StockItem
	Counts(branch string) map[string]int
	AddBatch(ctx context.Context, recordedBy string, req AddStockBatchRequest) (string, error)
	UpdateStatus(ctx context.Context, by string, req UpdateStockStatusRequest) error
	UpdateItem(ctx context.Context, item model.StockItem) error
	Delete(ctx context.Context, barcode string) error
	AvailableBarcode(ctx context.Context, branch, category string) (string, error)
}

type stockService struct {
	st *store.Store
}

func NewStockService(st *store.Store) StockService {
	return &stockService{st: st}
}

func validCategory(category string) bool {
	for _, c := range model.StockCategories {
		if c == category {
			return true
		}
	}
	return false
}

func (s *stockService) List(branch string) []model.StockItem {
	items := s.st.Stock()
	if branch == "" {
		return items
	}
	out := make([]model.StockItem, 0, len(items))
	for _, item := range items {
		if item.Branch == branch {
			out = append(out, item)
		}
	}
	return out
}

// Counts reports the Available count per speed tier for a branch, the figure
// the entry form shows next to each tier.
func (s *stockService) Counts(branch string) map[string]int {
	counts := make(map[string]int, len(model.StockCategories))
	for _, category := range model.StockCategories {
		counts[category] = s.st.AvailableStockCount(branch, category)
	}
	return counts
}

func (s *stockService) AddBatch(ctx context.Context, recordedBy string, req AddStockBatchRequest) (string, error) {
	if !validCategory(req.Category) {
		return "", fmt.Errorf("unknown stock category %q", req.Category)
	}
	return s.st.AddStockBatch(ctx, req.Branch, req.Category, req.Barcodes, recordedBy)
}

func (s *stockService) UpdateStatus(ctx context.Context, by string, req UpdateStockStatusRequest) error {
	return s.st.UpdateStockStatus(ctx, req.Barcode, req.Status, by)
}

func (s *stockService) UpdateItem(ctx context.Context, item model.StockItem) error {
	if !validCategory(item.Category) {
		return fmt.Errorf("unknown stock category %q", item.Category)
	}
	return s.st.UpdateStockItem(ctx, item)
}

func (s *stockService) Delete(ctx context.Context, barcode string) error {
	return s.st.DeleteStockItem(ctx, barcode)
}

func (s *stockService) AvailableBarcode(ctx context.Context, branch, category string) (string, error) {
	if !validCategory(category) {
		return "", fmt.Errorf("unknown stock category %q", category)
	}
	return s.st.AvailableBarcode(ctx, branch, category)
}
