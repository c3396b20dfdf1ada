package service

import (
	"context"

	"backoffice/internal/model"
	"backoffice/internal/store"

	"github.com/google/uuid"
)

// DTOs

type AddBranchRequest struct {
	Name string `json:"name" binding:"required"`
}

type TransferRequest struct {
	FromBranchID string `json:"fromBranchId" binding:"required"`
	ToBranchID   string `json:"toBranchId" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
}

type BranchService interface {
	List() []model.Branch
	Add(ctx context.Context, req AddBranchRequest) (model.Branch, error)
	Delete(ctx context.Context, id string) error
	Transfer(ctx context.Context, recordedBy string, req TransferRequest) error
}

type branchService struct {
	st *store.Store
}

func NewBranchService(st *store.Store) BranchService {
	return &branchService{st: st}
}

func (s *branchService) List() []model.Branch {
	return s.st.Branches()
}

func (s *branchService) Add(ctx context.Context, req AddBranchRequest) (model.Branch, error) {
	branch := model.Branch{
		ID:   "BR-" + uuid.NewString()[:8],
		Name: req.Name,
	}
	if err := s.st.ManageBranch(ctx, store.OpAdd, branch); err != nil {
		return model.Branch{}, err
	}
	return branch, nil
}

func (s *branchService) Delete(ctx context.Context, id string) error {
	if _, ok := s.st.BranchByID(id); !ok {
		return store.ErrBranchNotFound
	}
	return s.st.ManageBranch(ctx, store.OpDelete, model.Branch{ID: id})
}

func (s *branchService) Transfer(ctx context.Context, recordedBy string, req TransferRequest) error {
	amount, err := parseAmountField("amount", req.Amount)
	if err != nil {
		return err
	}
	return s.st.BranchTransfer(ctx, req.FromBranchID, req.ToBranchID, amount, recordedBy)
}
