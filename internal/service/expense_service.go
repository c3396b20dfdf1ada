package service

import (
	"context"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/store"
)

// DTOs

type CreateExpenseRequest struct {
	Category string `json:"category" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	BranchID string `json:"branchId" binding:"required"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

type ExpenseService interface {
	List(branchID string) []model.Expense
	Create(ctx context.Context, recordedBy string, req CreateExpenseRequest) (model.Expense, error)
	Delete(ctx context.Context, id string) error
}

type expenseService struct {
	st *store.Store
}

func NewExpenseService(st *store.Store) ExpenseService {
	return &expenseService{st: st}
}

func (s *expenseService) List(branchID string) []model.Expense {
	return s.st.ExpensesForBranch(branchID)
}

func (s *expenseService) Create(ctx context.Context, recordedBy string, req CreateExpenseRequest) (model.Expense, error) {
	amount, err := parseAmountField("amount", req.Amount)
	if err != nil {
		return model.Expense{}, err
	}
	if amount.IsZero() || amount.IsNegative() {
		return model.Expense{}, store.ErrInvalidAmount
	}
	// Business check before any network call: the branch cash box cannot go
	// negative from an expense.
	if branch, ok := s.st.BranchByID(req.BranchID); ok && branch.CurrentBalance.LessThan(amount) {
		return model.Expense{}, store.ErrInsufficientBalance
	}

	now := time.Now()
	date := req.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	expense := model.Expense{
		ID:         model.NewExpenseID(),
		Category:   req.Category,
		Amount:     amount,
		BranchID:   req.BranchID,
		Date:       date,
		Timestamp:  now,
		RecordedBy: recordedBy,
		Notes:      req.Notes,
	}

	if err := s.st.AddExpense(ctx, expense); err != nil {
		return model.Expense{}, err
	}
	return expense, nil
}

func (s *expenseService) Delete(ctx context.Context, id string) error {
	return s.st.DeleteExpense(ctx, id)
}
