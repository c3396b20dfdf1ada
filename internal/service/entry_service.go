package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/store"
	"backoffice/internal/validation"

	"github.com/shopspring/decimal"
)

// DTOs

type CreateEntryRequest struct {
	ClientName    string `json:"clientName" binding:"required"`
	NationalID    string `json:"nationalId"`
	Phone         string `json:"phone"`
	ServiceType   string `json:"serviceType"`
	SpeedTier     string `json:"speedTier"`
	EntryDate     string `json:"entryDate"`
	AmountPaid    string `json:"amountPaid" binding:"required"`
	ServiceCost   string `json:"serviceCost" binding:"required"`
	BranchID      string `json:"branchId" binding:"required"`
	Barcode       string `json:"barcode"`
	BarcodeSource string `json:"barcodeSource"`

	ThirdPartyName string `json:"thirdPartyName"`
	ThirdPartyCost string `json:"thirdPartyCost"`

	ElectronicPayment bool   `json:"electronicPayment"`
	ElectronicMethod  string `json:"electronicMethod"`
	ElectronicAmount  string `json:"electronicAmount"`
}

type SettleRequest struct {
	ParentEntryID string `json:"parentEntryId" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
}

type EntryService interface {
	List(branchID, search string) []model.Entry
	Create(ctx context.Context, recordedBy string, req CreateEntryRequest) (model.Entry, error)
	Update(ctx context.Context, entry model.Entry) (model.Entry, error)
	Cancel(ctx context.Context, id string) error
	Deliver(ctx context.Context, id, deliveredBy string) error
	Settle(ctx context.Context, recordedBy string, req SettleRequest) (model.Entry, error)
	SettleThirdParty(ctx context.Context, id, recordedBy string) (model.Expense, error)
}

type entryService struct {
	st *store.Store
}

func NewEntryService(st *store.Store) EntryService {
	return &entryService{st: st}
}

// List returns entries visible to a branch, optionally filtered by a search
// term matched against client name, national ID, and barcode.
func (s *entryService) List(branchID, search string) []model.Entry {
	entries := s.st.EntriesForBranch(branchID)
	if search == "" {
		return entries
	}
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.ClientName), term) ||
			strings.Contains(e.NationalID, term) ||
			(e.Barcode != "" && strings.Contains(e.Barcode, term)) {
			out = append(out, e)
		}
	}
	return out
}

func parseAmountField(name, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

func (s *entryService) Create(ctx context.Context, recordedBy string, req CreateEntryRequest) (model.Entry, error) {
	amountPaid, err := parseAmountField("amountPaid", req.AmountPaid)
	if err != nil {
		return model.Entry{}, err
	}
	serviceCost, err := parseAmountField("serviceCost", req.ServiceCost)
	if err != nil {
		return model.Entry{}, err
	}
	thirdPartyCost, err := parseAmountField("thirdPartyCost", req.ThirdPartyCost)
	if err != nil {
		return model.Entry{}, err
	}
	electronicAmount, err := parseAmountField("electronicAmount", req.ElectronicAmount)
	if err != nil {
		return model.Entry{}, err
	}

	sub := validation.Submission{
		NationalID:        req.NationalID,
		ServiceType:       req.ServiceType,
		Phone:             req.Phone,
		ElectronicPayment: req.ElectronicPayment,
		ElectronicMethod:  req.ElectronicMethod,
		ElectronicAmount:  electronicAmount,
		AmountPaid:        amountPaid,
		SpeedTier:         req.SpeedTier,
		Barcode:           req.Barcode,
		BarcodeSource:     req.BarcodeSource,
	}
	if err := validation.ValidateSubmission(sub, func(code string) bool {
		return s.st.BarcodeOnAnotherEntry(code, "")
	}); err != nil {
		return model.Entry{}, err
	}

	now := time.Now()
	entryDate := req.EntryDate
	if entryDate == "" {
		entryDate = now.Format("2006-01-02")
	}
	entry := model.Entry{
		ID:                model.NewEntryID(),
		ClientName:        req.ClientName,
		NationalID:        req.NationalID,
		Phone:             req.Phone,
		ServiceType:       req.ServiceType,
		SpeedTier:         req.SpeedTier,
		EntryDate:         entryDate,
		AmountPaid:        amountPaid,
		ServiceCost:       serviceCost,
		RemainingAmount:   serviceCost.Sub(amountPaid),
		BranchID:          req.BranchID,
		Status:            model.EntryStatusActive,
		RecordedBy:        recordedBy,
		Timestamp:         now,
		Barcode:           req.Barcode,
		BarcodeSource:     req.BarcodeSource,
		ThirdPartyName:    req.ThirdPartyName,
		ThirdPartyCost:    thirdPartyCost,
		ElectronicPayment: req.ElectronicPayment,
		ElectronicMethod:  req.ElectronicMethod,
		ElectronicAmount:  electronicAmount,
	}

	if err := s.st.AddEntry(ctx, entry); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// Update replaces the stored entry wholesale, the way the forms submit it. The
// remaining amount is recomputed here so no caller can desynchronize it.
func (s *entryService) Update(ctx context.Context, entry model.Entry) (model.Entry, error) {
	if entry.ID == "" {
		return model.Entry{}, store.ErrEntryNotFound
	}
	entry.RemainingAmount = entry.ServiceCost.Sub(entry.AmountPaid)
	if err := s.st.UpdateEntry(ctx, entry); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// Cancel is a status change, never a physical delete.
func (s *entryService) Cancel(ctx context.Context, id string) error {
	entry, ok := s.st.FindEntry(id)
	if !ok {
		return store.ErrEntryNotFound
	}
	entry.Status = model.EntryStatusCancelled
	return s.st.UpdateEntry(ctx, entry)
}

func (s *entryService) Deliver(ctx context.Context, id, deliveredBy string) error {
	return s.st.DeliverOrder(ctx, id, deliveredBy)
}

func (s *entryService) Settle(ctx context.Context, recordedBy string, req SettleRequest) (model.Entry, error) {
	amount, err := parseAmountField("amount", req.Amount)
	if err != nil {
		return model.Entry{}, err
	}
	return s.st.SettleDebt(ctx, req.ParentEntryID, amount, recordedBy)
}

// SettleThirdParty pays out the entry's third-party cost, recording the
// matching expense against the entry's branch.
func (s *entryService) SettleThirdParty(ctx context.Context, id, recordedBy string) (model.Expense, error) {
	return s.st.SettleThirdParty(ctx, id, recordedBy)
}
