package service

import (
	"context"
	"errors"

	"backoffice/internal/model"
	"backoffice/internal/store"
)

type UpdateSettingsRequest struct {
	ServiceTypes      []string `json:"serviceTypes" binding:"required,min=1"`
	ExpenseCategories []string `json:"expenseCategories" binding:"required,min=1"`
}

type SettingsService interface {
	Get() model.Settings
	Update(ctx context.Context, req UpdateSettingsRequest) error
}

type settingsService struct {
	st *store.Store
}

func NewSettingsService(st *store.Store) SettingsService {
	return &settingsService{st: st}
}

func (s *settingsService) Get() model.Settings {
	return s.st.Settings()
}

func (s *settingsService) Update(ctx context.Context, req UpdateSettingsRequest) error {
	for _, v := range append(append([]string(nil), req.ServiceTypes...), req.ExpenseCategories...) {
		if v == "" {
			return errors.New("settings lists cannot contain empty values")
		}
	}
	return s.st.UpdateSettings(ctx, model.Settings{
		ServiceTypes:      req.ServiceTypes,
		ExpenseCategories: req.ExpenseCategories,
	})
}
