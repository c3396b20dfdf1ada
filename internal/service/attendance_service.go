package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"backoffice/internal/gateway"
	"backoffice/internal/mapper"
	"backoffice/internal/model"
	"backoffice/internal/store"
)

// DTOs

type AttendanceRequest struct {
	Type string `json:"type" binding:"required,oneof=check_in check_out"`
}

type AttendanceState struct {
	CheckedIn bool   `json:"checkedIn"`
	Date      string `json:"date"`
}

// IPResolver stamps attendance records with the caller's public IP.
type IPResolver interface {
	Lookup(ctx context.Context) string
}

// StateCache remembers today's check-in state between restarts.
type StateCache interface {
	SetValue(key string, value any) error
	GetValue(key string, dest any) error
}

type AttendanceService interface {
	Record(ctx context.Context, userID, userName, branchID string, req AttendanceRequest) (model.AttendanceRecord, error)
	State(userID string) AttendanceState
	HRReport(ctx context.Context, from, to string) ([]model.HRReportRow, error)
}

type attendanceService struct {
	gw    store.Gateway
	ip    IPResolver
	cache StateCache
}

func NewAttendanceService(gw store.Gateway, ip IPResolver, cache StateCache) AttendanceService {
	return &attendanceService{gw: gw, ip: ip, cache: cache}
}

func attendanceKey(userID string) string {
	return "attendance_state:" + userID
}

// Record stamps a check-in/out with the public IP (best-effort) and pushes it
// through the attendance action. The local state only flips on confirmed
// success, so a failed push can simply be retried.
func (s *attendanceService) Record(ctx context.Context, userID, userName, branchID string, req AttendanceRequest) (model.AttendanceRecord, error) {
	now := time.Now()
	record := model.AttendanceRecord{
		UserID:    userID,
		UserName:  userName,
		BranchID:  branchID,
		Type:      req.Type,
		Date:      now.Format("2006-01-02"),
		Timestamp: now,
		IP:        gateway.FallbackIP,
	}
	if s.ip != nil {
		record.IP = s.ip.Lookup(ctx)
	}

	res, err := s.gw.Do(ctx, gateway.ActionAttendance, nil, record)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if !res.Success {
		return model.AttendanceRecord{}, fmt.Errorf("attendance rejected: %s", res.Message)
	}

	if s.cache != nil {
		state := AttendanceState{CheckedIn: req.Type == model.AttendanceCheckIn, Date: record.Date}
		if err := s.cache.SetValue(attendanceKey(userID), state); err != nil {
			log.Printf("service: attendance state save failed: %v", err)
		}
	}
	return record, nil
}

// State reports whether the user is currently checked in. A stale state from a
// previous day reads as checked out.
func (s *attendanceService) State(userID string) AttendanceState {
	if s.cache == nil {
		return AttendanceState{}
	}
	var state AttendanceState
	if err := s.cache.GetValue(attendanceKey(userID), &state); err != nil {
		return AttendanceState{}
	}
	if state.Date != time.Now().Format("2006-01-02") {
		return AttendanceState{Date: state.Date}
	}
	return state
}

func (s *attendanceService) HRReport(ctx context.Context, from, to string) ([]model.HRReportRow, error) {
	params := url.Values{}
	if from != "" {
		params.Set("from", from)
	}
	if to != "" {
		params.Set("to", to)
	}
	rows, err := s.gw.Fetch(ctx, gateway.ActionGetHRReport, params)
	if err != nil {
		return nil, err
	}
	return mapper.MapHRReport(rows), nil
}
