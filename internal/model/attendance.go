package model

import "time"

// Attendance action types
const (
	AttendanceCheckIn  = "check_in"
	AttendanceCheckOut = "check_out"
)

// AttendanceRecord stamps a staff check-in/out with the client's public IP
// (best-effort, "0.0.0.0" when the lookup fails).
type AttendanceRecord struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	BranchID  string    `json:"branchId"`
	Type      string    `json:"type"` // check_in, check_out
	Date      string    `json:"date"` // YYYY-MM-DD
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
}

// HRReportRow is one aggregated line of the attendance report the backend computes.
type HRReportRow struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	BranchID     string `json:"branchId"`
	DaysPresent  int    `json:"daysPresent"`
	DaysAbsent   int    `json:"daysAbsent"`
	LateArrivals int    `json:"lateArrivals"`
}
