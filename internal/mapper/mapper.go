package mapper

import (
	"sort"

	"backoffice/internal/gateway"
	"backoffice/internal/model"
)

// MapEntry normalizes one remote row into the local entry shape.
func MapEntry(row gateway.Row) model.Entry {
	return model.Entry{
		ID:                 pickString(row, entryAliases["id"]),
		ClientName:         pickString(row, entryAliases["clientName"]),
		NationalID:         ToEnglishDigits(pickString(row, entryAliases["nationalId"])),
		Phone:              ToEnglishDigits(pickString(row, entryAliases["phone"])),
		ServiceType:        pickString(row, entryAliases["serviceType"]),
		SpeedTier:          pickString(row, entryAliases["speedTier"]),
		EntryDate:          pickDate(row, entryAliases["entryDate"]),
		AmountPaid:         pickDecimal(row, entryAliases["amountPaid"]),
		ServiceCost:        pickDecimal(row, entryAliases["serviceCost"]),
		RemainingAmount:    pickDecimal(row, entryAliases["remainingAmount"]),
		BranchID:           pickString(row, entryAliases["branchId"]),
		Status:             pickString(row, entryAliases["status"]),
		RecordedBy:         pickString(row, entryAliases["recordedBy"]),
		Timestamp:          pickTime(row, entryAliases["timestamp"]),
		Barcode:            pickString(row, entryAliases["barcode"]),
		BarcodeSource:      pickString(row, entryAliases["barcodeSource"]),
		ThirdPartyName:     pickString(row, entryAliases["thirdPartyName"]),
		ThirdPartyCost:     pickDecimal(row, entryAliases["thirdPartyCost"]),
		ThirdPartyPaid:     pickBool(row, entryAliases["thirdPartyPaid"]),
		ThirdPartyPaidDate: pickDate(row, entryAliases["thirdPartyPaidDate"]),
		ElectronicPayment:  pickBool(row, entryAliases["electronicPayment"]),
		ElectronicMethod:   pickString(row, entryAliases["electronicMethod"]),
		ElectronicAmount:   pickDecimal(row, entryAliases["electronicAmount"]),
		ParentEntryID:      pickString(row, entryAliases["parentEntryId"]),
		DeliveredAt:        pickDate(row, entryAliases["deliveredAt"]),
	}
}

func MapExpense(row gateway.Row) model.Expense {
	return model.Expense{
		ID:         pickString(row, expenseAliases["id"]),
		Category:   pickString(row, expenseAliases["category"]),
		Amount:     pickDecimal(row, expenseAliases["amount"]),
		BranchID:   pickString(row, expenseAliases["branchId"]),
		Date:       pickDate(row, expenseAliases["date"]),
		Timestamp:  pickTime(row, expenseAliases["timestamp"]),
		RecordedBy: pickString(row, expenseAliases["recordedBy"]),
		Notes:      pickString(row, expenseAliases["notes"]),
	}
}

func MapStockItem(row gateway.Row) model.StockItem {
	return model.StockItem{
		Barcode:   pickString(row, stockAliases["barcode"]),
		Category:  pickString(row, stockAliases["category"]),
		Branch:    pickString(row, stockAliases["branch"]),
		Status:    pickString(row, stockAliases["status"]),
		CreatedAt: pickTime(row, stockAliases["created_at"]),
		UsedBy:    pickString(row, stockAliases["used_by"]),
		UsageDate: pickDate(row, stockAliases["usage_date"]),
		OrderID:   pickString(row, stockAliases["order_id"]),
	}
}

func MapBranch(row gateway.Row) model.Branch {
	return model.Branch{
		ID:             pickString(row, branchAliases["id"]),
		Name:           pickString(row, branchAliases["name"]),
		CurrentBalance: pickDecimal(row, branchAliases["balance"]),
	}
}

func MapUser(row gateway.Row) model.User {
	return model.User{
		ID:               pickString(row, userAliases["id"]),
		Name:             pickString(row, userAliases["name"]),
		Username:         pickString(row, userAliases["username"]),
		Password:         pickString(row, userAliases["password"]),
		Role:             pickString(row, userAliases["role"]),
		AssignedBranchID: pickString(row, userAliases["assignedBranchId"]),
	}
}

// MapEntries maps a read result, dropping id-less rows and deduplicating by id
// (last occurrence wins, mirroring how the sheet overwrites rows).
func MapEntries(rows []gateway.Row) []model.Entry {
	byID := make(map[string]model.Entry, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		e := MapEntry(row)
		if e.ID == "" {
			continue
		}
		if _, seen := byID[e.ID]; !seen {
			order = append(order, e.ID)
		}
		byID[e.ID] = e
	}
	out := make([]model.Entry, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func MapExpenses(rows []gateway.Row) []model.Expense {
	byID := make(map[string]model.Expense, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		e := MapExpense(row)
		if e.ID == "" {
			continue
		}
		if _, seen := byID[e.ID]; !seen {
			order = append(order, e.ID)
		}
		byID[e.ID] = e
	}
	out := make([]model.Expense, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func MapStock(rows []gateway.Row) []model.StockItem {
	out := make([]model.StockItem, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		item := MapStockItem(row)
		if item.Barcode == "" || seen[item.Barcode] {
			continue
		}
		seen[item.Barcode] = true
		out = append(out, item)
	}
	return out
}

func MapBranches(rows []gateway.Row) []model.Branch {
	out := make([]model.Branch, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		b := MapBranch(row)
		if b.ID == "" || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out
}

func MapUsers(rows []gateway.Row) []model.User {
	out := make([]model.User, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		u := MapUser(row)
		if u.ID == "" || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}

// MapSettings folds the settings sheet (one row per list item) into the two
// configurable lists. Unknown list names are ignored.
func MapSettings(rows []gateway.Row) model.Settings {
	var s model.Settings
	for _, row := range rows {
		list := pickString(row, []string{"list", "القائمة"})
		value := pickString(row, []string{"value", "القيمة"})
		if value == "" {
			continue
		}
		switch list {
		case "serviceTypes", "أنواع الخدمات":
			s.ServiceTypes = append(s.ServiceTypes, value)
		case "expenseCategories", "فئات المصروفات":
			s.ExpenseCategories = append(s.ExpenseCategories, value)
		}
	}
	return s
}

var hrReportAliases = map[string][]string{
	"userId":       {"userId", "كود الموظف"},
	"userName":     {"userName", "الاسم"},
	"branchId":     {"branchId", "الفرع"},
	"daysPresent":  {"daysPresent", "أيام الحضور"},
	"daysAbsent":   {"daysAbsent", "أيام الغياب"},
	"lateArrivals": {"lateArrivals", "مرات التأخير"},
}

// MapHRReport normalizes the aggregated attendance report rows.
func MapHRReport(rows []gateway.Row) []model.HRReportRow {
	out := make([]model.HRReportRow, 0, len(rows))
	for _, row := range rows {
		r := model.HRReportRow{
			UserID:       pickString(row, hrReportAliases["userId"]),
			UserName:     pickString(row, hrReportAliases["userName"]),
			BranchID:     pickString(row, hrReportAliases["branchId"]),
			DaysPresent:  pickInt(row, hrReportAliases["daysPresent"]),
			DaysAbsent:   pickInt(row, hrReportAliases["daysAbsent"]),
			LateArrivals: pickInt(row, hrReportAliases["lateArrivals"]),
		}
		if r.UserID == "" && r.UserName == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// mergeByKey unions local and remote records keyed by id. The remote copy wins
// unconditionally on collision: once a round-trip completes, the server's copy is
// authoritative and any lost optimistic update is dropped.
func mergeByKey[T any](local, remote []T, key func(T) string) []T {
	out := make([]T, 0, len(local)+len(remote))
	remoteIDs := make(map[string]bool, len(remote))
	for _, r := range remote {
		remoteIDs[key(r)] = true
		out = append(out, r)
	}
	for _, l := range local {
		if !remoteIDs[key(l)] {
			out = append(out, l)
		}
	}
	return out
}

// MergeEntries merges remote entries over local ones and orders the result most
// recent first (ties broken by id so the order is deterministic).
func MergeEntries(local, remote []model.Entry) []model.Entry {
	merged := mergeByKey(local, remote, func(e model.Entry) string { return e.ID })
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.After(merged[j].Timestamp)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}

func MergeExpenses(local, remote []model.Expense) []model.Expense {
	merged := mergeByKey(local, remote, func(e model.Expense) string { return e.ID })
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.After(merged[j].Timestamp)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}

func MergeStock(local, remote []model.StockItem) []model.StockItem {
	merged := mergeByKey(local, remote, func(s model.StockItem) string { return s.Barcode })
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Barcode < merged[j].Barcode })
	return merged
}

// SameEntries compares two entry collections by the id/timestamp/status triple.
// When it holds, callers keep the existing slice reference so downstream
// consumers see no spurious change.
func SameEntries(a, b []model.Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].Timestamp.Equal(b[i].Timestamp) || a[i].Status != b[i].Status {
			return false
		}
	}
	return true
}

// SameExpenses compares by the id/timestamp pair.
func SameExpenses(a, b []model.Expense) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].Timestamp.Equal(b[i].Timestamp) {
			return false
		}
	}
	return true
}
