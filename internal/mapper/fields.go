package mapper

import (
	"fmt"
	"strings"
	"time"

	"backoffice/internal/gateway"

	"github.com/shopspring/decimal"
)

// Field-alias tables. Remote rows arrive with either the English camelCase keys
// the newer backend emits or the Arabic sheet headers the older one copies
// verbatim; each target field therefore carries an ordered candidate list and the
// first present key wins.

var entryAliases = map[string][]string{
	"id":                 {"id", "رقم العملية"},
	"clientName":         {"clientName", "اسم العميل"},
	"nationalId":         {"nationalId", "الرقم القومي"},
	"phone":              {"phone", "رقم الهاتف"},
	"serviceType":        {"serviceType", "نوع الخدمة"},
	"speedTier":          {"speedTier", "درجة السرعة"},
	"entryDate":          {"entryDate", "تاريخ العملية"},
	"amountPaid":         {"amountPaid", "المبلغ المدفوع"},
	"serviceCost":        {"serviceCost", "تكلفة الخدمة"},
	"remainingAmount":    {"remainingAmount", "المبلغ المتبقي"},
	"branchId":           {"branchId", "الفرع"},
	"status":             {"status", "الحالة"},
	"recordedBy":         {"recordedBy", "الموظف"},
	"timestamp":          {"timestamp", "وقت التسجيل"},
	"barcode":            {"barcode", "الباركود"},
	"barcodeSource":      {"barcodeSource", "مصدر الباركود"},
	"thirdPartyName":     {"thirdPartyName", "الجهة الخارجية"},
	"thirdPartyCost":     {"thirdPartyCost", "تكلفة الجهة الخارجية"},
	"thirdPartyPaid":     {"thirdPartyPaid", "تم سداد الجهة الخارجية"},
	"thirdPartyPaidDate": {"thirdPartyPaidDate", "تاريخ سداد الجهة الخارجية"},
	"electronicPayment":  {"electronicPayment", "دفع إلكتروني"},
	"electronicMethod":   {"electronicMethod", "وسيلة الدفع"},
	"electronicAmount":   {"electronicAmount", "المبلغ الإلكتروني"},
	"parentEntryId":      {"parentEntryId", "العملية الأصلية"},
	"deliveredAt":        {"deliveredAt", "تاريخ التسليم"},
}

var expenseAliases = map[string][]string{
	"id":         {"id", "رقم المصروف"},
	"category":   {"category", "الفئة"},
	"amount":     {"amount", "المبلغ"},
	"branchId":   {"branchId", "الفرع"},
	"date":       {"date", "التاريخ"},
	"timestamp":  {"timestamp", "وقت التسجيل"},
	"recordedBy": {"recordedBy", "الموظف"},
	"notes":      {"notes", "ملاحظات"},
}

var stockAliases = map[string][]string{
	"barcode":    {"barcode", "الباركود"},
	"category":   {"category", "الفئة"},
	"branch":     {"branch", "الفرع"},
	"status":     {"status", "الحالة"},
	"created_at": {"created_at", "createdAt", "تاريخ الإضافة"},
	"used_by":    {"used_by", "usedBy", "استخدم بواسطة"},
	"usage_date": {"usage_date", "usageDate", "تاريخ الاستخدام"},
	"order_id":   {"order_id", "orderId", "رقم الطلب"},
}

var branchAliases = map[string][]string{
	"id":      {"id", "كود الفرع"},
	"name":    {"name", "اسم الفرع"},
	"balance": {"Current_Balance", "currentBalance", "الرصيد الحالي"},
}

var userAliases = map[string][]string{
	"id":               {"id", "كود الموظف"},
	"name":             {"name", "الاسم"},
	"username":         {"username", "اسم المستخدم"},
	"password":         {"password", "كلمة المرور"},
	"role":             {"role", "الصلاحية"},
	"assignedBranchId": {"assignedBranchId", "الفرع المخصص"},
}

func lookup(row gateway.Row, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(row gateway.Row, keys []string) string {
	v, ok := lookup(row, keys)
	if !ok {
		return ""
	}
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		// Ids and barcodes come back numeric when the sheet column auto-typed.
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%v", value)
	case bool:
		if value {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", value)
	}
}

func pickDecimal(row gateway.Row, keys []string) decimal.Decimal {
	v, ok := lookup(row, keys)
	if !ok {
		return decimal.Zero
	}
	return ParseAmount(v)
}

func pickBool(row gateway.Row, keys []string) bool {
	v, ok := lookup(row, keys)
	if !ok {
		return false
	}
	return ParseBool(v)
}

func pickDate(row gateway.Row, keys []string) string {
	v, ok := lookup(row, keys)
	if !ok {
		return ""
	}
	return NormalizeDate(v)
}

func pickInt(row gateway.Row, keys []string) int {
	v, ok := lookup(row, keys)
	if !ok {
		return 0
	}
	return int(ParseAmount(v).IntPart())
}

func pickTime(row gateway.Row, keys []string) time.Time {
	v, ok := lookup(row, keys)
	if !ok {
		return time.Time{}
	}
	return ParseTimestamp(v)
}
