package gateway

// Action discriminator values understood by the spreadsheet backend. The backend
// exposes a single endpoint; behavior is selected by the `action` query parameter.
const (
	ActionLogin               = "login"
	ActionGetData             = "getData"
	ActionAddRow              = "addRow"
	ActionUpdateEntry         = "updateEntry"
	ActionGetAvailableBarcode = "getAvailableBarcode"
	ActionAddStockBatch       = "addStockBatch"
	ActionUpdateStockStatus   = "updateStockStatus"
	ActionUpdateStockItem     = "updateStockItem"
	ActionDeleteStockItem     = "deleteStockItem"
	ActionAttendance          = "attendance"
	ActionDeliverOrder        = "deliverOrder"
	ActionGetUserLogs         = "getUserLogs"
	ActionGetBranches         = "getBranches"
	ActionBranchTransfer      = "branchTransfer"
	ActionDeleteExpense       = "deleteExpense"
	ActionManageUsers         = "manageUsers"
	ActionManageBranches      = "manageBranches"
	ActionUpdateSettings      = "updateSettings"
	ActionGetHRReport         = "getHRReport"
)

// Sheet names for ActionGetData reads.
const (
	SheetEntries  = "Entries"
	SheetExpenses = "Expenses"
	SheetStock    = "Stock"
	SheetUsers    = "Users"
	SheetSettings = "Settings"
)
