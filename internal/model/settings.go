package model

// Settings holds the configurable lists the back office edits at runtime.
type Settings struct {
	ServiceTypes      []string `json:"serviceTypes"`
	ExpenseCategories []string `json:"expenseCategories"`
}

// DefaultSettings seeds a fresh install before the first sync completes.
func DefaultSettings() Settings {
	return Settings{
		ServiceTypes: []string{
			ServiceTypeIDCard,
			ServiceTypePassport,
			"شهادة ميلاد",
			"فيش جنائي",
			ServiceTypeDebtSettlement,
		},
		ExpenseCategories: []string{"إيجار", "مرتبات", "كهرباء", "أدوات مكتبية", "نثريات"},
	}
}
