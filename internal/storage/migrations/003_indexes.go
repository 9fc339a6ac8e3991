package migrations

import "gorm.io/gorm"

var indexes = []struct {
	name string
	ddl  string
}{
	{"idx_users_type", "CREATE INDEX IF NOT EXISTS idx_users_type ON users(type)"},
	{"idx_lists_owner", "CREATE INDEX IF NOT EXISTS idx_lists_owner ON lists(owner_email, created_at)"},
	{"idx_lists_paid", "CREATE INDEX IF NOT EXISTS idx_lists_paid ON lists(owner_email, name) WHERE paid"},
	{"idx_drafts_status", "CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status) WHERE status <> 'paid'"},
	{"idx_payments_owner", "CREATE INDEX IF NOT EXISTS idx_payments_owner ON payments(owner_email, list_name)"},
}

// migration003Up creates lookup indexes beyond the unique keys declared on the models
func migration003Up(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec(idx.ddl).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration003Down drops the lookup indexes
func migration003Down(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + idx.name).Error; err != nil {
			return err
		}
	}
	return nil
}
