package migrations

import "gorm.io/gorm"

var constraints = []struct {
	table string
	name  string
	check string
}{
	{"lists", "chk_lists_price", "price >= 0"},
	{"lists", "chk_lists_guest_caps", "owner_type <> 'guest' OR (cardinality(links) <= 2 AND cardinality(messages) <= 2)"},
	{"lists", "chk_lists_name", "length(trim(name)) > 0"},
	{"drafts", "chk_drafts_name", "draft_name = 'draft_' || list_name"},
	{"payments", "chk_payments_status", "status IN ('created', 'processing', 'captured', 'failed')"},
	{"payments", "chk_payments_flow", "flow IN ('draft', 'list')"},
}

// migration004Up adds check constraints mirroring the domain invariants
func migration004Up(db *gorm.DB) error {
	for _, c := range constraints {
		stmt := "ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.check + ")"
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration004Down drops the check constraints
func migration004Down(db *gorm.DB) error {
	for _, c := range constraints {
		if err := db.Exec("ALTER TABLE " + c.table + " DROP CONSTRAINT IF EXISTS " + c.name).Error; err != nil {
			return err
		}
	}
	return nil
}
