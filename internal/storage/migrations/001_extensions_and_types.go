package migrations

import "gorm.io/gorm"

// migration001Up creates the enum types used by owner and draft columns
func migration001Up(db *gorm.DB) error {
	statements := []string{
		`DO $$ BEGIN
            CREATE TYPE owner_type AS ENUM ('user', 'guest');
        EXCEPTION WHEN duplicate_object THEN NULL;
        END $$`,
		`DO $$ BEGIN
            CREATE TYPE draft_status AS ENUM ('unpaid', 'paid', 'inconsistent');
        EXCEPTION WHEN duplicate_object THEN NULL;
        END $$`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration001Down drops the enum types
func migration001Down(db *gorm.DB) error {
	if err := db.Exec("DROP TYPE IF EXISTS draft_status CASCADE").Error; err != nil {
		return err
	}
	return db.Exec("DROP TYPE IF EXISTS owner_type CASCADE").Error
}
