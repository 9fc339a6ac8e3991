package migrations

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

// DemoEmail owns the seeded demo list
const DemoEmail = "demo@giftlist.dev"

// DemoListName is the name of the seeded, already paid list
const DemoListName = "Demo Birthday"

// SeedData returns the demo owner and its paid list
func SeedData() (*user.User, *list.List) {
	owner := user.NewRegistered("demo-user", "Demo", DemoEmail, "")
	l := list.New(owner.Owner(), DemoListName,
		[]string{"https://www.example.com/wishlist", "https://www.example.org/cake"},
		[]string{"Happy birthday!", "See you at the party"},
		true)
	l.Price = 4
	return owner, l
}

// Seed inserts the demo data; existing rows are left untouched
func Seed(db *gorm.DB) error {
	owner, l := SeedData()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(owner).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error
	})
}

// Unseed removes the demo data
func Unseed(db *gorm.DB) error {
	queries := []string{
		"DELETE FROM drafts WHERE owner_email = ?",
		"DELETE FROM lists WHERE owner_email = ?",
		"DELETE FROM users WHERE email = ?",
	}
	for _, q := range queries {
		if err := db.Exec(q, DemoEmail).Error; err != nil {
			return err
		}
	}
	return nil
}
