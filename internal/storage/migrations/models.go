package migrations

import (
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/payment"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

// AllModels returns every model owned by the schema, in creation order
func AllModels() []any {
	return []any{
		&user.User{},
		&list.List{},
		&draft.Draft{},
		&payment.Record{},
	}
}

// Tables returns the table names in drop order
func Tables() []string {
	return []string{"payments", "drafts", "lists", "users"}
}
