package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

func TestComputePrice(t *testing.T) {
	assert.Equal(t, int64(9), ComputePrice(2, 1, 3))
	assert.Equal(t, int64(0), ComputePrice(0, 0, 0))
}

func items(links, messages, images int) list.Items {
	var it list.Items
	for range links {
		it.Links = append(it.Links, "l")
	}
	for range messages {
		it.Messages = append(it.Messages, "m")
	}
	for range images {
		it.Images = append(it.Images, list.Image{ImageName: "i", URL: "u"})
	}
	return it
}

func TestCheckPayable(t *testing.T) {
	tests := []struct {
		name      string
		ownerType user.Type
		items     list.Items
		paid      bool
		wantErr   string
	}{
		{"guest", user.TypeGuest, items(6, 0, 0), false, "Guests cannot pay for lists"},
		{"already paid", user.TypeRegistered, items(6, 0, 0), true, "List is already paid"},
		{"too few items", user.TypeRegistered, items(2, 1, 1), false, "Add at least 5 items before paying"},
		{"price not above five", user.TypeRegistered, items(3, 2, 0), false, "Price must be greater than Five Rupees"},
		{"six items", user.TypeRegistered, items(4, 2, 0), false, ""},
		{"images count double", user.TypeRegistered, items(3, 1, 1), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPayable(tt.ownerType, tt.items, tt.paid)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, common.ErrPreconditionFailed)
			assert.Equal(t, tt.wantErr, common.MessageOf(err))
		})
	}
}

func TestParseFlow(t *testing.T) {
	f, err := ParseFlow("")
	assert.NoError(t, err)
	assert.Equal(t, FlowDraft, f)

	f, err = ParseFlow("list")
	assert.NoError(t, err)
	assert.Equal(t, FlowList, f)

	_, err = ParseFlow("subscription")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestReceipt(t *testing.T) {
	assert.Equal(t, "receipt_order_1700000000123", Receipt(time.UnixMilli(1700000000123)))
}
