package expense

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

func Test_OnParse_ShouldNormalizeFields(t *testing.T) {
	f, err := Payload{
		Icon:     " 🍔 ",
		Amount:   "12,50",
		Category: " Food ",
		Date:     "2024-01-15",
		Note:     " lunch ",
	}.Parse()

	require.NoError(t, err)
	assert.Equal(t, "🍔", f.Icon)
	assert.True(t, decimal.RequireFromString("12.5").Equal(f.Amount))
	assert.Equal(t, "Food", f.Category)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), f.Date)
	assert.Equal(t, "lunch", f.Note)
}

func Test_OnParse_ShouldAcceptRFC3339Date(t *testing.T) {
	f, err := Payload{Amount: "10", Category: "Food", Date: "2024-01-15T22:30:00Z"}.Parse()

	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", FormatDate(f.Date))
}

func Test_OnParse_ShouldRejectBadPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload Payload
		field   string
	}{
		{"missing amount", Payload{Category: "Food", Date: "2024-01-01"}, "amount"},
		{"non-numeric amount", Payload{Amount: "ten", Category: "Food", Date: "2024-01-01"}, "amount"},
		{"negative amount", Payload{Amount: "-3", Category: "Food", Date: "2024-01-01"}, "amount"},
		{"zero amount", Payload{Amount: "0", Category: "Food", Date: "2024-01-01"}, "amount"},
		{"blank category", Payload{Amount: "3", Category: "  ", Date: "2024-01-01"}, "category"},
		{"missing date", Payload{Amount: "3", Category: "Food"}, "date"},
		{"unparseable date", Payload{Amount: "3", Category: "Food", Date: "01/15/2024"}, "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.payload.Parse()

			var vErr *customerr.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func Test_OnApply_ShouldKeepIdentity(t *testing.T) {
	rec := Record{ID: 3, Owner: 9, Category: "Old", Amount: decimal.NewFromInt(1)}

	updated := Fields{Category: "New", Amount: decimal.NewFromInt(2)}.Apply(rec)

	assert.Equal(t, int64(3), updated.ID)
	assert.Equal(t, int64(9), updated.Owner)
	assert.Equal(t, "New", updated.Category)
	assert.Equal(t, "", updated.Icon)
}
