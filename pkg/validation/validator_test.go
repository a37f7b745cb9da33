package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bakery/pkg/errorbank"
)

type sample struct {
	Name     string  `json:"name" validate:"required"`
	Quantity *int    `json:"quantity" validate:"required,gte=1"`
	Date     string  `json:"date" validate:"omitempty,isodate"`
	Status   *string `json:"status" validate:"omitempty,oneof=Pending Completed"`
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestStructValid(t *testing.T) {
	t.Parallel()

	v := New()
	require.NoError(t, v.Struct(sample{Name: "Ada", Quantity: intPtr(2), Date: "2024-01-15", Status: strPtr("Pending")}))
}

func TestStructMissingFields(t *testing.T) {
	t.Parallel()

	err := New().Struct(sample{})
	require.Error(t, err)

	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
	assert.Equal(t, "missing required fields", appErr.Message())
	assert.Equal(t, "is required", appErr.Details()["name"])
	assert.Equal(t, "is required", appErr.Details()["quantity"])
}

func TestStructRuleFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      sample
		field   string
		message string
	}{
		{"zero quantity", sample{Name: "a", Quantity: intPtr(0)}, "quantity", "quantity must be at least 1"},
		{"negative quantity", sample{Name: "a", Quantity: intPtr(-3)}, "quantity", "quantity must be at least 1"},
		{"bad date", sample{Name: "a", Quantity: intPtr(1), Date: "15/01/2024"}, "date", "date must be a date in YYYY-MM-DD format"},
		{"bad status", sample{Name: "a", Quantity: intPtr(1), Status: strPtr("Shipped")}, "status", "status must be one of Pending Completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Struct(tt.in)
			require.Error(t, err)
			appErr := errorbank.From(err)
			assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
			assert.Equal(t, tt.message, appErr.Message())
			assert.Contains(t, appErr.Details(), tt.field)
		})
	}
}

func TestStructNotBlank(t *testing.T) {
	t.Parallel()

	type patch struct {
		Item *string `json:"item" validate:"omitnil,notblank"`
	}

	v := New()
	require.NoError(t, v.Struct(patch{}))
	require.NoError(t, v.Struct(patch{Item: strPtr("Cake")}))

	appErr := errorbank.From(v.Struct(patch{Item: strPtr("   ")}))
	require.NotNil(t, appErr)
	assert.Equal(t, "item must not be blank", appErr.Message())
}
