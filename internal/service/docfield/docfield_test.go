package docfield

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/calc"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

func TestGetNumericValue_ReadsOfferFields(t *testing.T) {
	a := New()
	a.Reset(storage.Offer{
		OriginalPrice: 1234500,
		SellingPrice:  1500000,
		InternalArea:  72.5,
		TotalArea:     "84.50 sq.m",
	})

	assert.Equal(t, 1234500.0, a.GetNumericValue(calc.FieldOriginalPrice))
	assert.Equal(t, 1500000.0, a.GetNumericValue(calc.FieldSellingPrice))
	assert.Equal(t, 72.5, a.GetNumericValue(calc.FieldInternalArea))
	assert.Equal(t, 84.5, a.GetNumericValue(calc.FieldTotalArea))
	assert.Zero(t, a.GetNumericValue(calc.Field("unknown")))
}

func TestSetFieldValue_OnlyDerivedTargetsAreWritable(t *testing.T) {
	a := New()
	a.Reset(storage.Offer{OriginalPrice: 1000000})

	a.SetFieldValue(calc.FieldRefund, "423788")
	a.SetFieldValue(calc.FieldTotalArea, "84.50 sq.m")
	a.SetFieldValue(calc.FieldTotalPayable, "AED 1,323,515")
	// Triggers are read-only through this interface.
	a.SetFieldValue(calc.FieldOriginalPrice, "5")

	offer := a.Offer()
	assert.Equal(t, 423788.0, offer.Refund)
	assert.Equal(t, "84.50 sq.m", offer.TotalArea)
	assert.Equal(t, "AED 1,323,515", offer.TotalPayable)
	assert.Equal(t, 1000000.0, offer.OriginalPrice)
}

func TestIsFieldPresentAndVisible_SwitchesOnUnitType(t *testing.T) {
	a := New()

	a.Reset(storage.Offer{UnitType: "apartment"})
	assert.True(t, a.IsFieldPresentAndVisible(calc.FieldInternalArea))
	assert.True(t, a.IsFieldPresentAndVisible(calc.FieldBalconyArea))
	assert.False(t, a.IsFieldPresentAndVisible(calc.FieldVillaInternalArea))
	assert.False(t, a.IsFieldPresentAndVisible(calc.FieldTerraceArea))

	a.Reset(storage.Offer{UnitType: "Villa"})
	assert.False(t, a.IsFieldPresentAndVisible(calc.FieldInternalArea))
	assert.True(t, a.IsFieldPresentAndVisible(calc.FieldVillaInternalArea))
	assert.True(t, a.IsFieldPresentAndVisible(calc.FieldTerraceArea))

	// Fields outside the area groups are always visible.
	assert.True(t, a.IsFieldPresentAndVisible(calc.FieldOriginalPrice))
}

func TestPropertyCategory_DefaultsToOffPlan(t *testing.T) {
	a := New()

	a.Reset(storage.Offer{Category: "ready"})
	assert.Equal(t, calc.CategoryReady, a.PropertyCategory())

	a.Reset(storage.Offer{Category: "offplan"})
	assert.Equal(t, calc.CategoryOffPlan, a.PropertyCategory())

	a.Reset(storage.Offer{})
	assert.Equal(t, calc.CategoryOffPlan, a.PropertyCategory())
}

func TestDerivedValues_SnapshotShape(t *testing.T) {
	a := New()
	a.Reset(storage.Offer{
		TotalArea:    "84.50 sq.m",
		Refund:       423788,
		Balance:      423788,
		Premium:      265500,
		ADGMFee:      24690,
		AgencyFee:    25926,
		TotalPayable: "AED 1,323,515",
	})

	got := a.DerivedValues()

	assert.Equal(t, map[string]any{
		"totalArea":    "84.50 sq.m",
		"refund":       423788.0,
		"balance":      423788.0,
		"premium":      265500.0,
		"adgmFee":      24690.0,
		"agencyFee":    25926.0,
		"totalPayable": "AED 1,323,515",
	}, got)
}

func TestLeadingNumber(t *testing.T) {
	assert.Equal(t, 84.5, leadingNumber("84.50 sq.m"))
	assert.Equal(t, -12.0, leadingNumber("-12"))
	assert.Equal(t, 0.0, leadingNumber("sq.m"))
	assert.Equal(t, 0.0, leadingNumber(""))
	assert.Equal(t, 250.0, leadingNumber("  250.00 sq.m"))
}
