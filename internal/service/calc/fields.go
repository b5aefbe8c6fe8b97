package calc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Field identifies one form field. The sets below are closed: a field is a
// trigger input, a derived output, or a display target, never two at once.
type Field string

const (
	// Trigger inputs. Changing any of them invalidates every derived field.
	FieldOriginalPrice       Field = "originalPrice"
	FieldSellingPrice        Field = "sellingPrice"
	FieldResaleClausePercent Field = "resaleClausePercent"
	FieldAmountPaidPercent   Field = "amountPaidPercent"
	FieldAmountPaidValue     Field = "amountPaidValue"
	FieldInternalArea        Field = "internalArea"
	FieldBalconyArea         Field = "balconyArea"
	FieldVillaInternalArea   Field = "villaInternalArea"
	FieldTerraceArea         Field = "terraceArea"
	FieldAdminFee            Field = "adminFee"
	FieldTerminationFee      Field = "terminationFee"
	FieldElectronicFee       Field = "electronicFee"
	FieldUnitType            Field = "unitType"
	FieldCategory            Field = "category"

	// Derived outputs.
	FieldTotalArea Field = "totalArea"
	FieldRefund    Field = "refund"
	FieldBalance   Field = "balance"
	FieldPremium   Field = "premium"
	FieldADGMFee   Field = "adgmFee"
	FieldAgencyFee Field = "agencyFee"

	// Display target for the recomputed total. Not a stored numeric field.
	FieldTotalPayable Field = "totalPayable"
)

type derivedField struct {
	id     Field
	inputs []Field
	// compute sees only trigger values; independence from other derived
	// fields is what makes a single fixed-order pass sufficient.
	compute func(get func(Field) float64, visible func(Field) bool) float64
}

// derivedFields is evaluated in this exact order on every full recompute.
var derivedFields = []derivedField{
	{
		id:     FieldTotalArea,
		inputs: []Field{FieldInternalArea, FieldBalconyArea, FieldVillaInternalArea, FieldTerraceArea},
		compute: func(get func(Field) float64, visible func(Field) bool) float64 {
			if visible(FieldVillaInternalArea) {
				return CalculateTotalArea(get(FieldVillaInternalArea), get(FieldTerraceArea))
			}
			return CalculateTotalArea(get(FieldInternalArea), get(FieldBalconyArea))
		},
	},
	{
		id:     FieldRefund,
		inputs: []Field{FieldOriginalPrice, FieldAmountPaidPercent, FieldAmountPaidValue},
		compute: func(get func(Field) float64, _ func(Field) bool) float64 {
			return CalculateRefund(get(FieldOriginalPrice), get(FieldAmountPaidPercent), get(FieldAmountPaidValue))
		},
	},
	{
		id:     FieldBalance,
		inputs: []Field{FieldOriginalPrice, FieldResaleClausePercent, FieldAmountPaidPercent, FieldAmountPaidValue},
		compute: func(get func(Field) float64, _ func(Field) bool) float64 {
			return CalculateBalance(get(FieldOriginalPrice), get(FieldResaleClausePercent), get(FieldAmountPaidPercent), get(FieldAmountPaidValue))
		},
	},
	{
		id:     FieldPremium,
		inputs: []Field{FieldSellingPrice, FieldOriginalPrice},
		compute: func(get func(Field) float64, _ func(Field) bool) float64 {
			return CalculatePremium(get(FieldSellingPrice), get(FieldOriginalPrice))
		},
	},
	{
		id:     FieldADGMFee,
		inputs: []Field{FieldOriginalPrice},
		compute: func(get func(Field) float64, _ func(Field) bool) float64 {
			return CalculateADGM(get(FieldOriginalPrice))
		},
	},
	{
		id:     FieldAgencyFee,
		inputs: []Field{FieldSellingPrice},
		compute: func(get func(Field) float64, _ func(Field) bool) float64 {
			return CalculateAgencyFees(get(FieldSellingPrice))
		},
	},
}

var triggerFields = []Field{
	FieldOriginalPrice,
	FieldSellingPrice,
	FieldResaleClausePercent,
	FieldAmountPaidPercent,
	FieldAmountPaidValue,
	FieldInternalArea,
	FieldBalconyArea,
	FieldVillaInternalArea,
	FieldTerraceArea,
	FieldAdminFee,
	FieldTerminationFee,
	FieldElectronicFee,
	FieldUnitType,
	FieldCategory,
}

// Total formulas per category. Derived fields may appear here because the
// total is recomputed only after the derived pass has finished.
var (
	offplanTotalFields = []Field{
		FieldRefund, FieldBalance, FieldPremium, FieldAdminFee,
		FieldADGMFee, FieldTerminationFee, FieldElectronicFee, FieldAgencyFee,
	}
	readyTotalFields = []Field{
		FieldSellingPrice, FieldAdminFee, FieldADGMFee,
		FieldTerminationFee, FieldElectronicFee, FieldAgencyFee,
	}
)

var derivedByID = func() map[Field]derivedField {
	m := make(map[Field]derivedField, len(derivedFields))
	for _, df := range derivedFields {
		m[df.id] = df
	}
	return m
}()

func init() {
	if err := verifyIndependence(); err != nil {
		panic(err)
	}
}

// verifyIndependence rejects any formula whose declared inputs include a
// derived field. Single-pass recompute is only correct while this holds.
func verifyIndependence() error {
	for _, df := range derivedFields {
		for _, in := range df.inputs {
			if _, ok := derivedByID[in]; ok {
				return fmt.Errorf("derived field %q depends on derived field %q", df.id, in)
			}
		}
	}
	return nil
}

// IsDerivedField reports whether id names a formula-driven output.
func IsDerivedField(id Field) bool {
	_, ok := derivedByID[id]
	return ok
}

// IsTriggerField reports whether id is one of the inputs that invalidate the
// derived set.
func IsTriggerField(id Field) bool {
	for _, f := range triggerFields {
		if f == id {
			return true
		}
	}
	return false
}

// DerivedFieldIDs returns the derived fields in recompute order.
func DerivedFieldIDs() []Field {
	ids := make([]Field, 0, len(derivedFields))
	for _, df := range derivedFields {
		ids = append(ids, df.id)
	}
	return ids
}

// CalculateTotalArea sums the two areas of the active group, keeping two
// decimals. Non-positive sums collapse to zero so the display stays empty.
func CalculateTotalArea(internal, secondary float64) float64 {
	sum := decimal.NewFromFloat(internal).Add(decimal.NewFromFloat(secondary))
	if sum.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// CalculateRefund prefers the absolute amount paid when present; otherwise
// the percentage of the original price. Monetary result, whole units.
func CalculateRefund(original, paidPercent, paidValue float64) float64 {
	if paidValue > 0 {
		return roundUnit(decimal.NewFromFloat(paidValue))
	}
	d := decimal.NewFromFloat(original).
		Mul(decimal.NewFromFloat(paidPercent)).
		Div(decimal.NewFromInt(100))
	return roundUnit(d)
}

// CalculateBalance is the amount still owed under the resale clause: the gap
// between the clause percentage and the effective paid percentage, priced
// against the original. Zero once the clause is satisfied.
func CalculateBalance(original, resalePercent, paidPercent, paidValue float64) float64 {
	if original == 0 || resalePercent == 0 {
		return 0
	}
	effective := decimal.NewFromFloat(paidPercent)
	if paidValue > 0 {
		effective = decimal.NewFromFloat(paidValue).
			Div(decimal.NewFromFloat(original)).
			Mul(decimal.NewFromInt(100))
	}
	clause := decimal.NewFromFloat(resalePercent)
	if effective.GreaterThanOrEqual(clause) {
		return 0
	}
	d := decimal.NewFromFloat(original).
		Mul(clause.Sub(effective)).
		Div(decimal.NewFromInt(100))
	return roundUnit(d)
}

// CalculatePremium may go negative on a below-original resale; no flooring.
func CalculatePremium(selling, original float64) float64 {
	return roundUnit(decimal.NewFromFloat(selling).Sub(decimal.NewFromFloat(original)))
}

// CalculateADGM is the registration fee: 2% of the original price.
func CalculateADGM(original float64) float64 {
	return roundUnit(decimal.NewFromFloat(original).Mul(decimal.NewFromFloat(0.02)))
}

// CalculateAgencyFees is 2% of the selling price plus 5% VAT on the fee.
func CalculateAgencyFees(selling float64) float64 {
	return roundUnit(decimal.NewFromFloat(selling).
		Mul(decimal.NewFromFloat(0.02)).
		Mul(decimal.NewFromFloat(1.05)))
}

// roundUnit rounds to the nearest whole currency unit, half away from zero.
func roundUnit(d decimal.Decimal) float64 {
	f, _ := d.Round(0).Float64()
	return f
}
