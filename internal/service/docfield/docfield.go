package docfield

import (
	"strconv"
	"strings"
	"sync"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/calc"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

// Accessor is the server's stand-in for the browser form: a transient working
// copy of the current offer that the calculation engine reads trigger values
// from and writes derived values into. The host resets it from the store
// before a recompute pass and persists the derived slice afterwards.
type Accessor struct {
	mu    sync.Mutex
	offer storage.Offer
}

func New() *Accessor {
	return &Accessor{}
}

// Reset replaces the working copy.
func (a *Accessor) Reset(offer storage.Offer) {
	a.mu.Lock()
	a.offer = offer
	a.mu.Unlock()
}

// Offer returns the current working copy.
func (a *Accessor) Offer() storage.Offer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offer
}

// DerivedValues snapshots the derived slice of the working copy, in the shape
// SaveCurrentOffer accepts.
func (a *Accessor) DerivedValues() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return map[string]any{
		"totalArea":    a.offer.TotalArea,
		"refund":       a.offer.Refund,
		"balance":      a.offer.Balance,
		"premium":      a.offer.Premium,
		"adgmFee":      a.offer.ADGMFee,
		"agencyFee":    a.offer.AgencyFee,
		"totalPayable": a.offer.TotalPayable,
	}
}

func (a *Accessor) GetNumericValue(field calc.Field) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch field {
	case calc.FieldOriginalPrice:
		return a.offer.OriginalPrice
	case calc.FieldSellingPrice:
		return a.offer.SellingPrice
	case calc.FieldResaleClausePercent:
		return a.offer.ResaleClausePercent
	case calc.FieldAmountPaidPercent:
		return a.offer.AmountPaidPercent
	case calc.FieldAmountPaidValue:
		return a.offer.AmountPaidValue
	case calc.FieldInternalArea:
		return a.offer.InternalArea
	case calc.FieldBalconyArea:
		return a.offer.BalconyArea
	case calc.FieldVillaInternalArea:
		return a.offer.VillaInternalArea
	case calc.FieldTerraceArea:
		return a.offer.TerraceArea
	case calc.FieldAdminFee:
		return a.offer.AdminFee
	case calc.FieldTerminationFee:
		return a.offer.TerminationFee
	case calc.FieldElectronicFee:
		return a.offer.ElectronicFee
	case calc.FieldTotalArea:
		return leadingNumber(a.offer.TotalArea)
	case calc.FieldRefund:
		return a.offer.Refund
	case calc.FieldBalance:
		return a.offer.Balance
	case calc.FieldPremium:
		return a.offer.Premium
	case calc.FieldADGMFee:
		return a.offer.ADGMFee
	case calc.FieldAgencyFee:
		return a.offer.AgencyFee
	}
	return 0
}

func (a *Accessor) SetFieldValue(field calc.Field, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch field {
	case calc.FieldTotalArea:
		a.offer.TotalArea = value
	case calc.FieldRefund:
		a.offer.Refund = leadingNumber(value)
	case calc.FieldBalance:
		a.offer.Balance = leadingNumber(value)
	case calc.FieldPremium:
		a.offer.Premium = leadingNumber(value)
	case calc.FieldADGMFee:
		a.offer.ADGMFee = leadingNumber(value)
	case calc.FieldAgencyFee:
		a.offer.AgencyFee = leadingNumber(value)
	case calc.FieldTotalPayable:
		a.offer.TotalPayable = value
	}
	// Writes to anything else are silently dropped, same as a missing
	// display target in the browser.
}

// IsFieldPresentAndVisible mirrors the form's area-group switching: the villa
// group shows for villa units, the standard group otherwise.
func (a *Accessor) IsFieldPresentAndVisible(field calc.Field) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	villa := strings.EqualFold(a.offer.UnitType, "villa")
	switch field {
	case calc.FieldVillaInternalArea, calc.FieldTerraceArea:
		return villa
	case calc.FieldInternalArea, calc.FieldBalconyArea:
		return !villa
	}
	return true
}

// PropertyCategory reads the offer's transaction category, off-plan unless
// the offer explicitly says ready.
func (a *Accessor) PropertyCategory() calc.Category {
	a.mu.Lock()
	defer a.mu.Unlock()

	if strings.EqualFold(a.offer.Category, string(calc.CategoryReady)) {
		return calc.CategoryReady
	}
	return calc.CategoryOffPlan
}

// leadingNumber parses the numeric prefix of a display string, zero when
// there is none. "84.50 sq.m" reads as 84.5.
func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
