package calc

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryOffPlan Category = "offplan"
	CategoryReady   Category = "ready"
)

// FieldAccessor is the host's view of the form. Missing or non-numeric
// fields read as zero, writes to unknown targets are dropped silently.
type FieldAccessor interface {
	GetNumericValue(field Field) float64
	SetFieldValue(field Field, value string)
	IsFieldPresentAndVisible(field Field) bool
}

// CategorySource is read once per recompute pass.
type CategorySource interface {
	PropertyCategory() Category
}

// LockRegistry answers whether a derived field is manually overridden.
type LockRegistry interface {
	IsFieldLocked(fieldID string) bool
}

// Engine keeps derived outputs consistent with trigger inputs without
// touching locked fields.
type Engine struct {
	log      *slog.Logger
	fields   FieldAccessor
	locks    LockRegistry
	category CategorySource

	debounce *Debouncer
	persist  func()
}

// NewEngine wires the engine to its collaborators. persist, when non-nil, is
// the debounced "write the derived values back to the store" step; window is
// its coalescing interval.
func NewEngine(log *slog.Logger, fields FieldAccessor, locks LockRegistry, category CategorySource, persist func(), window time.Duration) *Engine {
	return &Engine{
		log:      log,
		fields:   fields,
		locks:    locks,
		category: category,
		debounce: NewDebouncer(window),
		persist:  persist,
	}
}

// RecomputeField evaluates one derived field. Locked fields are left exactly
// as they are; unknown field ids do nothing.
func (e *Engine) RecomputeField(fieldID Field) {
	df, ok := derivedByID[fieldID]
	if !ok {
		return
	}
	if e.locks.IsFieldLocked(string(fieldID)) {
		return
	}

	val := df.compute(e.fields.GetNumericValue, e.fields.IsFieldPresentAndVisible)

	if fieldID == FieldTotalArea {
		if val == 0 {
			e.fields.SetFieldValue(fieldID, "")
		} else {
			e.fields.SetFieldValue(fieldID, FormatArea(val))
		}
		return
	}

	e.fields.SetFieldValue(fieldID, strconv.FormatFloat(val, 'f', -1, 64))
}

// RecomputeAll runs every derived field in the fixed catalogue order, then
// the total. One pass is enough: no formula reads another derived field.
func (e *Engine) RecomputeAll() {
	for _, df := range derivedFields {
		e.RecomputeField(df.id)
	}
	e.RecomputeTotal()
}

// RecomputeTotal picks the category's formula, writes the formatted sum to
// the display target and returns the numeric value.
func (e *Engine) RecomputeTotal() float64 {
	parts := offplanTotalFields
	if e.category.PropertyCategory() == CategoryReady {
		parts = readyTotalFields
	}

	total := decimal.Zero
	for _, f := range parts {
		total = total.Add(decimal.NewFromFloat(e.fields.GetNumericValue(f)))
	}

	val, _ := total.Round(0).Float64()
	e.fields.SetFieldValue(FieldTotalPayable, FormatCurrency(val))
	return val
}

// OnFieldChanged is the host's change notification. Non-trigger fields are
// ignored; trigger changes recompute synchronously and schedule the debounced
// persist, so a typing burst costs one store write, not one per keystroke.
func (e *Engine) OnFieldChanged(fieldID Field) {
	if !IsTriggerField(fieldID) {
		return
	}
	e.RecomputeAll()
	e.schedulePersist()
}

// OnLockToggled reacts to a lock transition. Unlocking snaps the field back
// to its formula value immediately; locking leaves the value for manual entry.
func (e *Engine) OnLockToggled(fieldID Field, locked bool) {
	if locked || !IsDerivedField(fieldID) {
		return
	}
	e.RecomputeField(fieldID)
	e.RecomputeTotal()
	e.schedulePersist()
}

// Flush forces a pending debounced persist to run now. Called on shutdown.
func (e *Engine) Flush() {
	e.debounce.Flush()
}

func (e *Engine) schedulePersist() {
	if e.persist == nil {
		return
	}
	e.debounce.Trigger(e.persist)
}

// FormatArea renders the total area with its unit suffix.
func FormatArea(val float64) string {
	return fmt.Sprintf("%.2f sq.m", val)
}

// FormatCurrency renders a whole-unit amount as "AED 1,234,567".
func FormatCurrency(val float64) string {
	neg := val < 0
	if neg {
		val = -val
	}

	digits := strconv.FormatFloat(val, 'f', 0, 64)
	var b strings.Builder
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	if neg {
		return "AED -" + b.String()
	}
	return "AED " + b.String()
}
