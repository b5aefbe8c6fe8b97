package payplan

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

// Epsilon absorbs float error when percentages are entered with decimals:
// 33.33 + 33.33 + 33.34 still counts as 100.
const Epsilon = 0.01

// Result is rendered by the caller as-is; validation never blocks anything.
type Result struct {
	Valid        bool    `json:"valid"`
	TotalPercent float64 `json:"totalPercent"`
	Message      string  `json:"message,omitempty"`
}

// Validate sums the rows' percentages and checks them against 100 within
// Epsilon. Non-numeric or empty percentages count as zero; an empty plan is
// vacuously valid.
func Validate(rows []storage.PaymentRow) Result {
	if len(rows) == 0 {
		return Result{Valid: true, TotalPercent: 0}
	}

	var total float64
	for _, row := range rows {
		total += parsePercent(row.Percentage)
	}

	rounded := round2(total)

	if math.Abs(total-100) < Epsilon {
		return Result{Valid: true, TotalPercent: rounded}
	}

	if total > 100+Epsilon {
		return Result{
			Valid:        false,
			TotalPercent: rounded,
			Message:      fmt.Sprintf("payment plan exceeds 100%%: total is %v%%", rounded),
		}
	}

	return Result{
		Valid:        false,
		TotalPercent: rounded,
		Message:      fmt.Sprintf("payment plan incomplete: total is %v%%, %v%% remaining", rounded, round2(100-total)),
	}
}

func parsePercent(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
