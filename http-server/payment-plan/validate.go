package payment_plan

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/payplan"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

// ValidatePaymentPlan checks the posted rows sum to 100% within tolerance and
// returns the structured result; an inconsistent plan is a 200, the result's
// valid flag carries the verdict.
func ValidatePaymentPlan(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payment_plan.ValidatePaymentPlan"

		var req struct {
			Rows []storage.PaymentRow `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		result := payplan.Validate(req.Rows)
		if !result.Valid {
			log.Info("payment plan inconsistent",
				slog.String("op", op),
				slog.Float64("total", result.TotalPercent))
		}

		render.JSON(w, r, result)
	}
}
