package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/calc"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/docfield"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type OfferStore interface {
	GetCurrentOffer(ctx context.Context) storage.Offer
	SaveCurrentOffer(ctx context.Context, partial map[string]any) error
	GetSettings(ctx context.Context) storage.Settings
}

type Recalculator interface {
	OnFieldChanged(fieldID calc.Field)
}

type Resp struct {
	Offer   storage.Offer   `json:"offer"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

// SaveOffer merges a partial offer update and, when auto-calculate is on,
// feeds each changed trigger field to the engine. The response carries the
// offer with freshly derived values; their persistence is debounced.
func SaveOffer(log *slog.Logger, offers OfferStore, engine Recalculator, form *docfield.Accessor, sink *notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.offer.SaveOffer"

		var partial map[string]any
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		if err := offers.SaveCurrentOffer(r.Context(), partial); err != nil {
			log.Error("failed to save offer", slog.String("op", op), slog.String("error", err.Error()))
			status := http.StatusInternalServerError
			if errors.Is(err, storage.ErrQuotaExceeded) {
				status = http.StatusInsufficientStorage
			}
			render.Status(r, status)
			render.JSON(w, r, Resp{Offer: offers.GetCurrentOffer(r.Context()), Notices: sink.Drain()})
			return
		}

		form.Reset(offers.GetCurrentOffer(r.Context()))

		if offers.GetSettings(r.Context()).AutoCalculate {
			for key := range partial {
				if calc.IsTriggerField(calc.Field(key)) {
					engine.OnFieldChanged(calc.Field(key))
				}
			}
		}

		render.JSON(w, r, Resp{Offer: form.Offer(), Notices: sink.Drain()})
	}
}
