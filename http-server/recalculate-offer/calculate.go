package recalculate_offer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/docfield"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type OfferProvider interface {
	GetCurrentOffer(ctx context.Context) storage.Offer
}

type Recalculator interface {
	RecomputeAll()
	RecomputeTotal() float64
}

type Resp struct {
	Offer        storage.Offer   `json:"offer"`
	TotalPayable float64         `json:"totalPayable"`
	Notices      []notify.Notice `json:"notices,omitempty"`
}

// RecalculateOffer reruns every unlocked derived formula against the stored
// offer and returns the result. Locked fields keep their manual values.
func RecalculateOffer(log *slog.Logger, offers OfferProvider, engine Recalculator, form *docfield.Accessor, sink *notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form.Reset(offers.GetCurrentOffer(r.Context()))
		engine.RecomputeAll()
		total := engine.RecomputeTotal()

		render.JSON(w, r, Resp{
			Offer:        form.Offer(),
			TotalPayable: total,
			Notices:      sink.Drain(),
		})
	}
}
