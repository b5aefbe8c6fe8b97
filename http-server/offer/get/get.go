package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type OfferProvider interface {
	GetCurrentOffer(ctx context.Context) storage.Offer
}

func GetOffer(log *slog.Logger, offers OfferProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, offers.GetCurrentOffer(r.Context()))
	}
}
