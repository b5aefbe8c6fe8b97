package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type StateProvider interface {
	Load(ctx context.Context) storage.PersistedState
	ExportSnapshot(ctx context.Context) storage.Snapshot
}

// GetState returns the full merged state document.
func GetState(log *slog.Logger, state StateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, state.Load(r.Context()))
	}
}

// ExportSnapshot returns the shareable slice of the document: offer, branding
// and labels. Settings, templates and credentials stay home.
func ExportSnapshot(log *slog.Logger, state StateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.state.ExportSnapshot"

		snapshot := state.ExportSnapshot(r.Context())
		log.Info("snapshot exported", slog.String("op", op))

		w.Header().Set("Content-Disposition", `attachment; filename="offer-snapshot.json"`)
		render.JSON(w, r, snapshot)
	}
}
