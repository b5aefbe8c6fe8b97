package save

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type StateSaver interface {
	Save(ctx context.Context, state storage.PersistedState) error
	ImportSnapshot(ctx context.Context, data []byte) error
}

type Resp struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message,omitempty"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

// SaveState replaces the whole document. A quota failure that survived the
// degradation ladder comes back as 507.
func SaveState(log *slog.Logger, state StateSaver, sink *notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.state.SaveState"

		var doc storage.PersistedState
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		if err := state.Save(r.Context(), doc); err != nil {
			log.Error("failed to save state", slog.String("op", op), slog.String("error", err.Error()))
			status := http.StatusInternalServerError
			if errors.Is(err, storage.ErrQuotaExceeded) {
				status = http.StatusInsufficientStorage
			}
			render.Status(r, status)
			render.JSON(w, r, Resp{OK: false, Message: "state not saved", Notices: sink.Drain()})
			return
		}

		render.JSON(w, r, Resp{OK: true, Notices: sink.Drain()})
	}
}

// ImportSnapshot merges an exported snapshot into the current document.
// Malformed input is rejected with no partial mutation.
func ImportSnapshot(log *slog.Logger, state StateSaver, sink *notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.state.ImportSnapshot"

		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "cannot read body", http.StatusBadRequest)
			return
		}

		if err := state.ImportSnapshot(r.Context(), data); err != nil {
			log.Error("snapshot import rejected", slog.String("op", op), slog.String("error", err.Error()))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, Resp{OK: false, Message: "snapshot rejected, nothing was imported", Notices: sink.Drain()})
			return
		}

		render.JSON(w, r, Resp{OK: true, Notices: sink.Drain()})
	}
}
