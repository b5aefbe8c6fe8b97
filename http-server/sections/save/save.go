package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type SectionSaver interface {
	SaveBranding(ctx context.Context, partial map[string]any) error
	SaveLabels(ctx context.Context, partial map[string]any) error
	SaveSettings(ctx context.Context, partial map[string]any) error
	SaveCustomDropdowns(ctx context.Context, partial map[string]any) error
}

type Resp struct {
	OK      bool            `json:"ok"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

func SaveBranding(log *slog.Logger, sections SectionSaver, sink *notify.Sink) http.HandlerFunc {
	return saveHandler(log, "handlers.sections.SaveBranding", sections.SaveBranding, sink)
}

func SaveLabels(log *slog.Logger, sections SectionSaver, sink *notify.Sink) http.HandlerFunc {
	return saveHandler(log, "handlers.sections.SaveLabels", sections.SaveLabels, sink)
}

func SaveSettings(log *slog.Logger, sections SectionSaver, sink *notify.Sink) http.HandlerFunc {
	return saveHandler(log, "handlers.sections.SaveSettings", sections.SaveSettings, sink)
}

func SaveDropdowns(log *slog.Logger, sections SectionSaver, sink *notify.Sink) http.HandlerFunc {
	return saveHandler(log, "handlers.sections.SaveDropdowns", sections.SaveCustomDropdowns, sink)
}

func saveHandler(log *slog.Logger, op string, save func(ctx context.Context, partial map[string]any) error, sink *notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var partial map[string]any
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		if err := save(r.Context(), partial); err != nil {
			log.Error("failed to save section", slog.String("op", op), slog.String("error", err.Error()))
			status := http.StatusInternalServerError
			if errors.Is(err, storage.ErrQuotaExceeded) {
				status = http.StatusInsufficientStorage
			}
			render.Status(r, status)
			render.JSON(w, r, Resp{OK: false, Notices: sink.Drain()})
			return
		}

		render.JSON(w, r, Resp{OK: true, Notices: sink.Drain()})
	}
}
