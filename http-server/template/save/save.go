package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type TemplateCreator interface {
	SaveTemplate(ctx context.Context, name string, offer storage.Offer, branding storage.Branding) (storage.Template, error)
}

type Resp struct {
	Template storage.Template `json:"template"`
	Notices  []notify.Notice  `json:"notices,omitempty"`
}

// SaveTemplate snapshots the posted offer and branding under a new name.
func SaveTemplate(log *slog.Logger, templates TemplateCreator, sink *notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.SaveTemplate"

		var req struct {
			Name     string           `json:"name"`
			Data     storage.Offer    `json:"data"`
			Branding storage.Branding `json:"branding"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "template name is required", http.StatusBadRequest)
			return
		}

		tpl, err := templates.SaveTemplate(r.Context(), req.Name, req.Data, req.Branding)
		if err != nil {
			log.Error("failed to save template", slog.String("op", op), slog.String("error", err.Error()))
			status := http.StatusInternalServerError
			if errors.Is(err, storage.ErrQuotaExceeded) {
				status = http.StatusInsufficientStorage
			}
			http.Error(w, "template not saved", status)
			return
		}

		render.JSON(w, r, Resp{Template: tpl, Notices: sink.Drain()})
	}
}
