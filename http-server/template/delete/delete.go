package delete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type TemplateRemover interface {
	DeleteTemplate(ctx context.Context, id string) (bool, error)
}

type Resp struct {
	Deleted bool `json:"deleted"`
}

func DeleteTemplate(log *slog.Logger, templates TemplateRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.DeleteTemplate"

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing template id", http.StatusBadRequest)
			return
		}

		deleted, err := templates.DeleteTemplate(r.Context(), id)
		if err != nil {
			log.Error("failed to delete template", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "template not deleted", http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}

		render.JSON(w, r, Resp{Deleted: true})
	}
}
