package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type TemplateProvider interface {
	GetTemplates(ctx context.Context) []storage.Template
}

func GetTemplates(log *slog.Logger, templates TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := templates.GetTemplates(r.Context())
		if list == nil {
			list = []storage.Template{}
		}
		render.JSON(w, r, list)
	}
}
