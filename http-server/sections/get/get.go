package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type SectionProvider interface {
	GetBranding(ctx context.Context) storage.Branding
	GetLabels(ctx context.Context) storage.Labels
	GetSettings(ctx context.Context) storage.Settings
	GetCustomDropdowns(ctx context.Context) map[string][]string
}

func GetBranding(log *slog.Logger, sections SectionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, sections.GetBranding(r.Context()))
	}
}

func GetLabels(log *slog.Logger, sections SectionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, sections.GetLabels(r.Context()))
	}
}

func GetSettings(log *slog.Logger, sections SectionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, sections.GetSettings(r.Context()))
	}
}

func GetDropdowns(log *slog.Logger, sections SectionProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, sections.GetCustomDropdowns(r.Context()))
	}
}
