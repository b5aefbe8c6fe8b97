package apikey

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

type KeyStore interface {
	GetAPIKey(ctx context.Context) string
	SetAPIKey(ctx context.Context, key string) error
}

type Resp struct {
	Configured bool `json:"configured"`
}

// GetAPIKeyStatus reports whether a key is configured. The key itself is
// never returned.
func GetAPIKeyStatus(log *slog.Logger, keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Resp{Configured: keys.GetAPIKey(r.Context()) != ""})
	}
}

// SetAPIKey stores or clears the integration key. Admin-only route.
func SetAPIKey(log *slog.Logger, keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.apikey.SetAPIKey"

		var req struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		if err := keys.SetAPIKey(r.Context(), req.Key); err != nil {
			log.Error("failed to store api key", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "api key not saved", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Resp{Configured: req.Key != ""})
	}
}
