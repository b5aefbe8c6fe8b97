package lock

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Snoopiam/sales-offer-sub000/internal/service/calc"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/docfield"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

type LockStore interface {
	ToggleFieldLock(ctx context.Context, fieldID string) (bool, error)
	GetSettings(ctx context.Context) storage.Settings
	GetCurrentOffer(ctx context.Context) storage.Offer
}

type LockEngine interface {
	OnLockToggled(fieldID calc.Field, locked bool)
}

type ToggleResp struct {
	FieldID string          `json:"fieldId"`
	Locked  bool            `json:"locked"`
	Offer   storage.Offer   `json:"offer"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

// ToggleFieldLock flips a derived field's manual override. Unlocking snaps
// the field back to its formula value, which the returned offer reflects.
func ToggleFieldLock(log *slog.Logger, locks LockStore, engine LockEngine, form *docfield.Accessor, sink *notify.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lock.ToggleFieldLock"

		var req struct {
			FieldID string `json:"fieldId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if !calc.IsDerivedField(calc.Field(req.FieldID)) {
			http.Error(w, "not a derived field", http.StatusBadRequest)
			return
		}

		locked, err := locks.ToggleFieldLock(r.Context(), req.FieldID)
		if err != nil {
			log.Error("failed to toggle lock", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "lock not toggled", http.StatusInternalServerError)
			return
		}

		form.Reset(locks.GetCurrentOffer(r.Context()))
		engine.OnLockToggled(calc.Field(req.FieldID), locked)

		render.JSON(w, r, ToggleResp{
			FieldID: req.FieldID,
			Locked:  locked,
			Offer:   form.Offer(),
			Notices: sink.Drain(),
		})
	}
}

// GetLockedFields lists the currently overridden derived fields.
func GetLockedFields(log *slog.Logger, locks LockStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields := locks.GetSettings(r.Context()).LockedFields
		if fields == nil {
			fields = []string{}
		}
		render.JSON(w, r, fields)
	}
}
