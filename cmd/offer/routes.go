package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/Snoopiam/sales-offer-sub000/http-server/apikey"
	generate_excel "github.com/Snoopiam/sales-offer-sub000/http-server/generate-report/generate-excel"
	"github.com/Snoopiam/sales-offer-sub000/http-server/lock"
	getoffer "github.com/Snoopiam/sales-offer-sub000/http-server/offer/get"
	saveoffer "github.com/Snoopiam/sales-offer-sub000/http-server/offer/save"
	payment_plan "github.com/Snoopiam/sales-offer-sub000/http-server/payment-plan"
	recalculate_offer "github.com/Snoopiam/sales-offer-sub000/http-server/recalculate-offer"
	getsections "github.com/Snoopiam/sales-offer-sub000/http-server/sections/get"
	savesections "github.com/Snoopiam/sales-offer-sub000/http-server/sections/save"
	getstate "github.com/Snoopiam/sales-offer-sub000/http-server/state/get"
	savestate "github.com/Snoopiam/sales-offer-sub000/http-server/state/save"
	deltemplate "github.com/Snoopiam/sales-offer-sub000/http-server/template/delete"
	gettemplate "github.com/Snoopiam/sales-offer-sub000/http-server/template/get"
	savetemplate "github.com/Snoopiam/sales-offer-sub000/http-server/template/save"
	"github.com/Snoopiam/sales-offer-sub000/internal/config"
	"github.com/Snoopiam/sales-offer-sub000/internal/middleware/auth"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/calc"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/docfield"
	generate_excel2 "github.com/Snoopiam/sales-offer-sub000/internal/service/generate-excel"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/notify"
	"github.com/Snoopiam/sales-offer-sub000/internal/service/store"
)

func routes(cfg config.Config, log *slog.Logger, stateStore *store.Store, engine *calc.Engine, form *docfield.Accessor, sink *notify.Sink, genService *generate_excel2.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Full document.
	router.Get("/api/state", getstate.GetState(log, stateStore))
	router.Post("/api/state", savestate.SaveState(log, stateStore, sink))

	// Current offer and recomputation.
	router.Get("/api/offer", getoffer.GetOffer(log, stateStore))
	router.Post("/api/offer", saveoffer.SaveOffer(log, stateStore, engine, form, sink))
	router.Post("/api/offer/recalculate", recalculate_offer.RecalculateOffer(log, stateStore, engine, form, sink))

	// Manual overrides on derived fields.
	router.Get("/api/locks", lock.GetLockedFields(log, stateStore))
	router.Post("/api/locks/toggle", lock.ToggleFieldLock(log, stateStore, engine, form, sink))

	// Payment plan consistency.
	router.Post("/api/payment-plan/validate", payment_plan.ValidatePaymentPlan(log))

	// Scoped sections.
	router.Get("/api/branding", getsections.GetBranding(log, stateStore))
	router.Post("/api/branding", savesections.SaveBranding(log, stateStore, sink))
	router.Get("/api/labels", getsections.GetLabels(log, stateStore))
	router.Post("/api/labels", savesections.SaveLabels(log, stateStore, sink))
	router.Get("/api/settings", getsections.GetSettings(log, stateStore))
	router.Post("/api/settings", savesections.SaveSettings(log, stateStore, sink))
	router.Get("/api/dropdowns", getsections.GetDropdowns(log, stateStore))
	router.Post("/api/dropdowns", savesections.SaveDropdowns(log, stateStore, sink))

	// Offer templates.
	router.Get("/api/templates", gettemplate.GetTemplates(log, stateStore))
	router.Post("/api/templates", savetemplate.SaveTemplate(log, stateStore, sink))
	router.Delete("/api/templates/{id}", deltemplate.DeleteTemplate(log, stateStore))

	// Snapshot exchange.
	router.Get("/api/export", getstate.ExportSnapshot(log, stateStore))
	router.Post("/api/import", savestate.ImportSnapshot(log, stateStore, sink))

	// Document export.
	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, genService))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))
	adminRouter.Get("/apikey", apikey.GetAPIKeyStatus(log, stateStore))
	adminRouter.Put("/apikey", apikey.SetAPIKey(log, stateStore))

	router.Mount("/api/admin", adminRouter)

	// Static frontend, when the build output is present.
	frontendDir := "./frontend-dist"
	if _, err := os.Stat(frontendDir); err == nil {
		fileServer := http.StripPrefix("/", http.FileServer(http.Dir(frontendDir)))

		router.Handle("/assets/*", fileServer)
		router.Handle("/js/*", fileServer)
		router.Handle("/css/*", fileServer)
		router.Handle("/img/*", fileServer)

		// SPA fallback: existing files are served as-is, anything else gets
		// index.html.
		router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
			path := filepath.Join(frontendDir, r.URL.Path)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				http.ServeFile(w, r, path)
				return
			}
			http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
		})
	} else {
		log.Info("frontend build not found, serving API only", slog.String("path", frontendDir))
	}

	return router
}
