package generate_excel

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
)

type ExcelGenerator interface {
	GenerateExcel(ctx context.Context) ([]byte, error)
}

// GenerateReportExcel streams the current offer as an .xlsx download.
func GenerateReportExcel(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		data, err := gen.GenerateExcel(r.Context())
		if err != nil {
			log.Error("failed to generate report", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "report generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="offer.xlsx"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}
}
