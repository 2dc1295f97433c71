package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func HealthCheck(logger *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			logger.ErrorContext(ctx, "health check failed", slog.String("name", "postgres"), slog.Any("error", err))
			resp = HealthResponse{Status: "degraded", Database: "error"}
			status = http.StatusServiceUnavailable
		}

		if err := writeJSON(w, status, resp, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
	}
}
