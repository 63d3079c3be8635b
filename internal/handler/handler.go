package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/homedger-dev/homedger/internal/service"
	"github.com/homedger-dev/homedger/shared/config"
	"github.com/homedger-dev/homedger/shared/logger"
)

// HealthChecker reports readiness of the metadata store.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	ingestor *service.Ingestor
	health   HealthChecker
	cfg      *config.Config
}

func New(ingestor *service.Ingestor, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{ingestor: ingestor, health: health, cfg: cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
