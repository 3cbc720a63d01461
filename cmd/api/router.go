package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/FACorreiaa/extrato-ledger/pkg/httpjson"
	"github.com/FACorreiaa/extrato-ledger/pkg/middleware"
)

// Version is reported by the health endpoint. Overridden at build time with
// -ldflags "-X github.com/FACorreiaa/extrato-ledger/cmd/api.Version=...".
var Version = "dev"

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// NewRouter builds the HTTP handler with the full middleware chain.
func NewRouter(d *Dependencies) http.Handler {
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst))
	r.Use(middleware.MaxBytes(cfg.Server.MaxUploadBytes))

	r.Get("/api/health", health)
	if cfg.Observability.MetricsEnabled {
		r.Method(http.MethodGet, cfg.Observability.MetricsPath, d.Metrics.Handler())
	}

	d.ImportHandler.Routes(r)
	d.LedgerHandler.Routes(r)
	d.InsightsHandler.Routes(r)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Error(w, http.StatusNotFound, "rota não encontrada")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Error(w, http.StatusMethodNotAllowed, "método não permitido")
	})
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	httpjson.Write(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}
