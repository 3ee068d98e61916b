package public

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/langowen/converter/deploy/config"
	"github.com/langowen/converter/internal/entities"
	mwAuth "github.com/langowen/converter/internal/rate_ingest/ports/http/public/middleware/auth"
	mwLogger "github.com/langowen/converter/internal/rate_ingest/ports/http/public/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Server   *http.Server
	service  Service
	ingestor Ingestor
}

func NewServer(service Service, ingestor Ingestor) *Server {
	return &Server{
		service:  service,
		ingestor: ingestor,
	}
}

type ingestResponse struct {
	Success bool        `json:"success"`
	Data    *ingestData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ingestData struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Timestamp int64              `json:"timestamp"`
}

type latestResponse struct {
	ID          string             `json:"id"`
	Base        string             `json:"base_currency"`
	Rates       map[string]float64 `json:"rates"`
	LastUpdated time.Time          `json:"last_updated"`
}

func (s *Server) Router(authToken string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "Authorization", "X-Client-Info", "Apikey"},
		OptionsPassthrough: true,
	}))
	r.Use(optionsOK)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(mwAuth.New(authToken))
		r.Get("/fetch-exchange-rates", s.FetchExchangeRates)
		r.Post("/fetch-exchange-rates", s.FetchExchangeRates)
	})

	r.Get("/rates/latest", s.GetLatestRates)
	r.Get("/currencies", s.GetCurrencies)

	return r
}

// optionsOK answers every OPTIONS request with 200 once cors has set its
// headers, preflight or not.
func optionsOK(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func StartServer(ctx context.Context, service Service, ingestor Ingestor, cfg *config.Config) <-chan struct{} {
	server := NewServer(service, ingestor)

	server.Server = &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      server.Router(cfg.Ingest.AuthToken),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	doneChan := make(chan struct{})

	go func() {
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

func (s *Server) FetchExchangeRates(w http.ResponseWriter, r *http.Request) {
	result, err := s.ingestor.Ingest(r.Context())
	if err != nil {
		RespondWithJSON(w, http.StatusInternalServerError, ingestResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	RespondWithJSON(w, http.StatusOK, ingestResponse{
		Success: true,
		Data: &ingestData{
			Base:      result.Snapshot.Base,
			Rates:     result.Snapshot.Rates,
			Timestamp: result.UpstreamUnix,
		},
	})
}

func (s *Server) GetLatestRates(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.LatestRates(r.Context())
	if errors.Is(err, entities.ErrNoData) {
		RespondWithError(w, http.StatusNotFound, "no rates ingested yet")
		return
	}
	if err != nil {
		slog.Error("Failed to read latest rates", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "failed to read latest rates")
		return
	}

	RespondWithJSON(w, http.StatusOK, latestResponse{
		ID:          snap.ID,
		Base:        snap.Base,
		Rates:       snap.Rates,
		LastUpdated: snap.Timestamp,
	})
}

func (s *Server) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.service.Currencies(r.Context()))
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
