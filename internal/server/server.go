// Package server exposes a trained classifier over a small read-only
// HTTP API: classification, scoring, model info, health, and metrics.
// The model is immutable, so handlers share it without locking.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// API serves classification endpoints over a trained classifier.
type API struct {
	classifier *bayes.Classifier
	metrics    *Metrics
	logger     *slog.Logger
	ready      atomic.Bool
}

// New builds the API around a classifier that already holds a trained
// or loaded model.
func New(classifier *bayes.Classifier) *API {
	return &API{
		classifier: classifier,
		metrics:    NewMetrics(),
		logger:     slog.Default().With("component", "server"),
	}
}

// SetReady flips the readiness reported by /readyz.
func (a *API) SetReady(ready bool) {
	a.ready.Store(ready)
}

// RegisterRoutes registers all API routes on the provided ServeMux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/classify", a.metrics.instrument("/classify", http.HandlerFunc(a.ClassifyHandler)))
	mux.Handle("/score", a.metrics.instrument("/score", http.HandlerFunc(a.ScoreHandler)))
	mux.Handle("/info", a.metrics.instrument("/info", http.HandlerFunc(a.InfoHandler)))
	mux.HandleFunc("/healthz", HealthHandler)
	mux.HandleFunc("/readyz", a.ReadyHandler)
	mux.Handle("/metrics", a.metrics.Handler())
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		http.Error(w, `{"error":"failed to marshal response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		slog.Default().Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readBody(w http.ResponseWriter, req *http.Request) (string, bool) {
	req.Body = http.MaxBytesReader(w, req.Body, maxRequestBodyBytes)
	defer req.Body.Close()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return "", false
	}

	return string(body), true
}

func requireMethod(w http.ResponseWriter, req *http.Request, method string) bool {
	if req.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// ClassificationResponse is the /classify payload.
type ClassificationResponse struct {
	Label  string             `json:"label"`
	Scores map[string]float64 `json:"scores"`
}

// InfoResponse is the /info payload describing the loaded model.
type InfoResponse struct {
	Classes        []string `json:"classes"`
	VocabularySize int      `json:"vocabulary_size"`
	Alpha          float64  `json:"alpha"`
}

// ClassifyHandler classifies request body text and returns the arg-max
// class with per-class log scores.
func (a *API) ClassifyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	pred, err := a.classifier.Predict(bayes.Doc(body))
	if err != nil {
		a.logger.Error("classify failed", "error", err)
		writeError(w, http.StatusInternalServerError, "classification failed")
		return
	}

	a.metrics.PredictionsTotal.WithLabelValues(pred.Label).Inc()
	writeJSON(w, http.StatusOK, ClassificationResponse{Label: pred.Label, Scores: pred.Scores})
}

// ScoreHandler returns the per-class log scores for request body text.
func (a *API) ScoreHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	scores, err := a.classifier.Score(bayes.Doc(body))
	if err != nil {
		a.logger.Error("score failed", "error", err)
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}

	writeJSON(w, http.StatusOK, scores)
}

// InfoHandler describes the loaded model.
func (a *API) InfoHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}

	model := a.classifier.Model()
	if model == nil {
		writeError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}

	writeJSON(w, http.StatusOK, InfoResponse{
		Classes:        model.Classes(),
		VocabularySize: model.Vocabulary().Len(),
		Alpha:          model.Alpha(),
	})
}

// HealthHandler returns liveness status for process health checks.
func HealthHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler returns readiness status for traffic checks.
func (a *API) ReadyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	if !a.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Run serves the API on addr until SIGINT or SIGTERM, then drains with a
// ten second grace period. Readiness flips off before shutdown starts.
func (a *API) Run(addr string) error {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	a.SetReady(true)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.logger.Info("listening", "addr", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.logger.Info("shutting down", "signal", sig.String())
	}
	a.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
