package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"churn-insights-go/internal/dashboard"
	"churn-insights-go/internal/dataset"
	"churn-insights-go/internal/logger"
	"churn-insights-go/internal/prediction"
	"churn-insights-go/internal/types"
	"churn-insights-go/internal/viewmodel"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "churn-insights-go").Info("starting service")

	apiURL := envOr("PREDICT_API_URL", "http://localhost:8000")
	client := prediction.NewClient(apiURL)
	log.WithField("predict_api_url", apiURL).Info("prediction client configured")

	// optional customer workbook for the batch demo
	var customers []types.CustomerRecord
	var workbook dataset.Summary
	dataPath := envOr("DATASET_PATH", "")
	if dataPath != "" {
		recs, err := dataset.Load(dataPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load customer workbook")
		}
		customers = recs
		workbook = dataset.Summarize(recs)
		log.WithField("total_customers", workbook.TotalCustomers).Info("customer workbook loaded")
	}

	loader := dashboard.NewLoader(client, intEnv("DASHBOARD_SAMPLE_SIZE", 5))

	// background refresh keeps a warm snapshot, the way the UI re-polls
	// every 30 seconds; /dashboard serves it and falls back to a fresh
	// load before the first tick completes
	var current atomic.Value
	refresher := dashboard.NewRefresher(loader, time.Duration(intEnv("REFRESH_SECONDS", 30))*time.Second)
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	refresher.Start(rootCtx, func(snap viewmodel.DashboardSnapshot) {
		current.Store(snap)
	})

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r)
		reqLog.Info("health check")
		remote, err := client.Health(r.Context())
		out := map[string]interface{}{"status": "ok"}
		if err != nil {
			out["api"] = map[string]interface{}{"status": "unreachable", "error": err.Error()}
		} else {
			out["api"] = remote
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "predict")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var in types.PredictionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			reqLog.WithError(err).Warn("bad request body")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := in.Validate(); err != nil {
			reqLog.WithError(err).Warn("input rejected")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start := time.Now()
		res, err := client.Predict(r.Context(), in)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("predict finished")
		// user-initiated action: report the failure, never substitute data
		if err != nil {
			reqLog.WithError(err).Warn("predict failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/predict/batch", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "batch")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var in struct {
			Customers []types.PredictionInput `json:"customers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if len(in.Customers) == 0 {
			http.Error(w, "customers must not be empty", http.StatusBadRequest)
			return
		}
		res, err := client.BatchPredict(r.Context(), in.Customers)
		if err != nil {
			reqLog.WithError(err).Warn("batch predict failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	// demo endpoint: score the first N workbook customers
	mux.HandleFunc("/predict/dataset", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "dataset_demo")
		if len(customers) == 0 {
			http.Error(w, "no customer workbook loaded", http.StatusNotFound)
			return
		}
		limit := queryInt(r, "limit", 5)
		if limit > len(customers) {
			limit = len(customers)
		}
		inputs := make([]types.PredictionInput, 0, limit)
		for _, c := range customers[:limit] {
			inputs = append(inputs, c.PredictionInput)
		}
		reqLog.WithField("count", len(inputs)).Info("scoring workbook customers")
		res, err := client.BatchPredict(r.Context(), inputs)
		if err != nil {
			reqLog.WithError(err).Warn("dataset batch failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/dataset/summary", func(w http.ResponseWriter, r *http.Request) {
		if dataPath == "" {
			http.Error(w, "no customer workbook loaded", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, workbook)
	})

	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("dashboard requested")
		if snap, ok := current.Load().(viewmodel.DashboardSnapshot); ok && r.URL.Query().Get("fresh") == "" {
			writeJSON(w, http.StatusOK, snap)
			return
		}
		writeJSON(w, http.StatusOK, loader.Snapshot(r.Context()))
	})

	mux.HandleFunc("/analytics", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("analytics requested")
		writeJSON(w, http.StatusOK, loader.AnalyticsOverview(r.Context()))
	})

	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "history")
		limit := queryInt(r, "limit", 50)
		offset := queryInt(r, "offset", 0)
		res, err := client.History(r.Context(), limit, offset)
		if err != nil {
			reqLog.WithError(err).Warn("history failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/model/metrics", func(w http.ResponseWriter, r *http.Request) {
		res, err := client.ModelMetrics(r.Context())
		if err != nil {
			logger.New().WithRequest(r).WithError(err).Warn("model metrics failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/model/retrain", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "retrain")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, err := client.Retrain(r.Context())
		if err != nil {
			reqLog.WithError(err).Warn("retrain trigger failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		reqLog.Info("retrain triggered")
		writeJSON(w, http.StatusOK, res)
	})

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		<-rootCtx.Done()
		refresher.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.New().WithError(err).Error("failed to write response")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
