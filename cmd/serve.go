package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/puneet-chandna/water-brakes/internal/crs"
	"github.com/puneet-chandna/water-brakes/internal/dataset"
	"github.com/puneet-chandna/water-brakes/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Starts an HTTP server exposing the pipeline to map and export
layers. POST /v1/process takes a CSV request body plus query parameters
matching the process command's flags and returns the enriched points as
GeoJSON together with the summary statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serve: listening", zap.Int("port", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			zap.L().Info("serve: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/v1/process", handleProcess)

	return r
}

// handleProcess runs the pipeline on a CSV request body. Query parameters:
// coordinate_system, utm_zone, utm_hemisphere, custom_epsg, n_clusters,
// allow_default_utm_zone.
func handleProcess(w http.ResponseWriter, r *http.Request) {
	ds, err := dataset.ReadCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := pipeline.Run(r.Context(), ds, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	response := map[string]any{
		"descriptor": result.Descriptor,
		"statistics": result.Statistics,
	}
	if result.Dataset.Has(crs.LatitudeColumn) && result.Dataset.Has(crs.LongitudeColumn) {
		fc, err := result.GeoJSON()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		response["features"] = fc
	}

	writeJSON(w, http.StatusOK, response)
}

func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		CoordinateSystem: q.Get("coordinate_system"),
		UTMHemisphere:    q.Get("utm_hemisphere"),
		CustomEPSG:       q.Get("custom_epsg"),
	}

	for param, target := range map[string]*int{
		"utm_zone":   &opts.UTMZone,
		"n_clusters": &opts.NClusters,
	} {
		if raw := q.Get(param); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return opts, fmt.Errorf("serve: %s must be an integer", param)
			}
			*target = v
		}
	}
	if raw := q.Get("allow_default_utm_zone"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("serve: allow_default_utm_zone must be a boolean")
		}
		opts.AllowDefaultZone = v
	}

	return opts, nil
}

// statusFor maps pipeline error types to HTTP statuses: caller data
// problems are 422, everything else 500.
func statusFor(err error) int {
	var schemaErr *dataset.SchemaError
	var transformErr *crs.TransformError
	if errors.As(err, &schemaErr) || errors.As(err, &transformErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("serve: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	zap.L().Warn("serve: request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
