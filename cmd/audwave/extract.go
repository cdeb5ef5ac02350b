// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audwave"
	"github.com/ik5/audwave/admission"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/extraction"
	"github.com/ik5/audwave/internal/config"
	"github.com/ik5/audwave/internal/logging"
	"github.com/ik5/audwave/metrics"
	"github.com/ik5/audwave/waveform"
)

// Result is printed for every input file.
type Result struct {
	Key    string    `json:"key" yaml:"key"`
	Path   string    `json:"path" yaml:"path"`
	Points []float32 `json:"points,omitempty" yaml:"points,omitempty"`
	Error  string    `json:"error,omitempty" yaml:"error,omitempty"`
}

func extractCommand(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract a waveform from every file",
		Long: `Extract a fixed number of RMS amplitude points from every file.
Files are decoded concurrently, up to --concurrency at once, and the results
are printed in input order.

Supported extensions: ` + strings.Join(audwave.DefaultRegistry().Extensions(), ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configFile)
			if err != nil {
				return err
			}

			log := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
			results, err := runExtract(cmd.Context(), cfg, log, args)
			if err != nil {
				return err
			}

			return writeResults(cmd.OutOrStdout(), cfg.Output, results)
		},
	}

	cmd.Flags().IntP("points", "n", 100, "Number of points per waveform")
	cmd.Flags().IntP("concurrency", "c", admission.DefaultCapacity, "Files decoded at once, 0 for no limit")
	cmd.Flags().Bool("normalize", true, "Rescale points so the loudest one equals --scale")
	cmd.Flags().Float64("scale", waveform.DefaultScale, "Amplitude of the loudest point")
	cmd.Flags().Float64("threshold", waveform.DefaultSilenceThreshold, "Points under this level are silence")
	cmd.Flags().Int("chunk-size", decoder.DefaultChunkSize, "Largest compressed read handed to a codec, in bytes")
	cmd.Flags().Duration("cache-ttl", 10*time.Minute, "How long finished results are reused, 0 to disable")
	cmd.Flags().StringP("output", "o", "json", "Output format: json, yaml")

	return cmd
}

func runExtract(ctx context.Context, cfg *config.Config, log *slog.Logger, paths []string) ([]Result, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m, err := metrics.NewExtractionMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}

	if cfg.MetricsAddr != "" {
		shutdown, err := serveMetrics(cfg.MetricsAddr, reg, log)
		if err != nil {
			return nil, err
		}
		defer shutdown()
	}

	opts := []audwave.Option{
		audwave.WithLogger(log),
		audwave.WithMetrics(m),
		audwave.WithCacheTTL(cfg.CacheTTL),
		audwave.WithChunkSize(cfg.ChunkSize),
		audwave.WithListener(func(u extraction.Update) {
			if u.Kind == extraction.UpdateProgress {
				log.Debug("progress", "key", u.Key, "progress", u.Progress, "points", len(u.Points))
			}
		}),
	}
	if cfg.Normalize {
		opts = append(opts, audwave.WithNormalization(cfg.Scale, cfg.Threshold))
	} else {
		opts = append(opts, audwave.WithoutNormalization())
	}

	e := audwave.New(opts...)
	defer e.Close()
	e.ConfigureConcurrency(cfg.Concurrency)

	// Ctrl-C cancels everything still running
	stop := context.AfterFunc(ctx, e.CancelAll)
	defer stop()

	results := make([]Result, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		key := fmt.Sprintf("file-%d", i+1)
		results[i] = Result{Key: key, Path: path}

		future, err := e.Extract(path, key, cfg.Points)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			points, err := future.Wait(context.WithoutCancel(ctx))
			if extraction.IsCancelled(err) {
				log.Info("extraction cancelled", "key", key, "path", path)
				results[i].Error = err.Error()
				return
			}
			if err != nil {
				log.Warn("extraction failed", "key", key, "path", path, "error", err)
				results[i].Error = err.Error()
				return
			}

			log.Info("extraction completed", "key", key, "path", path, "points", len(points))
			results[i].Points = points
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("extraction interrupted: %w", err)
	}

	return results, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("error listening for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	log.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown failed", "error", err)
		}
	}, nil
}

func writeResults(w io.Writer, format string, results []Result) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("error writing yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("error writing json: %w", err)
		}
		return nil
	}
}
