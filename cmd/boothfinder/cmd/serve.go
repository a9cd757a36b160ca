package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expomap/boothfinder/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the booth detection API",
	Long: `Start an HTTP server that provides REST and WebSocket endpoints for booth
detection.

The server provides the following endpoints:
  POST /analyze     - Detect booths in an uploaded floor plan
  GET  /booths      - Current booth snapshot
  GET  /search      - Highlight the first booth matching a query
  GET  /overlay.png - Annotated floor plan rendering
  GET  /health      - Health check endpoint
  GET  /metrics     - Prometheus metrics
  GET  /ws          - WebSocket analyze/search session

Examples:
  boothfinder serve
  boothfinder serve --port 8080
  boothfinder serve --host 0.0.0.0 --port 3000`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}
	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}
	corsOrigin := cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		corsOrigin, _ = cmd.Flags().GetString("cors-origin")
	}
	maxUploadMB := cfg.Server.MaxUploadMB
	if cmd.Flags().Changed("max-upload-size") {
		maxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
	}
	timeout := cfg.Server.TimeoutSec
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetInt("timeout")
	}
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if cmd.Flags().Changed("shutdown-timeout") {
		shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}
	overlayEnable := cfg.Server.OverlayEnabled
	if cmd.Flags().Changed("overlay-enable") {
		overlayEnable, _ = cmd.Flags().GetBool("overlay-enable")
	}
	ocrEnabled := cfg.Pipeline.OCR.Enabled
	if cmd.Flags().Changed("ocr") {
		ocrEnabled, _ = cmd.Flags().GetBool("ocr")
	}
	language := cfg.Pipeline.OCR.Language
	if cmd.Flags().Changed("language") {
		language, _ = cmd.Flags().GetString("language")
	}

	analyzerCfg := cfg.ToAnalyzerConfig()
	analyzerCfg.OCREnabled = ocrEnabled

	boothServer, err := server.NewServer(server.Config{
		Host:           host,
		Port:           port,
		CORSOrigin:     corsOrigin,
		MaxUploadMB:    int64(maxUploadMB),
		TimeoutSec:     timeout,
		OverlayEnabled: overlayEnable,
		Analyzer:       analyzerCfg,
		Detector:       cfg.NewRectangleFinder(),
		OCRLanguage:    language,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	mux := http.NewServeMux()
	boothServer.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(timeout) * time.Second,
		WriteTimeout:      time.Duration(timeout) * time.Second,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		slog.Info("Starting booth detection server", "host", host, "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}
	slog.Info("HTTP server shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origin")
	serveCmd.Flags().Int("max-upload-size", 25, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 60, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "graceful shutdown timeout in seconds")
	serveCmd.Flags().Bool("overlay-enable", true, "enable the overlay rendering endpoint")
	serveCmd.Flags().Bool("ocr", true, "run text recognition and booth labeling")
	serveCmd.Flags().StringP("language", "l", "eng", "recognition language")
}
