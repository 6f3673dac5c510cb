package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/api"
	"github.com/satriahrh/suara/internal/app"
	"github.com/satriahrh/suara/internal/auth"
	"github.com/satriahrh/suara/internal/websocket"
)

const tokenTTL = 24 * time.Hour

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP and websocket",
	Long: `Start the HTTP API and websocket endpoint.

Clients exchange CLIENT_SECRET for a bearer token at POST /api/v1/auth/token,
then upload WAV audio to POST /api/v1/turns or stream it over GET /ws.
Prometheus metrics are served at /metrics.

Examples:
  JWT_SECRET=... CLIENT_SECRET=... suara serve
  suara serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if servePort != "" {
		cfg.Server.Port = servePort
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Mode: entities.SessionModeServer, Headless: true}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer a.Close(context.Background())

	// Initialize WebSocket hub
	hub := websocket.NewHub(a.Orchestrator, a.Response, websocket.Options{
		SampleRate:  a.Capture.SampleRate(),
		Connections: a.Metrics.WebsocketClients,
	}, logger)
	a.Orchestrator.AddObserver(hub)
	go hub.Run(ctx)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, api.Dependencies{
		Orchestrator: a.Orchestrator,
		Turns:        a.Turns,
		Content:      a.Content,
		Benchmark:    a.Benchmark,
		Synthesis:    a.Synthesis,
		Tokens:       auth.NewTokenService(cfg.Server.JWTSecret, cfg.Server.ClientSecret, tokenTTL),
		Metrics:      a.Metrics,
		Hub:          hub,
		SampleRate:   a.Capture.SampleRate(),
	}, logger)

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	logger.Info("Server started", zap.String("port", cfg.Server.Port), zap.String("sessionID", a.Session.ID))

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
