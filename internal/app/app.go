package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"symptom-checker/backend/internal/api"
	"symptom-checker/backend/internal/azure"
	"symptom-checker/backend/internal/config"
	"symptom-checker/backend/internal/relay"
	"symptom-checker/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired HTTP server.
type App struct {
	Server   *http.Server
	Upstream *config.UpstreamConfig
	LineMode relay.LineMode
}

func NewApp(cfg *config.Config) (*App, error) {
	upstream, err := cfg.Upstream()
	if err != nil {
		return nil, err
	}
	if err := upstream.Validate(); err != nil {
		// The chat route reports this to the caller; the process keeps running.
		slog.Warn("Upstream configuration incomplete", "error", err)
	}

	mode, err := relay.ParseLineMode(cfg.RelayLineMode)
	if err != nil {
		return nil, err
	}

	client := azure.NewHTTPClient(cfg.DialTimeout, cfg.ResponseHeaderTimeout)
	dispatcher := azure.NewDispatcher(upstream, azure.WithHTTPClient(client))
	relayer := relay.New(relay.Options{LineMode: mode})

	relayService := service.NewRelayService(dispatcher, relayer)
	chatHandler := api.NewChatHandler(relayService)
	router := api.NewRouter(chatHandler)

	port := cfg.AppPort
	if port == 0 {
		port = 8000
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{Server: server, Upstream: upstream, LineMode: mode}, nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	application, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	slog.Info("Relay configured",
		"chat_deployment", application.Upstream.Chat.Name,
		"image_deployment", application.Upstream.Image.Name,
		"line_mode", application.LineMode.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Serve(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		return 1
	}
	return 0
}

// Serve runs the server until ctx is cancelled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting server", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	})))
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(logLevel)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
