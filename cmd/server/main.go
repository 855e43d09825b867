// @title           AI Fashion Advisor API
// @version         1.0
// @description     REST API модного советника. Анализирует фото образа, предлагает новые образы и варианты ремикса, учитывает текущую погоду.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  akozadaev@inbox.ru
// @contact.url    https://github.com/akozadaev/go_fashion_advisor

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @schemes   http https
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/akozadaev/go_fashion_advisor/docs" // swagger docs
	"github.com/akozadaev/go_fashion_advisor/internal/advice"
	"github.com/akozadaev/go_fashion_advisor/internal/classifier"
	"github.com/akozadaev/go_fashion_advisor/internal/config"
	"github.com/akozadaev/go_fashion_advisor/internal/handlers"
	"github.com/akozadaev/go_fashion_advisor/internal/logging"
	"github.com/akozadaev/go_fashion_advisor/internal/orchestrator"
	"github.com/akozadaev/go_fashion_advisor/internal/similarity"
	"github.com/akozadaev/go_fashion_advisor/internal/storage"
	"github.com/akozadaev/go_fashion_advisor/internal/weather"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	// Сервис сходства может подняться позже, поэтому только предупреждаем
	simClient := similarity.NewClient(cfg.SimilarityURL, cfg.UpstreamTimeout)
	healthCtx, cancelHealth := context.WithTimeout(context.Background(), 5*time.Second)
	if err := simClient.HealthCheck(healthCtx); err != nil {
		slog.Warn("similarity service is not ready", slog.String("url", cfg.SimilarityURL), slog.Any("error", err))
	} else {
		slog.Info("similarity service is ready", slog.String("url", cfg.SimilarityURL))
	}
	cancelHealth()

	uploads, err := storage.NewUploadStorage(cfg.UploadDir)
	if err != nil {
		slog.Error("error creating upload storage", slog.Any("error", err))
		os.Exit(1)
	}

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.UpstreamTimeout)
	generator := advice.New(advice.Config{
		BaseURL: cfg.ChatBaseURL,
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.ChatModel,
		Referer: cfg.ChatReferer,
		Title:   cfg.ChatTitle,
		Timeout: cfg.UpstreamTimeout,
	})
	pipeline := orchestrator.New(classifier.New(simClient), generator, weatherClient, uploads)

	// Инициализация handlers
	h := handlers.NewHandlers(pipeline, weatherClient, cfg.MaxUploadBytes)
	router := handlers.NewRouter(h, cfg.AllowedOrigins)

	// Запрос /upload делает до трех внешних вызовов подряд
	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3*cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		slog.Info("server starting", slog.String("port", cfg.AppPort), slog.String("model", cfg.ChatModel))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("server exited")
}
