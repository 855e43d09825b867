// Команда classify прогоняет изображения через классификатор образа
// и печатает результат в JSON. API ключи не требуются.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akozadaev/go_fashion_advisor/internal/classifier"
	"github.com/akozadaev/go_fashion_advisor/internal/config"
	"github.com/akozadaev/go_fashion_advisor/internal/logging"
	"github.com/akozadaev/go_fashion_advisor/internal/models"
	"github.com/akozadaev/go_fashion_advisor/internal/similarity"
)

type report struct {
	File   string                       `json:"file"`
	Result *models.ClassificationResult `json:"result,omitempty"`
	models.Analysis
	Error string `json:"error,omitempty"`
}

type vocabulary struct {
	Garments []string `json:"garments"`
	Styles   []string `json:"styles"`
}

var errUsage = errors.New("usage: classify [-labels] [-url URL] <image>...")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	cfg, err := config.LoadUnvalidated(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(cfg.LogLevel, os.Stderr))

	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	showLabels := fs.Bool("labels", false, "print label vocabularies and exit")
	serviceURL := fs.String("url", cfg.SimilarityURL, "similarity service URL")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if *showLabels {
		return enc.Encode(vocabulary{Garments: classifier.GarmentLabels, Styles: classifier.StyleLabels})
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cls := classifier.New(similarity.NewClient(*serviceURL, cfg.UpstreamTimeout))

	var failed int
	for _, path := range fs.Args() {
		r := report{File: path}
		result, err := cls.Rank(ctx, path)
		if err != nil {
			slog.ErrorContext(ctx, "classification failed", slog.String("file", path), slog.Any("error", err))
			r.Error = err.Error()
			failed++
		} else {
			r.Result = result
			r.Analysis = classifier.Describe(result)
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, fs.NArg())
	}
	return nil
}
