// Package orchestrator связывает шаги обработки загруженного образа:
// погода, сохранение файла, классификация и генерация советов.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/akozadaev/go_fashion_advisor/internal/classifier"
	"github.com/akozadaev/go_fashion_advisor/internal/fault"
	"github.com/akozadaev/go_fashion_advisor/internal/models"
	"github.com/akozadaev/go_fashion_advisor/internal/storage"
	"github.com/akozadaev/go_fashion_advisor/internal/weather"
)

// Classifier превращает изображение в отзыв и описание образа
type Classifier interface {
	Classify(ctx context.Context, imagePath string) (models.Analysis, error)
}

// AdviceGenerator генерирует текстовые советы
type AdviceGenerator interface {
	SuggestOutfits(ctx context.Context, style string) (string, error)
	RemixOutfit(ctx context.Context, description string) (string, error)
}

// WeatherFetcher возвращает текущую погоду по координатам
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error)
}

// UploadStore сохраняет файл запроса
type UploadStore interface {
	Save(filename string, r io.Reader) (*storage.StoredUpload, error)
}

// UploadInput представляет проверенную загрузку
type UploadInput struct {
	Filename    string
	File        io.Reader
	Coordinates *models.Coordinates // nil, если координаты не переданы
}

// Orchestrator обрабатывает загрузки последовательно в рамках одного запроса.
// Безопасен для конкурентного использования, если безопасны зависимости.
type Orchestrator struct {
	classifier Classifier
	advice     AdviceGenerator
	weather    WeatherFetcher
	uploads    UploadStore
}

// New создает оркестратор
func New(c Classifier, a AdviceGenerator, w WeatherFetcher, u UploadStore) *Orchestrator {
	return &Orchestrator{classifier: c, advice: a, weather: w, uploads: u}
}

// Process выполняет полный цикл обработки загрузки.
// Ошибки погоды, классификации и генерации советов заменяются запасными значениями;
// ошибка сохранения файла или отмена контекста прерывают запрос.
func (o *Orchestrator) Process(ctx context.Context, in UploadInput) (*models.AdviceResponse, error) {
	snapshot := o.fetchWeather(ctx, in.Coordinates)

	upload, err := o.uploads.Save(in.Filename, in.File)
	if err != nil {
		return nil, fault.New(fault.KindInternal, "orchestrator.persist", err)
	}
	defer func() {
		if err := upload.Remove(); err != nil {
			slog.WarnContext(ctx, "failed to remove upload", slog.String("path", upload.Path), slog.Any("error", err))
		}
	}()
	slog.DebugContext(ctx, "upload stored", slog.String("upload_id", upload.ID), slog.Int64("size", upload.Size))

	analysis, err := o.classifier.Classify(ctx, upload.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fault.New(fault.KindInternal, "orchestrator.classify", ctxErr)
		}
		slog.WarnContext(ctx, "outfit classification failed, using fallback",
			slog.String("kind", fault.KindOf(err).String()), slog.Any("error", err))
		analysis = classifier.Fallback()
	}

	recommendations, err := o.advice.SuggestOutfits(ctx, analysis.Feedback)
	if err != nil {
		slog.WarnContext(ctx, "outfit suggestions failed", slog.Any("error", err))
		recommendations = fault.MessageOf(err)
	}

	remix, err := o.advice.RemixOutfit(ctx, analysis.OutfitDescription)
	if err != nil {
		slog.WarnContext(ctx, "remixing suggestions failed", slog.Any("error", err))
		remix = fault.MessageOf(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fault.New(fault.KindInternal, "orchestrator.process", fmt.Errorf("request aborted: %w", err))
	}

	var weatherAdvice string
	if snapshot != nil {
		weatherAdvice = weather.Advise(snapshot, analysis.Feedback)
	}

	return &models.AdviceResponse{
		Feedback:               analysis.Feedback,
		Recommendations:        recommendations,
		WeatherRecommendations: weatherAdvice,
		RemixingSuggestions:    remix,
	}, nil
}

func (o *Orchestrator) fetchWeather(ctx context.Context, coords *models.Coordinates) *models.WeatherSnapshot {
	if coords == nil || o.weather == nil {
		return nil
	}
	snapshot, err := o.weather.Fetch(ctx, coords.Lat, coords.Lon)
	if err != nil {
		slog.WarnContext(ctx, "weather lookup failed, continuing without it",
			slog.Float64("lat", coords.Lat), slog.Float64("lon", coords.Lon), slog.Any("error", err))
		return nil
	}
	return snapshot
}
