// Package handlers содержит HTTP обработчики REST API модного советника.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/akozadaev/go_fashion_advisor/internal/fault"
	"github.com/akozadaev/go_fashion_advisor/internal/models"
	"github.com/akozadaev/go_fashion_advisor/internal/orchestrator"
)

const (
	indexStatus     = "AI Fashion Advisor API is running"
	multipartMemory = 32 << 20
)

var errInvalidCoordinate = errors.New("coordinate is not a finite number")

// UploadProcessor обрабатывает проверенную загрузку
type UploadProcessor interface {
	Process(ctx context.Context, in orchestrator.UploadInput) (*models.AdviceResponse, error)
}

// WeatherSource возвращает ответ погодного провайдера без изменений
type WeatherSource interface {
	FetchRaw(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// Handlers содержит зависимости для обработки HTTP запросов.
type Handlers struct {
	processor      UploadProcessor
	weather        WeatherSource
	maxUploadBytes int64
}

// NewHandlers создает новый экземпляр Handlers.
func NewHandlers(processor UploadProcessor, weather WeatherSource, maxUploadBytes int64) *Handlers {
	return &Handlers{
		processor:      processor,
		weather:        weather,
		maxUploadBytes: maxUploadBytes,
	}
}

// Index сообщает, что сервис запущен.
// Эндпоинт: GET /
//
// @Summary      Статус API
// @Description  Возвращает строку статуса сервиса
// @Tags         health
// @Produce      json
// @Success      200  {object}  models.StatusResponse
// @Router       / [get]
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, models.StatusResponse{Status: indexStatus})
}

// HealthCheck обрабатывает GET запрос на проверку работоспособности сервиса.
// Эндпоинт: GET /health
//
// @Summary      Проверка работоспособности сервиса
// @Description  Возвращает статус сервиса. Используется для мониторинга и проверки доступности.
// @Tags         health
// @Produce      json
// @Success      200  {object}  models.StatusResponse
// @Router       /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Weather возвращает текущую погоду по координатам в том виде, в каком ее отдал провайдер.
// Эндпоинт: GET /weather?lat=&lon=
//
// @Summary      Текущая погода
// @Description  Проксирует ответ погодного провайдера для указанных координат (метрические единицы)
// @Tags         weather
// @Produce      json
// @Param        lat  query     number  true  "Широта"
// @Param        lon  query     number  true  "Долгота"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse  "Не переданы координаты"
// @Failure      500  {object}  models.ErrorResponse  "Ошибка погодного провайдера"
// @Router       /weather [get]
func (h *Handlers) Weather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")
	if latRaw == "" || lonRaw == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}

	coords, err := parseCoordinates(latRaw, lonRaw)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "Latitude and longitude must be numbers")
		return
	}

	raw, err := h.weather.FetchRaw(r.Context(), coords.Lat, coords.Lon)
	if err != nil {
		slog.ErrorContext(r.Context(), "weather lookup failed", slog.Any("error", err))
		writeError(r.Context(), w, http.StatusInternalServerError, "Error fetching weather data: "+fault.MessageOf(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		slog.WarnContext(r.Context(), "failed to write weather response", slog.Any("error", err))
	}
}

// Upload принимает фотографию образа и возвращает советы.
// Эндпоинт: POST /upload
//
// @Summary      Анализ образа
// @Description  Классифицирует одежду на фото, генерирует рекомендации и варианты ремикса, при наличии координат добавляет советы по погоде
// @Tags         advice
// @Accept       multipart/form-data
// @Produce      json
// @Param        file       formData  file    true   "Фотография образа"
// @Param        latitude   formData  number  false  "Широта"
// @Param        longitude  formData  number  false  "Долгота"
// @Success      200  {object}  models.AdviceResponse
// @Failure      400  {object}  models.ErrorResponse  "Файл не передан"
// @Failure      500  {object}  models.ErrorResponse  "Внутренняя ошибка сервера"
// @Router       /upload [post]
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(ctx, w, http.StatusBadRequest, "File too large")
		case errors.Is(err, http.ErrNotMultipart):
			writeError(ctx, w, http.StatusBadRequest, "No file uploaded")
		default:
			writeError(ctx, w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		}
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.WarnContext(ctx, "failed to clean multipart temp files", slog.Any("error", err))
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		writeError(ctx, w, http.StatusBadRequest, "No file selected")
		return
	}

	in := orchestrator.UploadInput{Filename: header.Filename, File: file}
	if lat, lon := r.FormValue("latitude"), r.FormValue("longitude"); lat != "" && lon != "" {
		coords, err := parseCoordinates(lat, lon)
		if err != nil {
			slog.WarnContext(ctx, "ignoring invalid coordinates",
				slog.String("latitude", lat), slog.String("longitude", lon), slog.Any("error", err))
		} else {
			in.Coordinates = coords
		}
	}

	resp, err := h.processor.Process(ctx, in)
	if err != nil {
		slog.ErrorContext(ctx, "upload processing failed", slog.Any("error", err))
		writeError(ctx, w, fault.HTTPStatus(err), "Error in /upload: "+fault.MessageOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func parseCoordinates(lat, lon string) (*models.Coordinates, error) {
	latV, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, err
	}
	lonV, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil, err
	}
	for _, v := range []float64{latV, lonV} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errInvalidCoordinate
		}
	}
	return &models.Coordinates{Lat: latV, Lon: lonV}, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(ctx, "error encoding response", slog.Any("error", err))
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, models.ErrorResponse{Error: message})
}
