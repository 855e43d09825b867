// Package weather содержит клиент погодного провайдера (OpenWeatherMap) и
// правила советов по одежде с учетом погоды.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/akozadaev/go_fashion_advisor/internal/fault"
	"github.com/akozadaev/go_fashion_advisor/internal/models"
)

const maxBodyBytes = 1 << 20

// Client выполняет запрос текущей погоды по координатам в метрических единицах.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type currentWeather struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// NewClient создает клиент погодного провайдера
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// FetchRaw возвращает ответ провайдера без изменений.
// Ошибочный HTTP статус и тело, не являющееся JSON, возвращаются как ошибки.
func (c *Client) FetchRaw(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fault.New(fault.KindInternal, "weather.fetch", fmt.Errorf("invalid weather url: %w", err))
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fault.New(fault.KindInternal, "weather.fetch", fmt.Errorf("failed to create request: %w", err))
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error содержит адрес запроса вместе с appid
		return nil, fault.New(fault.KindUpstream, "weather.fetch", errors.New(c.redact(err.Error())))
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fault.New(fault.KindUpstream, "weather.fetch", fmt.Errorf("failed to read response: %w", err))
	}

	if res.StatusCode >= 400 {
		return nil, fault.New(fault.KindUpstream, "weather.fetch",
			fmt.Errorf("weather provider returned status %d: %s", res.StatusCode, strings.TrimSpace(string(body))))
	}

	if !json.Valid(body) {
		return nil, fault.New(fault.KindMalformed, "weather.fetch", errors.New("weather provider returned invalid JSON"))
	}
	return json.RawMessage(body), nil
}

// Fetch возвращает снимок погоды: температуру и основное состояние.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	raw, err := c.FetchRaw(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(raw)
}

// ParseSnapshot извлекает main.temp и weather[0].main из ответа провайдера.
func ParseSnapshot(raw []byte) (*models.WeatherSnapshot, error) {
	var cw currentWeather
	if err := json.Unmarshal(raw, &cw); err != nil {
		return nil, fault.New(fault.KindMalformed, "weather.parse", fmt.Errorf("failed to decode response: %w", err))
	}
	if cw.Main == nil || cw.Main.Temp == nil {
		return nil, fault.New(fault.KindMalformed, "weather.parse", errors.New("response has no main.temp"))
	}
	if len(cw.Weather) == 0 {
		return nil, fault.New(fault.KindMalformed, "weather.parse", errors.New("response has no weather conditions"))
	}

	summary := strings.ToLower(cw.Weather[0].Main)
	return &models.WeatherSnapshot{
		Temperature: *cw.Main.Temp,
		Condition:   NormalizeCondition(summary),
		Summary:     summary,
	}, nil
}

// NormalizeCondition сводит состояние провайдера к rain, snow, clear или other.
func NormalizeCondition(condition string) string {
	condition = strings.ToLower(condition)
	switch {
	case strings.Contains(condition, models.ConditionRain):
		return models.ConditionRain
	case strings.Contains(condition, models.ConditionSnow):
		return models.ConditionSnow
	case strings.Contains(condition, models.ConditionClear):
		return models.ConditionClear
	default:
		return models.ConditionOther
	}
}

func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, "REDACTED")
}
