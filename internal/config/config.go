// Package config предоставляет загрузку конфигурации приложения из YAML-файла,
// env-файла и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath используется, если CONFIG_PATH не задан.
const DefaultConfigPath = "configs/default.yaml"

// Config содержит все параметры конфигурации приложения.
// Собирается один раз при старте и дальше не изменяется.
type Config struct {
	AppPort string // Порт для HTTP сервера

	OpenRouterAPIKey  string // Ключ chat-completion провайдера (обязателен)
	OpenWeatherAPIKey string // Ключ погодного провайдера (обязателен)

	ChatBaseURL string // Базовый URL OpenAI-совместимого API
	ChatModel   string // Идентификатор модели
	ChatReferer string // Заголовок HTTP-Referer для OpenRouter
	ChatTitle   string // Заголовок X-Title для OpenRouter

	WeatherBaseURL string // URL запроса текущей погоды
	SimilarityURL  string // Базовый URL сервиса оценки изображение/текст

	UploadDir       string        // Каталог временного хранения загрузок
	MaxUploadBytes  int64         // Максимальный размер multipart-запроса
	UpstreamTimeout time.Duration // Таймаут каждого внешнего вызова

	AllowedOrigins []string // CORS allow-list
	LogLevel       string   // debug, info, warn, error
}

type configFile struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		LogLevel       string   `yaml:"log_level"`
	} `yaml:"server"`
	Chat struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
		Referer string `yaml:"referer"`
		Title   string `yaml:"title"`
	} `yaml:"chat"`
	Weather struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"weather"`
	Similarity struct {
		URL string `yaml:"url"`
	} `yaml:"similarity"`
	Uploads struct {
		Dir   string `yaml:"dir"`
		MaxMB int    `yaml:"max_mb"`
	} `yaml:"uploads"`
	Upstream struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"upstream"`
}

// Defaults возвращает конфигурацию по умолчанию без API ключей.
func Defaults() *Config {
	return &Config{
		AppPort:        "8080",
		ChatBaseURL:    "https://openrouter.ai/api/v1",
		ChatModel:      "deepseek/deepseek-chat:free",
		ChatReferer:    "https://ai-fashion-advisor.web.app/",
		ChatTitle:      "Outfit Advisor",
		WeatherBaseURL: "https://api.openweathermap.org/data/2.5/weather",
		SimilarityURL:  "http://localhost:5002",
		UploadDir:      "uploads",
		MaxUploadBytes: 10 << 20,
		// Таймаут каждого внешнего вызова
		UpstreamTimeout: 60 * time.Second,
		AllowedOrigins: []string{
			"https://fashion-ai-frontend.onrender.com",
			"https://ai-fashion-advisor.web.app",
			"https://ai-fashion-advisor.firebaseapp.com",
			"http://localhost:3000",
		},
		LogLevel: "info",
	}
}

// Load загружает конфигурацию: env-файл, затем YAML-файл по пути path,
// затем переменные окружения. Отсутствие файлов не является ошибкой.
// Возвращает ошибку, если обязательные ключи не заданы.
func Load(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated работает как Load, но не проверяет обязательные ключи.
// Используется утилитами, которым не нужны внешние API.
func LoadUnvalidated(path string) (*Config, error) {
	// godotenv не перезаписывает уже заданные переменные
	_ = godotenv.Load(getEnv("ENV_FILE", "Api.env"))

	cfg := Defaults()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	var errs []error
	if c.OpenRouterAPIKey == "" {
		errs = append(errs, errors.New("OPENROUTER_API_KEY is not set"))
	}
	if c.OpenWeatherAPIKey == "" {
		errs = append(errs, errors.New("OPENWEATHER_API_KEY is not set"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("at least one CORS origin is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyFile(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&c.AppPort, f.Server.Port)
	setString(&c.LogLevel, f.Server.LogLevel)
	if len(f.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.Server.AllowedOrigins
	}
	setString(&c.ChatBaseURL, f.Chat.BaseURL)
	setString(&c.ChatModel, f.Chat.Model)
	setString(&c.ChatReferer, f.Chat.Referer)
	setString(&c.ChatTitle, f.Chat.Title)
	setString(&c.WeatherBaseURL, f.Weather.BaseURL)
	setString(&c.SimilarityURL, f.Similarity.URL)
	setString(&c.UploadDir, f.Uploads.Dir)
	if f.Uploads.MaxMB > 0 {
		c.MaxUploadBytes = int64(f.Uploads.MaxMB) << 20
	}
	if f.Upstream.TimeoutSeconds > 0 {
		c.UpstreamTimeout = time.Duration(f.Upstream.TimeoutSeconds) * time.Second
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.OpenRouterAPIKey = getEnv("OPENROUTER_API_KEY", c.OpenRouterAPIKey)
	c.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", c.OpenWeatherAPIKey)
	c.ChatBaseURL = getEnv("CHAT_BASE_URL", c.ChatBaseURL)
	c.ChatModel = getEnv("CHAT_MODEL", c.ChatModel)
	c.ChatReferer = getEnv("CHAT_REFERER", c.ChatReferer)
	c.ChatTitle = getEnv("CHAT_TITLE", c.ChatTitle)
	c.WeatherBaseURL = getEnv("WEATHER_BASE_URL", c.WeatherBaseURL)
	c.SimilarityURL = getEnv("SIMILARITY_URL", c.SimilarityURL)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if mb := getEnvInt("MAX_UPLOAD_MB", 0); mb > 0 {
		c.MaxUploadBytes = int64(mb) << 20
	}
	if sec := getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 0); sec > 0 {
		c.UpstreamTimeout = time.Duration(sec) * time.Second
	}
	if origins := getEnvList("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		c.AllowedOrigins = origins
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
