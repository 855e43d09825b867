// Package similarity содержит HTTP клиент сервиса оценки сходства
// изображения и текстовых меток (CLIP).
package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client обращается к сервису, который держит загруженную модель и процессор.
// Сервис отвечает строкой logits_per_image: по одному значению на метку.
type Client struct {
	serviceURL string
	client     *http.Client
}

type scoreResponse struct {
	Logits []float64 `json:"logits"`
}

// NewClient создает клиент сервиса сходства
func NewClient(serviceURL string, timeout time.Duration) *Client {
	if serviceURL == "" {
		serviceURL = "http://localhost:5002"
	}
	return &Client{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		client:     &http.Client{Timeout: timeout},
	}
}

// HealthCheck проверяет, что сервис запущен и модель загружена
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serviceURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("similarity service not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("similarity service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Score возвращает сырые оценки сходства изображения с каждой меткой в порядке labels.
func (c *Client) Score(ctx context.Context, image []byte, filename string, labels []string) ([]float64, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("at least one label is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	for _, label := range labels {
		if err := writer.WriteField("labels", label); err != nil {
			return nil, fmt.Errorf("failed to write label: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/score", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("similarity service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Logits) != len(labels) {
		return nil, fmt.Errorf("similarity service returned %d scores for %d labels", len(out.Logits), len(labels))
	}
	return out.Logits, nil
}
