// Package advice генерирует текстовые советы по образу через
// OpenAI-совместимый chat-completion API (OpenRouter).
package advice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/akozadaev/go_fashion_advisor/internal/fault"
)

// Config содержит параметры подключения к провайдеру
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Referer string // HTTP-Referer, атрибуция приложения в OpenRouter
	Title   string // X-Title
	Timeout time.Duration
}

// Generator отправляет один запрос на каждый совет, без повторов.
type Generator struct {
	client openai.Client
	model  string
}

// New создает генератор. Дополнительные опции применяются последними.
func New(cfg Config, opts ...option.RequestOption) *Generator {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.Referer != "" {
		reqOpts = append(reqOpts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Title", cfg.Title))
	}
	reqOpts = append(reqOpts, opts...)

	return &Generator{
		client: openai.NewClient(reqOpts...),
		model:  cfg.Model,
	}
}

// SuggestOutfits предлагает 3 новых образа в заданном стиле.
func (g *Generator) SuggestOutfits(ctx context.Context, style string) (string, error) {
	return g.complete(ctx, "suggestions", suggestSystemPrompt, suggestUserPrompt(style))
}

// RemixOutfit предлагает 3 способа переосмыслить описанный образ.
func (g *Generator) RemixOutfit(ctx context.Context, description string) (string, error) {
	return g.complete(ctx, "remixing suggestions", remixSystemPrompt, remixUserPrompt(description))
}

func (g *Generator) complete(ctx context.Context, subject, system, user string) (string, error) {
	slog.DebugContext(ctx, "sending chat completion request", slog.String("model", g.model), slog.String("subject", subject))

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", classify(subject, err)
	}

	if len(completion.Choices) == 0 {
		msg := fmt.Sprintf("Error: No 'choices' found in API response: %s", completion.RawJSON())
		return "", fault.WithMessage(fault.KindMalformed, "advice."+subject, msg, nil)
	}
	return completion.Choices[0].Message.Content, nil
}

// classify отделяет сетевые ошибки и ошибочные статусы от прочих сбоев.
func classify(subject string, err error) error {
	op := "advice." + subject

	var apiErr *openai.Error
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &apiErr) || errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return fault.WithMessage(fault.KindUpstream, op, "Network error during API call: "+err.Error(), err)
	}
	return fault.WithMessage(fault.KindMalformed, op, fmt.Sprintf("Error generating %s: %s", subject, err.Error()), err)
}
