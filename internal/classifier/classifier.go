// Package classifier определяет предметы одежды и стиль на фото по оценкам
// модели сходства изображения и текста.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // регистрация декодера
	_ "image/jpeg" // регистрация декодера
	_ "image/png"  // регистрация декодера
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp" // регистрация декодера

	"github.com/akozadaev/go_fashion_advisor/internal/fault"
	"github.com/akozadaev/go_fashion_advisor/internal/models"
)

// Словари меток. Порядок определяет разрешение равных вероятностей.
var (
	GarmentLabels = []string{"suit", "t-shirt", "jeans", "dress", "jacket", "shorts", "skirt", "hoodie", "shirt", "sweater"}
	StyleLabels   = []string{"casual", "formal", "sporty", "elegant", "bohemian", "streetwear"}
)

const (
	topK = 3

	FallbackFeedback    = "Error analyzing outfit."
	FallbackDescription = "Outfit analysis failed."
)

// Scorer оценивает сходство изображения с каждой меткой.
// Возвращает по одной сырой оценке на метку в порядке labels.
type Scorer interface {
	Score(ctx context.Context, image []byte, filename string, labels []string) ([]float64, error)
}

// Classifier ранжирует метки обоих словарей для изображения.
// Не хранит изменяемого состояния и безопасен для параллельного использования.
type Classifier struct {
	scorer Scorer
}

// New создает классификатор поверх scorer
func New(scorer Scorer) *Classifier {
	return &Classifier{scorer: scorer}
}

// Fallback возвращает фиксированный результат для неудавшегося анализа.
func Fallback() models.Analysis {
	return models.Analysis{Feedback: FallbackFeedback, OutfitDescription: FallbackDescription}
}

// Rank читает изображение по пути imagePath и возвращает топ-3 предметов и стилей.
func (c *Classifier) Rank(ctx context.Context, imagePath string) (*models.ClassificationResult, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fault.New(fault.KindInternal, "classifier.read", err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fault.New(fault.KindInvalid, "classifier.decode", fmt.Errorf("unsupported image: %w", err))
	}

	filename := filepath.Base(imagePath)
	garments, err := c.rankVocabulary(ctx, data, filename, GarmentLabels)
	if err != nil {
		return nil, err
	}
	styles, err := c.rankVocabulary(ctx, data, filename, StyleLabels)
	if err != nil {
		return nil, err
	}

	return &models.ClassificationResult{Garments: garments, Styles: styles}, nil
}

// Classify возвращает текстовый отзыв о стиле и описание образа.
func (c *Classifier) Classify(ctx context.Context, imagePath string) (models.Analysis, error) {
	result, err := c.Rank(ctx, imagePath)
	if err != nil {
		return models.Analysis{}, err
	}
	return Describe(result), nil
}

// Describe собирает тексты из результата классификации
func Describe(result *models.ClassificationResult) models.Analysis {
	s, g := labelsOf(result.Styles), labelsOf(result.Garments)
	return models.Analysis{
		Feedback:          fmt.Sprintf("This outfit is %s! It also works well for %s and %s.", s[0], s[1], s[2]),
		OutfitDescription: fmt.Sprintf("The outfit includes a %s, %s, and %s.", g[0], g[1], g[2]),
	}
}

func (c *Classifier) rankVocabulary(ctx context.Context, data []byte, filename string, labels []string) ([]models.Prediction, error) {
	logits, err := c.scorer.Score(ctx, data, filename, labels)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fault.New(fault.KindInternal, "classifier.score", err)
		}
		return nil, fault.New(fault.KindUpstream, "classifier.score", err)
	}
	if len(logits) != len(labels) {
		return nil, fault.New(fault.KindMalformed, "classifier.score",
			fmt.Errorf("got %d scores for %d labels", len(logits), len(labels)))
	}

	probs, err := Softmax(logits)
	if err != nil {
		return nil, fault.New(fault.KindMalformed, "classifier.softmax", err)
	}
	return TopK(labels, probs, topK), nil
}

func labelsOf(predictions []models.Prediction) []string {
	out := make([]string, topK)
	for i := range out {
		if i < len(predictions) {
			out[i] = predictions[i].Label
		}
	}
	return out
}
