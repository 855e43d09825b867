package classifier

import (
	"fmt"
	"math"
	"sort"

	"github.com/akozadaev/go_fashion_advisor/internal/models"
)

// Softmax переводит сырые оценки в распределение вероятностей.
// Из оценок вычитается максимум, чтобы exp не переполнялся.
func Softmax(logits []float64) ([]float64, error) {
	if len(logits) == 0 {
		return nil, fmt.Errorf("empty score vector")
	}

	maxLogit := math.Inf(-1)
	for _, v := range logits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("score vector contains non-finite value %v", v)
		}
		if v > maxLogit {
			maxLogit = v
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(v - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// TopK возвращает k меток с наибольшей вероятностью по убыванию.
// При равенстве сохраняется порядок словаря.
func TopK(labels []string, probs []float64, k int) []models.Prediction {
	ranked := make([]models.Prediction, len(labels))
	for i, label := range labels {
		ranked[i] = models.Prediction{Label: label, Confidence: probs[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
