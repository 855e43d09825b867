package models

// Weather conditions, к которым сводится основное состояние погоды провайдера.
const (
	ConditionRain  = "rain"
	ConditionSnow  = "snow"
	ConditionClear = "clear"
	ConditionOther = "other"
)

// Prediction представляет одну метку словаря с вероятностью
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ClassificationResult представляет топ-3 предметов одежды и топ-3 стилей.
// Оба списка отсортированы по убыванию вероятности.
type ClassificationResult struct {
	Garments []Prediction `json:"garments"`
	Styles   []Prediction `json:"styles"`
}

// Analysis представляет текстовый итог классификации
type Analysis struct {
	Feedback          string `json:"feedback"`
	OutfitDescription string `json:"outfit_description"`
}

// Coordinates представляет географические координаты
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherSnapshot представляет текущую погоду в точке
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"` // °C
	Condition   string  `json:"condition"`   // rain, snow, clear, other
	Summary     string  `json:"summary"`     // исходное состояние провайдера в нижнем регистре
}

// AdviceResponse представляет ответ POST /upload
type AdviceResponse struct {
	Feedback               string `json:"feedback"`
	Recommendations        string `json:"recommendations"`
	WeatherRecommendations string `json:"weather_recommendations"`
	RemixingSuggestions    string `json:"remixing_suggestions"`
}

// ErrorResponse представляет тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse представляет ответ проверки доступности
type StatusResponse struct {
	Status string `json:"status"`
}
