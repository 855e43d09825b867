package weather

import (
	"strings"

	"github.com/akozadaev/go_fashion_advisor/internal/models"
)

// NoDataAdvice возвращается, когда снимок погоды недоступен.
const NoDataAdvice = "Unable to provide weather-based recommendations due to a problem fetching weather data."

var negations = map[string]bool{"no": true, "without": true}

// Advise объединяет погоду и отзыв об образе в короткий совет.
// Результат зависит только от аргументов.
func Advise(snapshot *models.WeatherSnapshot, feedback string) string {
	if snapshot == nil {
		return NoDataAdvice
	}

	var b strings.Builder
	temp := snapshot.Temperature
	switch {
	case temp < 10:
		b.WriteString("It's very cold! ")
		if mentions(feedback, "shorts") {
			b.WriteString("Consider wearing pants instead of shorts. ")
		}
		if !mentions(feedback, "jacket") {
			b.WriteString("You should wear a jacket. ")
		}
	case temp < 20:
		b.WriteString("It's a bit chilly. ")
		if mentions(feedback, "shorts") {
			b.WriteString("Consider wearing pants. ")
		}
		if !mentions(feedback, "jacket") {
			b.WriteString("A light jacket might be a good idea. ")
		}
	default:
		b.WriteString("It's warm! ")
		if mentions(feedback, "jacket") {
			b.WriteString("You might want to take off your jacket. ")
		}
		if mentions(feedback, "pants") {
			b.WriteString("Consider wearing shorts. ")
		}
	}

	condition := strings.ToLower(snapshot.Condition)
	switch {
	case strings.Contains(condition, models.ConditionRain):
		b.WriteString("It's raining. Don't forget an umbrella or a raincoat!")
	case strings.Contains(condition, models.ConditionSnow):
		b.WriteString("It's snowing. Bundle up and stay warm!")
	case strings.Contains(condition, models.ConditionClear):
		b.WriteString("The weather is clear. Enjoy your day!")
	}
	return b.String()
}

// mentions сообщает, упомянута ли вещь в тексте хотя бы раз без отрицания перед ней.
func mentions(text, garment string) bool {
	text = strings.ToLower(text)
	for offset := 0; ; {
		i := strings.Index(text[offset:], garment)
		if i < 0 {
			return false
		}
		pos := offset + i
		if !negated(text[:pos]) {
			return true
		}
		offset = pos + len(garment)
	}
}

func negated(prefix string) bool {
	words := strings.Fields(prefix)
	if len(words) == 0 {
		return false
	}
	return negations[strings.Trim(words[len(words)-1], ",.;:!?")]
}
