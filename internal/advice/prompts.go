package advice

import "fmt"

const suggestSystemPrompt = "You are a fashion advisor. Provide 3 concise outfit suggestions based on the user's style. For each suggestion, include:\n" +
	"- **Top**: The top to wear.\n" +
	"- **Bottom**: The bottom to wear.\n" +
	"- **Footwear**: Recommended footwear.\n" +
	"- **Accessories**: Recommended accessories.\n" +
	"Each suggestion should be a single line, starting with a number and a name (e.g., '1. **Casual Chic**'). " +
	"Do not include explanations or introductions so only give the bullet points dont speak to yourself."

const remixSystemPrompt = "You are a fashion advisor. Provide 3 concise and actionable ways to remix the user's outfit. For each suggestion, include:\n" +
	"- **Swap**: What to change.\n" +
	"- **Footwear**: Recommended footwear.\n" +
	"- **Accessories**: Recommended accessories.\n" +
	"Each suggestion should be a single line, starting with a number and a name (e.g., '1. **Streetwear Edge**'). " +
	"Do not include explanations or introductions."

func suggestUserPrompt(style string) string {
	return fmt.Sprintf("Suggest 3 outfits for a %s look. Keep it short and simple.", style)
}

func remixUserPrompt(description string) string {
	return fmt.Sprintf("The user is wearing: %s. Suggest 3 ways to remix this outfit.", description)
}
