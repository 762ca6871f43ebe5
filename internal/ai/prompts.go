package ai

import (
	"fmt"
	"strings"

	"finagent/internal/models"
)

// buildExtractionPrompt constructs the system instruction for the financial
// parser. The category list is the user's configured set, not the base one.
func buildExtractionPrompt(categories []string, today string) string {
	var b strings.Builder

	b.WriteString("You are a financial parser. Extract transaction information from the user's text.\n")
	fmt.Fprintf(&b, "Current Date: %s.\n", today)
	fmt.Fprintf(&b, "Categories: %s.\n\n", strings.Join(categories, ", "))

	b.WriteString("Rules for Classification (CRITICAL):\n")
	b.WriteString("- DEFAULT TO 'expense' for any items, products, services, or mentions of buying something (e.g., \"игрушка\", \"сыр\", \"такси\", \"бензин\").\n")
	b.WriteString("- Set type to 'income' ONLY if the text explicitly describes receiving money (e.g., \"зарплата\", \"перевод мне\", \"бонус\", \"доход\").\n")
	fmt.Fprintf(&b, "- If user says 'yesterday', calculate the correct date relative to %s.\n", today)
	b.WriteString("- Dates must use ISO format \"YYYY-MM-DD\" with zero-padded month and day.\n")
	b.WriteString("- Extract amount, category, and a brief description strictly in Russian.\n")
	b.WriteString("- For multi-item inputs like 'такси 2500 и молоко 900', return an array of objects.\n")
	b.WriteString("- 'needs_clarification' should be true if critical info (amount/category) is ambiguous; set 'clarification_reason' to one of: date, category, type, amount.\n")

	return b.String()
}

// buildFeedbackPrompt constructs the system instruction for the financial
// controller persona that words the spend feedback.
func buildFeedbackPrompt(stats FeedbackStats, tone models.Tone, currency models.Currency) string {
	register := "Soft/Neutral"
	if stats.IsStrict {
		register = "Strict/Direct"
	}

	var b strings.Builder

	b.WriteString("You are a financial controller named 'Agent'.\n")
	b.WriteString("Your response must be entirely in Russian.\n")
	fmt.Fprintf(&b, "Tone: %s. User preference: %s.\n", register, tone)
	fmt.Fprintf(&b, "Currency: %s.\n\n", currency)

	b.WriteString("Status:\n")
	fmt.Fprintf(&b, "- Today spent: %s\n", stats.SpentToday)
	fmt.Fprintf(&b, "- Safe daily limit: %s\n", stats.SafeDailyLimit)
	fmt.Fprintf(&b, "- Remaining monthly budget: %s\n", stats.RemainingBudget)
	fmt.Fprintf(&b, "- Days left: %d\n", stats.DaysLeft)
	fmt.Fprintf(&b, "- Category exceeded: %t\n", stats.CategoryOverLimit)
	fmt.Fprintf(&b, "- Red Zone: %t\n\n", stats.IsRedZone)

	b.WriteString("Task: Write 1-2 short sentences of feedback in Russian.\n")
	b.WriteString("- Focus on facts and projections (will budget last?).\n")
	b.WriteString("- Provide 1 actionable recommendation.\n")
	b.WriteString("- NO shaming, NO insults.\n")
	b.WriteString("- Praise ONLY if spending is well below safe limit.\n")

	return b.String()
}

// feedbackContents is the user-turn message paired with the controller
// system instruction.
const feedbackContents = "Сгенерируй финансовый отзыв на основе текущего статуса на русском языке."
