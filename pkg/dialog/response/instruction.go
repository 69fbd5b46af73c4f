package response

import (
	"strings"
)

const (
	KeyReply   = "new_response"
	KeySummary = "old_response_summary"

	noInstructions = "No Additional Instructions Provided"
	noSummary      = "has no chat summary, generate from now"
)

// OutputSchema constrains providers that support structured output to the two-field object
var OutputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		KeyReply:   map[string]any{"type": "string"},
		KeySummary: map[string]any{"type": "string"},
	},
	"required":             []string{KeyReply, KeySummary},
	"additionalProperties": false,
}

// BuildInstruction assembles the single prompt block sent to the model for one turn
func BuildInstruction(role, utterance, summary, grounding string) string {
	if strings.TrimSpace(grounding) == "" {
		grounding = noInstructions
	}
	if strings.TrimSpace(summary) == "" {
		summary = noSummary
	}

	var prompt strings.Builder

	prompt.WriteString("Role: ")
	prompt.WriteString(role)
	prompt.WriteString("\n\n")

	prompt.WriteString("Task:\n")
	prompt.WriteString("1. Write a helpful reply to the user's newest message below.\n")
	prompt.WriteString("2. Rewrite the running chat summary so it covers the whole conversation, including this message and your reply.\n\n")

	prompt.WriteString("Rules:\n")
	prompt.WriteString("- Respond with one valid JSON object and nothing else.\n")
	prompt.WriteString("- The object has exactly two keys:\n")
	prompt.WriteString("  \"" + KeyReply + "\": your plain text reply to the user.\n")
	prompt.WriteString("  \"" + KeySummary + "\": a short cumulative summary of the entire chat so far.\n")
	prompt.WriteString("- No speaker labels such as 'User:' or 'Bot:', no markdown, no code fences.\n")
	prompt.WriteString("- Keep the summary brief and natural; do not copy the previous summary word for word.\n")
	prompt.WriteString("- Use only the facts given under Additional Instructions when they are provided.\n\n")

	prompt.WriteString("Example:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"" + KeyReply + "\": \"Sure, I can help with that. What do you need?\",\n")
	prompt.WriteString("  \"" + KeySummary + "\": \"The user greeted the assistant and asked for help. The assistant offered support.\"\n")
	prompt.WriteString("}\n\n")

	prompt.WriteString("Additional Instructions:\n")
	prompt.WriteString(grounding)
	prompt.WriteString("\n\n")

	prompt.WriteString("Current chat summary:\n")
	prompt.WriteString(summary)
	prompt.WriteString("\n\n")

	prompt.WriteString("User's new message:\n")
	prompt.WriteString(utterance)
	prompt.WriteString("\n")

	return prompt.String()
}
