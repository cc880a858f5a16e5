package prompts

import (
	"fmt"
	"strings"
)

// TranscriptMessage is one turn of a planning conversation included in a
// generation request.
type TranscriptMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// BuildGenerationPrompt creates the prompt that synthesizes a planning
// document from a conversation transcript. The response format is JSON
// with title and content fields.
func BuildGenerationPrompt(step int, transcript []TranscriptMessage) string {
	info := stepCatalog[step]

	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("# Planning Document Synthesis: %s\n\n", info.Name))
	prompt.WriteString(fmt.Sprintf("Synthesize the conversation below into a complete %q planning document (workflow step %d of 9) covering %s.\n\n", info.Name, step, info.Focus))

	prompt.WriteString("## Conversation\n\n")
	for _, msg := range transcript {
		prompt.WriteString(fmt.Sprintf("**%s**: %s\n\n", msg.Role, msg.Content))
	}

	prompt.WriteString("## Requirements\n\n")
	prompt.WriteString("- Write the document body in Markdown with clear section headings\n")
	prompt.WriteString("- Capture every decision made in the conversation; do not invent details the user never mentioned\n")
	prompt.WriteString("- Where the conversation left a point open, note it as an open item rather than guessing\n")
	prompt.WriteString("- The title must be specific to this project, at most 200 characters\n\n")

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("Respond in JSON with:\n")
	prompt.WriteString("- `title`: The document title\n")
	prompt.WriteString("- `content`: The full Markdown document body\n\n")

	prompt.WriteString("Example:\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{
  "title": "Service Overview: Meal-Kit Subscription for Busy Parents",
  "content": "# Service Overview\n\n## Problem\n..."
}
`)
	prompt.WriteString("```\n\n")

	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}

// GenerationSystemMessage returns the system message for document
// generation at the given step.
func GenerationSystemMessage(step int) string {
	info := stepCatalog[step]
	return fmt.Sprintf("You are an expert service planner. Your task is to turn a planning conversation into a well-structured %q document, faithful to what was discussed.", info.Name)
}
