package prompts

import (
	"fmt"
	"strings"
)

// SiblingContext provides one existing project document for conflict
// analysis.
type SiblingContext struct {
	ID      string
	Step    int
	Title   string
	Status  string
	Content string
}

// BuildConflictAnalysisPrompt creates the prompt that checks a candidate
// document against the project's official and pending documents. The
// response format is JSON matching ConflictAnalysisResult.
func BuildConflictAnalysisPrompt(candidateTitle, candidateContent string, step int, siblings []SiblingContext) string {
	var prompt strings.Builder

	prompt.WriteString("# Planning Document Conflict Analysis\n\n")
	prompt.WriteString("Analyze whether the candidate document below contradicts any of the project's existing planning documents.\n\n")

	prompt.WriteString("## Candidate Document\n\n")
	prompt.WriteString(fmt.Sprintf("Step: %d (%s)\n", step, StepName(step)))
	prompt.WriteString(fmt.Sprintf("Title: %s\n\n", candidateTitle))
	prompt.WriteString(candidateContent)
	prompt.WriteString("\n\n")

	prompt.WriteString("## Existing Documents\n\n")
	for i, s := range siblings {
		prompt.WriteString(fmt.Sprintf("### Document %d: %s\n", i+1, s.Title))
		prompt.WriteString(fmt.Sprintf("- **ID**: %s\n", s.ID))
		prompt.WriteString(fmt.Sprintf("- **Step**: %d (%s)\n", s.Step, StepName(s.Step)))
		prompt.WriteString(fmt.Sprintf("- **Status**: %s\n\n", s.Status))
		prompt.WriteString(s.Content)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("## Analysis Guidelines\n\n")
	prompt.WriteString("A conflict is a concrete contradiction: incompatible target audiences, mutually exclusive feature decisions, mismatched pricing or revenue models, architecture choices that cannot support a stated feature, or timelines that contradict each other.\n")
	prompt.WriteString("Differences in tone, level of detail, or scope are NOT conflicts.\n\n")
	prompt.WriteString("Severity levels:\n")
	prompt.WriteString("- `low`: minor inconsistency, easy to reconcile with a small edit\n")
	prompt.WriteString("- `medium`: real contradiction that needs a decision from the team\n")
	prompt.WriteString("- `high`: fundamental contradiction that blocks approval until resolved\n\n")
	prompt.WriteString("Overall conflict level: `none` (no conflicts), `minor` (only low severity), `major` (any medium severity), `critical` (any high severity).\n\n")

	prompt.WriteString("## Output Format\n\n")
	prompt.WriteString("Respond in JSON with:\n")
	prompt.WriteString("- `has_conflicts`: boolean\n")
	prompt.WriteString("- `conflict_level`: one of \"none\", \"minor\", \"major\", \"critical\"\n")
	prompt.WriteString("- `conflicts`: array (empty when has_conflicts is false)\n")
	prompt.WriteString("  - `type`: short label for the kind of contradiction\n")
	prompt.WriteString("  - `description`: what contradicts what, with specifics\n")
	prompt.WriteString("  - `conflicting_document_id`: the ID of the existing document involved\n")
	prompt.WriteString("  - `severity`: one of \"low\", \"medium\", \"high\"\n")
	prompt.WriteString("  - `suggestion`: how to resolve it (optional)\n")
	prompt.WriteString("- `recommendations`: array of overall suggestions (may be empty)\n")
	prompt.WriteString("- `summary`: 1-2 sentence overall assessment\n\n")

	prompt.WriteString("Example:\n")
	prompt.WriteString("```json\n")
	prompt.WriteString(`{
  "has_conflicts": true,
  "conflict_level": "major",
  "conflicts": [
    {
      "type": "pricing_mismatch",
      "description": "Candidate proposes a free tier while the Business Model document commits to paid-only subscriptions.",
      "conflicting_document_id": "abc-123",
      "severity": "medium",
      "suggestion": "Align on whether a free tier exists before approval."
    }
  ],
  "recommendations": ["Review pricing strategy with the business model owner."],
  "summary": "One pricing contradiction with the official business model document."
}
`)
	prompt.WriteString("```\n\n")

	prompt.WriteString("Return ONLY the JSON, no additional text.\n")

	return prompt.String()
}

// ConflictAnalysisSystemMessage returns the system message for conflict
// analysis.
func ConflictAnalysisSystemMessage() string {
	return `You are a planning consistency reviewer. Your task is to find concrete contradictions between a candidate planning document and the documents a project has already agreed on.`
}
