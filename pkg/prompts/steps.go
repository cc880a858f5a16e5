package prompts

import "fmt"

// StepInfo describes one phase of the nine-step planning workflow.
type StepInfo struct {
	Name  string
	Focus string
}

// stepCatalog maps each workflow step to its planning phase. Every step
// from 1 to 9 must be present.
var stepCatalog = map[int]StepInfo{
	1: {Name: "Service Overview", Focus: "the service concept, the problem it solves, and the value proposition"},
	2: {Name: "Target Audience & Market", Focus: "target users, personas, market size, and competitive landscape"},
	3: {Name: "Core Features", Focus: "the core feature set, priorities, and scope boundaries"},
	4: {Name: "UI/UX Design Guide", Focus: "screen flows, interaction patterns, and design principles"},
	5: {Name: "Technical Architecture", Focus: "system architecture, technology choices, and data model"},
	6: {Name: "Business Model", Focus: "revenue streams, pricing, and cost structure"},
	7: {Name: "Launch Plan", Focus: "go-to-market strategy, milestones, and release phases"},
	8: {Name: "Operations & Metrics", Focus: "operational processes, KPIs, and success criteria"},
	9: {Name: "Content & Marketing", Focus: "content strategy, messaging, and marketing copy"},
}

// StepName returns the display name of a workflow step, or an empty
// string for an unmapped step.
func StepName(step int) string {
	return stepCatalog[step].Name
}

// ConversationSystemMessage returns the system instructions for the
// assistant during a planning conversation at the given step.
func ConversationSystemMessage(step int) string {
	info := stepCatalog[step]
	return fmt.Sprintf(`You are a planning assistant helping a team write their %q planning document (step %d of 9).
Focus the discussion on %s.
Ask clarifying questions when the user's intent is ambiguous, keep answers concrete, and refer back to decisions made earlier in this conversation.`,
		info.Name, step, info.Focus)
}

// WelcomeMessage returns the assistant greeting shown when a
// conversation at the given step has no history yet. It is presentation
// only and is never persisted.
func WelcomeMessage(step int) string {
	info := stepCatalog[step]
	return fmt.Sprintf("Welcome to step %d: %s. Let's work on %s. Tell me about your project and I'll help you shape this document.",
		step, info.Name, info.Focus)
}
