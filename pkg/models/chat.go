package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Chat Roles
// ============================================================================

// ChatRole represents the role of a chat message sender.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ValidChatRoles contains all valid chat role values.
var ValidChatRoles = []ChatRole{ChatRoleUser, ChatRoleAssistant}

// IsValidChatRole checks if the given role is valid.
func IsValidChatRole(r ChatRole) bool {
	for _, v := range ValidChatRoles {
		if v == r {
			return true
		}
	}
	return false
}

// ============================================================================
// Conversation Key
// ============================================================================

// ConversationKey identifies one persisted AI chat thread. Each user
// holds at most one conversation per project and workflow step.
type ConversationKey struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Step      int       `json:"step"`
}

// String renders the key for logging and in-flight guard lookups.
func (k ConversationKey) String() string {
	return k.ProjectID.String() + ":" + k.UserID.String() + ":" + strconv.Itoa(k.Step)
}

// ============================================================================
// Chat Message
// ============================================================================

// ChatMessage is one message in a planning conversation.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Step      int       `json:"step"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IsFromUser returns true if the message is from a user.
func (m *ChatMessage) IsFromUser() bool {
	return m.Role == ChatRoleUser
}

// IsFromAssistant returns true if the message is from the assistant.
func (m *ChatMessage) IsFromAssistant() bool {
	return m.Role == ChatRoleAssistant
}

// ============================================================================
// Chat Events (for SSE streaming)
// ============================================================================

// ChatEventType represents the type of a streaming chat event.
type ChatEventType string

const (
	ChatEventText    ChatEventType = "text"
	ChatEventDone    ChatEventType = "done"
	ChatEventAborted ChatEventType = "aborted"
	ChatEventError   ChatEventType = "error"
)

// ChatEvent represents a streaming event delivered to the SSE client.
type ChatEvent struct {
	Type    ChatEventType `json:"type"`
	Content string        `json:"content,omitempty"`
}

// NewTextEvent creates a text chunk event.
func NewTextEvent(content string) ChatEvent {
	return ChatEvent{Type: ChatEventText, Content: content}
}

// NewDoneEvent creates a completion event.
func NewDoneEvent() ChatEvent {
	return ChatEvent{Type: ChatEventDone}
}

// NewAbortedEvent creates a cancellation event.
func NewAbortedEvent() ChatEvent {
	return ChatEvent{Type: ChatEventAborted}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err string) ChatEvent {
	return ChatEvent{Type: ChatEventError, Content: err}
}
