package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/database"
	"github.com/planstack-io/planstack-engine/pkg/llm"
	"github.com/planstack-io/planstack-engine/pkg/models"
	"github.com/planstack-io/planstack-engine/pkg/prompts"
	"github.com/planstack-io/planstack-engine/pkg/repositories"
)

// sessionState tracks one streaming run through its lifecycle.
type sessionState string

const (
	sessionIdle       sessionState = "idle"
	sessionStreaming  sessionState = "streaming"
	sessionCommitting sessionState = "committing"
	sessionCancelled  sessionState = "cancelled"
)

// streamSession enforces the lifecycle of one streaming run. Tokens are
// only accepted while streaming, a cancelled run can never commit, and a
// committed run returns to idle. Transitions outside these edges are
// programming errors and fail the run.
type streamSession struct {
	state sessionState
}

func newStreamSession() *streamSession {
	return &streamSession{state: sessionIdle}
}

func (s *streamSession) is(state sessionState) bool {
	return s.state == state
}

func (s *streamSession) transition(next sessionState) error {
	var ok bool
	switch s.state {
	case sessionIdle:
		ok = next == sessionStreaming
	case sessionStreaming:
		ok = next == sessionCommitting || next == sessionCancelled
	case sessionCommitting:
		ok = next == sessionIdle
	}
	if !ok {
		return fmt.Errorf("invalid stream session transition %s -> %s", s.state, next)
	}
	s.state = next
	return nil
}

// ConversationService manages per-(project, user, step) planning
// conversations and the token stream that feeds them.
type ConversationService interface {
	// Load returns the persisted messages for a key. When the
	// conversation is empty, welcome carries a synthesized greeting that
	// is never stored.
	Load(ctx context.Context, key models.ConversationKey) (messages []*models.ChatMessage, welcome string, err error)

	// SendMessage streams an assistant reply to the user's message,
	// emitting events on the channel as tokens arrive. On natural
	// completion the user and assistant messages are committed together;
	// on cancellation nothing is persisted.
	SendMessage(ctx context.Context, key models.ConversationKey, userText string, events chan<- models.ChatEvent) error

	// Clear deletes the conversation. Irreversible.
	Clear(ctx context.Context, key models.ConversationKey) error
}

type conversationService struct {
	chats          repositories.ChatRepository
	client         llm.CompletionClient
	guard          StreamGuard
	tx             database.TxRunner
	historyLimit   int
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewConversationService creates a new ConversationService. historyLimit
// caps how many persisted messages are sent to the completion service as
// context; requestTimeout bounds each streaming call.
func NewConversationService(
	chats repositories.ChatRepository,
	client llm.CompletionClient,
	guard StreamGuard,
	tx database.TxRunner,
	historyLimit int,
	requestTimeout time.Duration,
	logger *zap.Logger,
) ConversationService {
	return &conversationService{
		chats:          chats,
		client:         client,
		guard:          guard,
		tx:             tx,
		historyLimit:   historyLimit,
		requestTimeout: requestTimeout,
		logger:         logger.Named("conversation"),
	}
}

var _ ConversationService = (*conversationService)(nil)

func (s *conversationService) Load(ctx context.Context, key models.ConversationKey) ([]*models.ChatMessage, string, error) {
	messages, err := s.chats.GetHistory(ctx, key, 0)
	if err != nil {
		return nil, "", err
	}
	if len(messages) == 0 {
		return []*models.ChatMessage{}, prompts.WelcomeMessage(key.Step), nil
	}
	return messages, "", nil
}

func (s *conversationService) SendMessage(ctx context.Context, key models.ConversationKey, userText string, events chan<- models.ChatEvent) error {
	if userText == "" {
		return fmt.Errorf("%w: message must not be empty", apperrors.ErrValidation)
	}
	if !models.IsValidWorkflowStep(key.Step) {
		return fmt.Errorf("%w: step %d out of range", apperrors.ErrValidation, key.Step)
	}

	acquired, err := s.guard.Acquire(ctx, key.String())
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: a reply is already streaming for this conversation", apperrors.ErrStreamBusy)
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key.String()); err != nil {
			s.logger.Warn("Failed to release stream guard",
				zap.String("key", key.String()), zap.Error(err))
		}
	}()

	session := newStreamSession()
	if err := session.transition(sessionStreaming); err != nil {
		return err
	}
	s.logger.Debug("Stream session started", zap.String("key", key.String()))

	history, err := s.chats.GetHistory(ctx, key, s.historyLimit)
	if err != nil {
		return err
	}

	llmMessages := make([]llm.Message, 0, len(history)+1)
	for _, msg := range history {
		llmMessages = append(llmMessages, llm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	llmMessages = append(llmMessages, llm.Message{Role: llm.RoleUser, Content: userText})

	var assistantText strings.Builder
	streamCtx, cancelStream := context.WithTimeout(ctx, s.requestTimeout)
	defer cancelStream()
	streamErr := s.client.StreamChat(streamCtx, llmMessages, prompts.ConversationSystemMessage(key.Step), func(chunk string) error {
		if !session.is(sessionStreaming) {
			return fmt.Errorf("token received in state %s", session.state)
		}
		assistantText.WriteString(chunk)
		events <- models.NewTextEvent(chunk)
		return nil
	})

	if streamErr != nil {
		if errors.Is(streamErr, context.Canceled) || errors.Is(streamErr, context.DeadlineExceeded) {
			if ctx.Err() == nil {
				// The request timeout fired, not the caller.
				return fmt.Errorf("completion stream timed out after %s: %w", s.requestTimeout, streamErr)
			}
			// Partial text is discarded; the conversation stays at its
			// last committed state.
			if err := session.transition(sessionCancelled); err != nil {
				return err
			}
			s.logger.Info("Stream session cancelled",
				zap.String("key", key.String()),
				zap.String("state", string(session.state)))
			events <- models.NewAbortedEvent()
			return fmt.Errorf("%w: stream cancelled by caller", apperrors.ErrAborted)
		}
		return fmt.Errorf("stream failed: %w", streamErr)
	}

	if err := session.transition(sessionCommitting); err != nil {
		return err
	}
	s.logger.Debug("Stream session committing",
		zap.String("key", key.String()),
		zap.String("state", string(session.state)))

	commitCtx := context.WithoutCancel(ctx)
	err = s.tx.WithTx(commitCtx, func(q database.Querier) error {
		pair := []*models.ChatMessage{
			{
				ProjectID: key.ProjectID,
				UserID:    key.UserID,
				Step:      key.Step,
				Role:      models.ChatRoleUser,
				Content:   userText,
			},
			{
				ProjectID: key.ProjectID,
				UserID:    key.UserID,
				Step:      key.Step,
				Role:      models.ChatRoleAssistant,
				Content:   assistantText.String(),
			},
		}
		return s.chats.SaveMessages(commitCtx, q, pair)
	})
	if err != nil {
		return fmt.Errorf("failed to commit conversation pair: %w", err)
	}

	if err := session.transition(sessionIdle); err != nil {
		return err
	}
	s.logger.Debug("Stream session completed",
		zap.String("key", key.String()),
		zap.String("state", string(session.state)))
	events <- models.NewDoneEvent()
	return nil
}

func (s *conversationService) Clear(ctx context.Context, key models.ConversationKey) error {
	return s.tx.WithTx(ctx, func(q database.Querier) error {
		return s.chats.Clear(ctx, q, key)
	})
}
