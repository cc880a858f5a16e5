package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/llm"
	"github.com/planstack-io/planstack-engine/pkg/models"
	"github.com/planstack-io/planstack-engine/pkg/prompts"
	"github.com/planstack-io/planstack-engine/pkg/repositories"
	"github.com/planstack-io/planstack-engine/pkg/retry"
)

// generatedDocument is the structured completion response for document
// synthesis.
type generatedDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GenerationService turns a planning conversation into a document draft.
type GenerationService interface {
	// Generate synthesizes a document from the conversation at key. The
	// first generation creates a private draft; later generations save
	// onto the caller's existing draft for that step.
	Generate(ctx context.Context, key models.ConversationKey, actor *models.Actor) (*models.PlanningDocument, error)
}

type generationService struct {
	chats          repositories.ChatRepository
	docs           repositories.DocumentRepository
	documents      DocumentService
	client         llm.CompletionClient
	retryCfg       *retry.Config
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewGenerationService creates a new GenerationService. Completion calls
// are bounded by requestTimeout.
func NewGenerationService(
	chats repositories.ChatRepository,
	docs repositories.DocumentRepository,
	documents DocumentService,
	client llm.CompletionClient,
	retryCfg *retry.Config,
	requestTimeout time.Duration,
	logger *zap.Logger,
) GenerationService {
	return &generationService{
		chats:          chats,
		docs:           docs,
		documents:      documents,
		client:         client,
		retryCfg:       retryCfg,
		requestTimeout: requestTimeout,
		logger:         logger.Named("generation"),
	}
}

var _ GenerationService = (*generationService)(nil)

func (s *generationService) Generate(ctx context.Context, key models.ConversationKey, actor *models.Actor) (*models.PlanningDocument, error) {
	if !models.IsValidWorkflowStep(key.Step) {
		return nil, fmt.Errorf("%w: step %d out of range", apperrors.ErrValidation, key.Step)
	}

	history, err := s.chats.GetHistory(ctx, key, 0)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: conversation has no messages to synthesize from", apperrors.ErrValidation)
	}

	transcript := make([]prompts.TranscriptMessage, 0, len(history))
	for _, msg := range history {
		transcript = append(transcript, prompts.TranscriptMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	prompt := prompts.BuildGenerationPrompt(key.Step, transcript)
	system := prompts.GenerationSystemMessage(key.Step)

	var response string
	err = retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
		var callErr error
		response, callErr = s.client.Complete(callCtx, prompt, system, 0.7)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: completion call failed: %v", apperrors.ErrGenerationFailed, err)
	}

	generated, err := llm.ParseJSONResponse[generatedDocument](response)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed completion response: %v", apperrors.ErrGenerationFailed, err)
	}
	if err := models.ValidateTitleAndContent(generated.Title, generated.Content); err != nil {
		return nil, fmt.Errorf("%w: generated document rejected: %v", apperrors.ErrGenerationFailed, err)
	}

	// Regeneration targets the caller's existing draft for this step.
	draft, err := s.docs.GetDraftByCreator(ctx, key.ProjectID, key.Step, key.UserID)
	if err != nil {
		return nil, err
	}

	summary := "Generated from conversation"
	if draft != nil {
		doc, err := s.documents.Save(ctx, draft.ID, generated.Title, generated.Content, actor, &summary)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Regenerated document from conversation",
			zap.String("document_id", doc.ID.String()),
			zap.Int("step", key.Step),
			zap.Int("version", doc.Version))
		return doc, nil
	}

	doc, err := s.documents.Create(ctx, key.ProjectID, key.Step, generated.Title, generated.Content, key.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Generated document from conversation",
		zap.String("document_id", doc.ID.String()),
		zap.Int("step", key.Step))
	return doc, nil
}
