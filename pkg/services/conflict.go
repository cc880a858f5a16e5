package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/llm"
	"github.com/planstack-io/planstack-engine/pkg/models"
	"github.com/planstack-io/planstack-engine/pkg/prompts"
	"github.com/planstack-io/planstack-engine/pkg/repositories"
	"github.com/planstack-io/planstack-engine/pkg/retry"
)

// ConflictService checks a candidate document against the project's
// official and pending documents for contradictions.
type ConflictService interface {
	// Analyze runs one conflict analysis. excludeID skips the
	// candidate's own document when it already exists. The result is
	// ephemeral and never persisted.
	Analyze(ctx context.Context, projectID uuid.UUID, candidateTitle, candidateContent string, step int, excludeID *uuid.UUID) (*models.ConflictAnalysisResult, error)
}

type conflictService struct {
	docs           repositories.DocumentRepository
	client         llm.CompletionClient
	retryCfg       *retry.Config
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewConflictService creates a new ConflictService. Completion calls are
// bounded by requestTimeout.
func NewConflictService(
	docs repositories.DocumentRepository,
	client llm.CompletionClient,
	retryCfg *retry.Config,
	requestTimeout time.Duration,
	logger *zap.Logger,
) ConflictService {
	return &conflictService{
		docs:           docs,
		client:         client,
		retryCfg:       retryCfg,
		requestTimeout: requestTimeout,
		logger:         logger.Named("conflict-analysis"),
	}
}

var _ ConflictService = (*conflictService)(nil)

func (s *conflictService) Analyze(ctx context.Context, projectID uuid.UUID, candidateTitle, candidateContent string, step int, excludeID *uuid.UUID) (*models.ConflictAnalysisResult, error) {
	if !models.IsValidWorkflowStep(step) {
		return nil, fmt.Errorf("%w: step %d out of range", apperrors.ErrValidation, step)
	}
	if err := models.ValidateTitleAndContent(candidateTitle, candidateContent); err != nil {
		return nil, err
	}

	siblings, err := s.docs.ListSiblings(ctx, projectID, excludeID)
	if err != nil {
		return nil, err
	}

	// No siblings, nothing to contradict. The completion service is not
	// consulted.
	if len(siblings) == 0 {
		return models.NoConflicts("No official or pending documents to compare against."), nil
	}

	contexts := make([]prompts.SiblingContext, 0, len(siblings))
	for _, doc := range siblings {
		contexts = append(contexts, prompts.SiblingContext{
			ID:      doc.ID.String(),
			Step:    doc.Step,
			Title:   doc.Title,
			Status:  string(doc.Status),
			Content: doc.Content,
		})
	}

	prompt := prompts.BuildConflictAnalysisPrompt(candidateTitle, candidateContent, step, contexts)
	system := prompts.ConflictAnalysisSystemMessage()

	var response string
	err = retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
		var callErr error
		response, callErr = s.client.Complete(callCtx, prompt, system, 0.2)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: completion call failed: %v", apperrors.ErrAnalysisFailed, err)
	}

	result, err := llm.ParseJSONResponse[models.ConflictAnalysisResult](response)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed completion response: %v", apperrors.ErrAnalysisFailed, err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info("Conflict analysis completed",
		zap.String("project_id", projectID.String()),
		zap.Int("step", step),
		zap.Int("siblings", len(siblings)),
		zap.String("level", string(result.ConflictLevel)))
	return &result, nil
}
