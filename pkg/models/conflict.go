package models

import (
	"fmt"

	"github.com/planstack-io/planstack-engine/pkg/apperrors"
)

// ============================================================================
// Conflict Levels and Severities
// ============================================================================

// ConflictLevel is the overall assessment of a conflict analysis run.
type ConflictLevel string

const (
	ConflictLevelNone     ConflictLevel = "none"
	ConflictLevelMinor    ConflictLevel = "minor"
	ConflictLevelMajor    ConflictLevel = "major"
	ConflictLevelCritical ConflictLevel = "critical"
)

// ValidConflictLevels contains all valid conflict level values.
var ValidConflictLevels = []ConflictLevel{
	ConflictLevelNone,
	ConflictLevelMinor,
	ConflictLevelMajor,
	ConflictLevelCritical,
}

// IsValidConflictLevel checks if the given level is valid.
func IsValidConflictLevel(l ConflictLevel) bool {
	for _, v := range ValidConflictLevels {
		if v == l {
			return true
		}
	}
	return false
}

// ConflictSeverity grades a single detected conflict.
type ConflictSeverity string

const (
	ConflictSeverityLow    ConflictSeverity = "low"
	ConflictSeverityMedium ConflictSeverity = "medium"
	ConflictSeverityHigh   ConflictSeverity = "high"
)

// ValidConflictSeverities contains all valid severity values.
var ValidConflictSeverities = []ConflictSeverity{
	ConflictSeverityLow,
	ConflictSeverityMedium,
	ConflictSeverityHigh,
}

// IsValidConflictSeverity checks if the given severity is valid.
func IsValidConflictSeverity(s ConflictSeverity) bool {
	for _, v := range ValidConflictSeverities {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Conflict Analysis Result
// ============================================================================

// DocumentConflict is one contradiction found between the candidate
// document and a sibling.
type DocumentConflict struct {
	Type                  string           `json:"type"`
	Description           string           `json:"description"`
	ConflictingDocumentID string           `json:"conflicting_document_id"`
	Severity              ConflictSeverity `json:"severity"`
	Suggestion            string           `json:"suggestion,omitempty"`
}

// ConflictAnalysisResult is the ephemeral outcome of one analysis run.
// It is produced fresh per invocation and never persisted by the engine.
type ConflictAnalysisResult struct {
	HasConflicts    bool               `json:"has_conflicts"`
	ConflictLevel   ConflictLevel      `json:"conflict_level"`
	Conflicts       []DocumentConflict `json:"conflicts"`
	Recommendations []string           `json:"recommendations"`
	Summary         string             `json:"summary"`
}

// NoConflicts is the trivial result returned when a candidate has no
// siblings to conflict with.
func NoConflicts(summary string) *ConflictAnalysisResult {
	return &ConflictAnalysisResult{
		HasConflicts:    false,
		ConflictLevel:   ConflictLevelNone,
		Conflicts:       []DocumentConflict{},
		Recommendations: []string{},
		Summary:         summary,
	}
}

// Validate checks the enumerated fields strictly. A result failing
// validation must be treated as AnalysisFailed, never coerced.
func (r *ConflictAnalysisResult) Validate() error {
	if !IsValidConflictLevel(r.ConflictLevel) {
		return fmt.Errorf("%w: invalid conflict level %q", apperrors.ErrAnalysisFailed, r.ConflictLevel)
	}
	for i, c := range r.Conflicts {
		if !IsValidConflictSeverity(c.Severity) {
			return fmt.Errorf("%w: conflict %d has invalid severity %q", apperrors.ErrAnalysisFailed, i, c.Severity)
		}
	}
	if r.HasConflicts && len(r.Conflicts) == 0 {
		return fmt.Errorf("%w: has_conflicts set without any conflicts", apperrors.ErrAnalysisFailed)
	}
	return nil
}
