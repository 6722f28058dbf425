package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"labelens/internal/agent"
	"labelens/internal/domain"
	"labelens/internal/imagestore"
)

// defaultHistoryLimit caps how many past analyses the history view loads.
const defaultHistoryLimit = 50

// analysisRepository is the subset of store.AnalysisStore that
// AnalysisService requires.
type analysisRepository interface {
	Create(ctx context.Context, a *domain.Analysis) (*domain.Analysis, error)
	GetByID(ctx context.Context, id int64) (*domain.Analysis, error)
	List(ctx context.Context, limit int) ([]*domain.Analysis, error)
	Delete(ctx context.Context, id int64) (*domain.Analysis, error)
}

type AnalysisService struct {
	store    analysisRepository
	analyzer agent.Analyzer
	imageStg imagestore.ImageStore
	model    string
	logger   *slog.Logger
}

func NewAnalysisService(
	store analysisRepository,
	analyzer agent.Analyzer,
	imageStg imagestore.ImageStore,
	model string,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		store:    store,
		analyzer: analyzer,
		imageStg: imageStg,
		model:    model,
		logger:   logger,
	}
}

// Analyze dispatches one image to the agent and blocks until the complete
// response arrives. On success the image and result are archived to history;
// archival failures are logged but never discard the result the user is
// waiting for. Dispatch failures satisfy errors.Is(err, agent.ErrAnalysisFailed).
func (s *AnalysisService) Analyze(ctx context.Context, img *domain.Image) (*domain.Analysis, error) {
	s.logger.Info("analysis started",
		"source", img.Source, "label", img.Label, "mime_type", img.MimeType, "bytes", len(img.Data))

	result, err := s.analyzer.Analyze(ctx, bytes.NewReader(img.Data), img.MimeType)
	if err != nil {
		if !errors.Is(err, agent.ErrAnalysisFailed) {
			err = agent.Fail(err)
		}
		s.logger.Error("analysis failed", "label", img.Label, "error", err)
		return nil, err
	}
	s.logger.Info("analysis complete",
		"label", img.Label, "tool_calls", result.ToolCalls, "result_chars", len(result.Text))

	analysis := &domain.Analysis{
		Source:     img.Source,
		Label:      img.Label,
		MimeType:   img.MimeType,
		Model:      s.model,
		ResultText: result.Text,
	}

	storageKey, err := s.imageStg.Save(ctx, img.MimeType, bytes.NewReader(img.Data))
	if err != nil {
		s.logger.Error("failed to archive image, history entry skipped", "label", img.Label, "error", err)
		return analysis, nil
	}
	analysis.StorageKey = storageKey

	record, err := s.store.Create(ctx, analysis)
	if err != nil {
		if stgErr := s.imageStg.Delete(ctx, storageKey); stgErr != nil {
			s.logger.Error("failed to roll back archived image", "storage_key", storageKey, "error", stgErr)
		}
		s.logger.Error("failed to record analysis, history entry skipped", "label", img.Label, "error", err)
		analysis.StorageKey = ""
		return analysis, nil
	}

	return record, nil
}

// History returns the most recent analyses, newest first.
func (s *AnalysisService) History(ctx context.Context) ([]*domain.Analysis, error) {
	return s.store.List(ctx, defaultHistoryLimit)
}

func (s *AnalysisService) GetAnalysis(ctx context.Context, id int64) (*domain.Analysis, error) {
	return s.store.GetByID(ctx, id)
}

// GetAnalysisImage streams the archived image for one history entry.
func (s *AnalysisService) GetAnalysisImage(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get analysis: %w", err)
	}
	if a == nil || a.StorageKey == "" {
		return nil, "", fmt.Errorf("analysis image not found")
	}
	return s.imageStg.Get(ctx, a.StorageKey)
}

// DeleteAnalysis removes a history entry and its archived image.
func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id int64) error {
	a, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if a == nil || a.StorageKey == "" {
		return nil
	}
	if err := s.imageStg.Delete(ctx, a.StorageKey); err != nil {
		s.logger.Error("failed to delete archived image", "storage_key", a.StorageKey, "error", err)
	}
	return nil
}
