package store

import (
	"context"
	"database/sql"
	"fmt"

	"labelens/internal/domain"
)

type AnalysisStore struct {
	db *sql.DB
}

func NewAnalysisStore(db *sql.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

func (s *AnalysisStore) Create(ctx context.Context, a *domain.Analysis) (*domain.Analysis, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (source, label, storage_key, mime_type, model, result_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.Source, a.Label, a.StorageKey, a.MimeType, a.Model, a.ResultText)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *AnalysisStore) GetByID(ctx context.Context, id int64) (*domain.Analysis, error) {
	a := &domain.Analysis{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, label, storage_key, mime_type, model, result_text, created_at
		FROM analyses WHERE id = ?
	`, id).Scan(&a.ID, &a.Source, &a.Label, &a.StorageKey, &a.MimeType, &a.Model, &a.ResultText, &a.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return a, nil
}

// List returns the newest analyses first, at most limit of them.
func (s *AnalysisStore) List(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, label, storage_key, mime_type, model, result_text, created_at
		FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*domain.Analysis
	for rows.Next() {
		a := &domain.Analysis{}
		if err := rows.Scan(&a.ID, &a.Source, &a.Label, &a.StorageKey, &a.MimeType, &a.Model, &a.ResultText, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return analyses, nil
}

// Delete removes one history row and returns it so callers can clean up the
// archived image blob. Returns nil when the row does not exist.
func (s *AnalysisStore) Delete(ctx context.Context, id int64) (*domain.Analysis, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete analysis: %w", err)
	}
	return a, nil
}
