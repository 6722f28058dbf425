package web

import (
	"errors"
	"net/http"

	"labelens/internal/session"
)

// handleAnalyze runs the blocking analysis flow: hand the active image to the
// agent, wait for the complete response, and re-render the workspace with the
// result or the error banner. A failed run keeps the image selected so the
// user can trigger again.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.ensureSession(w, r)

	img, err := sess.BeginAnalysis()
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoActiveImage):
			http.Error(w, "select an image first", http.StatusConflict)
		case errors.Is(err, session.ErrAnalysisInFlight):
			http.Error(w, "analysis in progress", http.StatusConflict)
		default:
			http.Error(w, "failed to start analysis", http.StatusInternalServerError)
			s.logger.Error("begin analysis failed", "error", err)
		}
		return
	}

	analysis, err := s.service.Analyze(r.Context(), img)
	if err != nil {
		sess.FailAnalysis("Analysis failed. The image was kept, try again.")
		s.renderWorkspace(w, sess)
		return
	}

	sess.CompleteAnalysis(analysis.ResultText)
	s.renderWorkspace(w, sess)
}
