package web

import (
	"io"
	"log"
	"net/http"
	"strconv"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context())
	if err != nil {
		http.Error(w, "failed to list history", http.StatusInternalServerError)
		log.Printf("list history error: %v", err)
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Entries": entries, "ActiveNav": "history"},
		"base.html", "pages/history.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleHistoryImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid analysis id", http.StatusBadRequest)
		return
	}

	reader, mimeType, err := s.service.GetAnalysisImage(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "history image", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write history image failed", "analysis_id", id, "error", err)
	}
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid analysis id", http.StatusBadRequest)
		return
	}

	if err := s.service.DeleteAnalysis(r.Context(), id); err != nil {
		http.Error(w, "failed to delete analysis", http.StatusInternalServerError)
		log.Printf("delete analysis error: %v", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
