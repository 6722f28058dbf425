package web

import (
	"io"
	"log"
	"log/slog"
	"net/http"

	"labelens/internal/domain"
	"labelens/internal/imagesource"
	"labelens/internal/session"
)

// workspaceView is the render model for the main interaction panel.
type workspaceView struct {
	Mode       domain.SourceKind
	Examples   []imagesource.Example
	HasImage   bool
	ImageLabel string
	Phase      session.Phase
	ResultText string
	ErrorText  string
}

func (s *Server) workspaceViewFor(sess *session.Session) workspaceView {
	snap := sess.Snapshot()
	mode := snap.Mode
	if mode == "" {
		mode = domain.SourceExample
	}
	v := workspaceView{
		Mode:       mode,
		Examples:   s.resolver.Examples(),
		Phase:      snap.Phase,
		ResultText: snap.ResultText,
		ErrorText:  snap.ErrorText,
	}
	if snap.Image != nil {
		v.HasImage = true
		v.ImageLabel = snap.Image.Label
	}
	return v
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	sess := s.ensureSession(w, r)

	if err := s.renderPage(w,
		map[string]any{"Workspace": s.workspaceViewFor(sess), "ActiveNav": "analyze"},
		"base.html", "pages/index.html", "partials/workspace.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	sess := s.ensureSession(w, r)

	mode := domain.SourceKind(r.FormValue("mode"))
	switch mode {
	case domain.SourceExample, domain.SourceUpload, domain.SourceCamera:
	default:
		http.Error(w, "invalid mode", http.StatusBadRequest)
		return
	}

	if err := sess.SetMode(mode); err != nil {
		http.Error(w, "analysis in progress", http.StatusConflict)
		return
	}

	s.renderWorkspace(w, sess)
}

// handleSessionImage serves the bytes of the session's active image for the
// preview panel. 404 when nothing is selected.
func (s *Server) handleSessionImage(w http.ResponseWriter, r *http.Request) {
	sess := s.ensureSession(w, r)

	snap := sess.Snapshot()
	if snap.Image == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", snap.Image.MimeType)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(snap.Image.Data); err != nil {
		s.logger.Error("write session image failed", "error", err)
	}
}

// renderWorkspace re-renders the interaction panel after a state change.
func (s *Server) renderWorkspace(w http.ResponseWriter, sess *session.Session) {
	if err := s.renderPartial(w, "partials/workspace.html", s.workspaceViewFor(sess)); err != nil {
		log.Printf("render partial error: %v", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
