package web

import (
	"errors"
	"io"
	"net/http"

	"labelens/internal/domain"
	"labelens/internal/imagesource"
	"labelens/internal/session"
)

const maxUploadSize = 50 * 1024 * 1024 // 50 MB

func (s *Server) handleSelectExample(w http.ResponseWriter, r *http.Request) {
	sess := s.ensureSession(w, r)

	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "example name required", http.StatusBadRequest)
		return
	}

	img, err := s.resolver.FromExample(name)
	if err != nil {
		if errors.Is(err, imagesource.ErrInputMissing) {
			http.Error(w, "unknown example", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to load example", http.StatusInternalServerError)
		s.logger.Error("load example failed", "name", name, "error", err)
		return
	}

	s.setSessionImage(w, sess, img)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.ensureSession(w, r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		s.logger.Error("read upload failed", "error", err)
		return
	}

	img, err := s.resolver.FromUpload(header.Filename, data)
	if err != nil {
		http.Error(w, "unsupported image format", http.StatusBadRequest)
		return
	}

	s.setSessionImage(w, sess, img)
}

// handleCamera accepts a single captured frame posted by the browser as a
// multipart "image" field. Server side it is just another byte payload.
func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	sess := s.ensureSession(w, r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "captured frame required", http.StatusBadRequest)
		return
	}
	defer closeWithLog(file, "camera frame", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read frame", http.StatusInternalServerError)
		s.logger.Error("read camera frame failed", "error", err)
		return
	}

	img, err := s.resolver.FromCamera(data)
	if err != nil {
		http.Error(w, "unsupported image format", http.StatusBadRequest)
		return
	}

	s.setSessionImage(w, sess, img)
}

// setSessionImage installs img as the session's single active image and
// re-renders the workspace. A new selection replaces the previous one.
func (s *Server) setSessionImage(w http.ResponseWriter, sess *session.Session, img *domain.Image) {
	if err := sess.SetImage(img); err != nil {
		http.Error(w, "analysis in progress", http.StatusConflict)
		return
	}
	s.renderWorkspace(w, sess)
}
