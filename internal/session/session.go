// Package session holds per-browser interaction state: the active input
// mode, the single active image, and where the interaction stands.
package session

import (
	"errors"
	"sync"
	"time"

	"labelens/internal/domain"
)

// Phase is the interaction state machine:
// Idle -> ImageSelected -> Analyzing -> {ResultShown | ErrorShown},
// returning to Idle on mode change or ImageSelected on a new image.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseImageSelected Phase = "image_selected"
	PhaseAnalyzing     Phase = "analyzing"
	PhaseResultShown   Phase = "result_shown"
	PhaseErrorShown    Phase = "error_shown"
)

var (
	// ErrNoActiveImage is the InputMissing condition: analysis was triggered
	// with nothing selected. It must be raised before any dispatch happens.
	ErrNoActiveImage = errors.New("no active image selected")

	// ErrAnalysisInFlight rejects a second trigger while one is pending.
	ErrAnalysisInFlight = errors.New("an analysis is already running")
)

type Session struct {
	id string

	mu         sync.Mutex
	mode       domain.SourceKind
	image      *domain.Image
	phase      Phase
	resultText string
	errorText  string
	lastSeen   time.Time
}

func (s *Session) ID() string { return s.id }

// Snapshot is a read-only view for rendering.
type Snapshot struct {
	Mode       domain.SourceKind
	Image      *domain.Image
	Phase      Phase
	ResultText string
	ErrorText  string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Mode:       s.mode,
		Image:      s.image,
		Phase:      s.phase,
		ResultText: s.resultText,
		ErrorText:  s.errorText,
	}
}

// SetMode switches the input mode and resets the session: the active image
// and any shown result are cleared. Calling it with the current mode resets
// all the same (idempotent reset).
func (s *Session) SetMode(mode domain.SourceKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseAnalyzing {
		return ErrAnalysisInFlight
	}
	s.mode = mode
	s.image = nil
	s.resultText = ""
	s.errorText = ""
	s.phase = PhaseIdle
	return nil
}

// SetImage makes img the single active image, replacing any prior selection.
func (s *Session) SetImage(img *domain.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseAnalyzing {
		return ErrAnalysisInFlight
	}
	s.mode = img.Source
	s.image = img
	s.resultText = ""
	s.errorText = ""
	s.phase = PhaseImageSelected
	return nil
}

// BeginAnalysis transitions to Analyzing and hands back the active image.
// It fails without touching state when no image is selected or an analysis
// is already pending.
func (s *Session) BeginAnalysis() (*domain.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseAnalyzing {
		return nil, ErrAnalysisInFlight
	}
	if s.image == nil {
		return nil, ErrNoActiveImage
	}
	s.phase = PhaseAnalyzing
	s.resultText = ""
	s.errorText = ""
	return s.image, nil
}

// CompleteAnalysis records the result text.
func (s *Session) CompleteAnalysis(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseResultShown
	s.resultText = text
}

// FailAnalysis records the error; the selected image stays active so the
// user can retry with a fresh trigger.
func (s *Session) FailAnalysis(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseErrorShown
	s.errorText = msg
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time, maxIdle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > maxIdle
}
