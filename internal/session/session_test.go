package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelens/internal/domain"
)

func testImage(label string) *domain.Image {
	return &domain.Image{
		Data:     []byte{0xFF, 0xD8, 0xFF},
		MimeType: "image/jpeg",
		Label:    label,
		Source:   domain.SourceUpload,
	}
}

func TestNewSessionStartsIdle(t *testing.T) {
	m := NewManager(0)
	s := m.New()

	assert.NotEmpty(t, s.ID())
	snap := s.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Image)
}

func TestSetImageReplacesPrior(t *testing.T) {
	s := NewManager(0).New()

	require.NoError(t, s.SetImage(testImage("first")))
	require.NoError(t, s.SetImage(testImage("second")))

	snap := s.Snapshot()
	assert.Equal(t, PhaseImageSelected, snap.Phase)
	require.NotNil(t, snap.Image)
	assert.Equal(t, "second", snap.Image.Label, "new selection replaces, never accumulates")
}

func TestSetModeClearsState(t *testing.T) {
	s := NewManager(0).New()
	require.NoError(t, s.SetImage(testImage("chocolate")))
	s.CompleteAnalysis("Contains cocoa.")

	require.NoError(t, s.SetMode(domain.SourceCamera))

	snap := s.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Image)
	assert.Empty(t, snap.ResultText)
	assert.Equal(t, domain.SourceCamera, snap.Mode)

	// Idempotent: switching to the same mode resets again without error.
	require.NoError(t, s.SetMode(domain.SourceCamera))
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase)
}

func TestBeginAnalysisWithoutImage(t *testing.T) {
	s := NewManager(0).New()

	_, err := s.BeginAnalysis()
	assert.ErrorIs(t, err, ErrNoActiveImage)
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase, "failed trigger must not change state")
}

func TestBeginAnalysisWhileInFlight(t *testing.T) {
	s := NewManager(0).New()
	require.NoError(t, s.SetImage(testImage("chips")))

	_, err := s.BeginAnalysis()
	require.NoError(t, err)

	_, err = s.BeginAnalysis()
	assert.ErrorIs(t, err, ErrAnalysisInFlight)
	assert.ErrorIs(t, s.SetImage(testImage("other")), ErrAnalysisInFlight)
	assert.ErrorIs(t, s.SetMode(domain.SourceExample), ErrAnalysisInFlight)
}

func TestFailAnalysisKeepsImage(t *testing.T) {
	s := NewManager(0).New()
	require.NoError(t, s.SetImage(testImage("chocolate")))

	_, err := s.BeginAnalysis()
	require.NoError(t, err)
	s.FailAnalysis("analysis failed: timeout")

	snap := s.Snapshot()
	assert.Equal(t, PhaseErrorShown, snap.Phase)
	assert.Equal(t, "analysis failed: timeout", snap.ErrorText)
	require.NotNil(t, snap.Image, "session keeps the selected image after a failure")
	assert.Equal(t, "chocolate", snap.Image.Label)

	// A fresh trigger is allowed after the failure.
	_, err = s.BeginAnalysis()
	assert.NoError(t, err)
}

func TestCompleteAnalysis(t *testing.T) {
	s := NewManager(0).New()
	require.NoError(t, s.SetImage(testImage("drink")))
	_, err := s.BeginAnalysis()
	require.NoError(t, err)

	s.CompleteAnalysis("Contains caffeine, taurine.")

	snap := s.Snapshot()
	assert.Equal(t, PhaseResultShown, snap.Phase)
	assert.Equal(t, "Contains caffeine, taurine.", snap.ResultText)
}

func TestManagerGetUnknown(t *testing.T) {
	m := NewManager(0)
	_, ok := m.Get("nope")
	assert.False(t, ok)
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.New()
	require.Equal(t, 1, m.Len())

	// Still fresh: nothing to sweep.
	assert.Zero(t, m.Sweep(time.Now()))

	removed := m.Sweep(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Zero(t, m.Len())

	_, ok := m.Get(s.ID())
	assert.False(t, ok)
}
