package engine

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by hosts that lack a speech capability.
// Adapters absorb it and degrade to the text-only path.
var ErrUnavailable = errors.New("speech capability unavailable")

// Voice describes a synthetic voice offered by the host.
type Voice struct {
	URI      string
	Name     string
	Language string // BCP-47 tag, e.g. "en-US"
}

// Utterance is one request to the speech-output subsystem.
type Utterance struct {
	Text     string
	VoiceURI string  // empty means host default
	Rate     float64 // 1.0 is the host's normal rate
	Pitch    float64 // 1.0 is the host's default pitch
}

// Fragment is one incremental piece of a live dictation transcript.
type Fragment struct {
	Text  string
	Final bool
	Err   error // non-nil ends the capture session
}

// Synthesizer is the host's speech-output capability.
type Synthesizer interface {
	// Speak plays one utterance, blocking until playback ends or ctx is done.
	Speak(ctx context.Context, u Utterance) error
	// Cancel aborts any in-flight utterance. Safe to call when idle.
	Cancel()
	// Voices returns the host voice catalog. The catalog may populate
	// asynchronously after engine init, so this may block until ctx is done.
	Voices(ctx context.Context) ([]Voice, error)
	Close() error
}

// Recognizer is the host's live dictation capability.
// Fragments stream on the returned channel until the session is
// cancelled via ctx or the host ends it on its own (silence timeout).
type Recognizer interface {
	Listen(ctx context.Context) (<-chan Fragment, error)
	Close() error
}
