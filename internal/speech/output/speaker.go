// Package output adapts the host's speech-output capability for the quiz
// core: at most one utterance is ever live, and missing capability or
// missing voices degrade silently instead of reaching the state machine.
package output

import (
	"context"
	"log/slog"
	"sync"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
	"github.com/powpow088/EnglishWordsT/internal/speech/voices"
	"github.com/powpow088/EnglishWordsT/pkg/quiz"
)

// malePitchFactor is the crude timbre proxy applied when a male voice was
// requested but the keyword classifier found none. A constant multiplier
// on the default pitch, nothing fancier.
const malePitchFactor = 0.65

// Speaker is the speech-output adapter. It holds the cancel handle for
// the in-flight utterance so a new Speak supersedes the old one no matter
// how the delivery goroutines interleave.
type Speaker struct {
	synth   engine.Synthesizer // nil means no speech output on this host
	catalog *voices.Catalog

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the in-flight utterance, if any
}

// NewSpeaker creates a speaker over the given host synthesizer.
func NewSpeaker(synth engine.Synthesizer, catalog *voices.Catalog) *Speaker {
	return &Speaker{synth: synth, catalog: catalog}
}

// Speak pronounces text, fire-and-forget. Any in-flight utterance is
// cancelled first so overlapping audio is never possible. rate is passed
// through verbatim.
func (s *Speaker) Speak(ctx context.Context, text string, gender quiz.Gender, explicitVoiceURI string, rate float64) {
	if s.synth == nil {
		slog.Debug("speech output unavailable, skipping utterance")
		return
	}

	sel := voices.SelectVoice(s.catalog.Voices(ctx), gender, explicitVoiceURI)

	pitch := 1.0
	if gender == quiz.GenderMale && !sel.KeywordMatch {
		pitch = malePitchFactor
	}

	u := engine.Utterance{
		Text:  text,
		Rate:  rate,
		Pitch: pitch,
	}
	if sel.OK {
		u.VoiceURI = sel.Voice.URI
	}

	// The prior utterance's context is cancelled before this one can
	// start; even a delivery goroutine that has not reached the host yet
	// sees a dead context and never plays.
	utterCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	s.synth.Cancel()

	go func() {
		defer cancel()
		if utterCtx.Err() != nil {
			return
		}
		if err := s.synth.Speak(utterCtx, u); err != nil {
			slog.Debug("utterance failed", slog.String("error", err.Error()))
		}
	}()
}
