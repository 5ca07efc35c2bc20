// Package input adapts the host's live dictation capability for spelling
// words aloud letter by letter. All fragments seen in one capture session
// are concatenated into a single running transcript; everything that is
// not a letter is discarded before the transcript reaches the caller.
package input

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
	"github.com/powpow088/EnglishWordsT/pkg/quiz"
)

// ListenFunc adapts a recognizer into the capture hook the quiz engine
// takes. The recognizer may be nil; every capture attempt then fails the
// same way a broken one would.
func ListenFunc(rec engine.Recognizer) quiz.ListenFunc {
	return func(ctx context.Context, onTranscript func(string), onError func(error)) (quiz.Capture, error) {
		c, err := Start(ctx, rec, onTranscript, onError)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Capture is one active dictation run. Stop is idempotent and safe even
// after the host ended the session on its own.
type Capture struct {
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// Start begins a capture session on the given recognizer. The running
// cleaned transcript is delivered through onTranscript as fragments
// arrive. A missing or broken input capability is reported synchronously
// through onError and Start returns the same error; it never silently
// pretends to listen.
func Start(ctx context.Context, rec engine.Recognizer, onTranscript func(string), onError func(error)) (*Capture, error) {
	if rec == nil {
		onError(engine.ErrUnavailable)
		return nil, engine.ErrUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	fragments, err := rec.Listen(ctx)
	if err != nil {
		cancel()
		onError(err)
		return nil, err
	}

	c := &Capture{cancel: cancel}

	go func() {
		var raw strings.Builder
		for frag := range fragments {
			if frag.Err != nil {
				onError(frag.Err)
				c.Stop()
				return
			}
			raw.WriteString(frag.Text)
			onTranscript(Clean(raw.String()))
		}
	}()

	return c, nil
}

// Stop ends the capture session. Redundant stops are no-ops.
func (c *Capture) Stop() {
	c.stopOnce.Do(c.cancel)
}

// Clean collapses a raw dictation transcript into one contiguous
// lowercase token: spaces, numerals, and recognizer punctuation go away.
func Clean(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, raw)
}
