package voices

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
)

// DefaultReadyHorizon bounds the wait for a host voice catalog that
// populates asynchronously. A host that never signals readiness resolves
// with whatever is available, including nothing.
const DefaultReadyHorizon = 3 * time.Second

// Catalog wraps the host's asynchronous voice listing as a one-shot
// snapshot: the first call waits up to the ready horizon, every later
// call returns the same snapshot.
type Catalog struct {
	synth   engine.Synthesizer // nil means no speech output on this host
	horizon time.Duration

	once   sync.Once
	voices []engine.Voice
}

// NewCatalog creates a catalog over the given synthesizer. A horizon of
// zero selects DefaultReadyHorizon.
func NewCatalog(synth engine.Synthesizer, horizon time.Duration) *Catalog {
	if horizon <= 0 {
		horizon = DefaultReadyHorizon
	}
	return &Catalog{synth: synth, horizon: horizon}
}

// Voices returns the resolved catalog snapshot. An unsupported or
// never-ready host yields an empty snapshot, not an error.
func (c *Catalog) Voices(ctx context.Context) []engine.Voice {
	c.once.Do(func() {
		if c.synth == nil {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, c.horizon)
		defer cancel()

		voices, err := c.synth.Voices(ctx)
		if err != nil {
			slog.Warn("voice catalog unavailable", slog.String("error", err.Error()))
			return
		}
		c.voices = voices
	})
	return c.voices
}
