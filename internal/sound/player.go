// Package sound plays advisory effect sounds at quiz hook points.
// Playback is best effort throughout: a missing player binary or a
// missing file logs and moves on, never an error.
package sound

import (
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
)

// Player plays a named effect. Implementations must never block the
// caller on playback failures.
type Player interface {
	Play(ctx context.Context, effect string)
}

// ExecPlayer shells out to an audio player command (paplay, aplay, ...)
// with a per-effect file from a sounds directory.
type ExecPlayer struct {
	command string
	dir     string
}

// NewExecPlayer creates a player using the given command and sound dir.
// Effect names map to <dir>/<effect>.wav.
func NewExecPlayer(command, dir string) *ExecPlayer {
	return &ExecPlayer{command: command, dir: dir}
}

// Play starts playback in the background.
func (p *ExecPlayer) Play(ctx context.Context, effect string) {
	file := filepath.Join(p.dir, effect+".wav")
	cmd := exec.CommandContext(ctx, p.command, file)
	go func() {
		if err := cmd.Run(); err != nil {
			slog.Debug("sound effect skipped",
				slog.String("effect", effect), slog.String("error", err.Error()))
		}
	}()
}

// NopPlayer discards all effects.
type NopPlayer struct{}

// Play does nothing.
func (NopPlayer) Play(context.Context, string) {}
