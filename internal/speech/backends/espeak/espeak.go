// Package espeak provides a Synthesizer backed by the espeak-ng binary.
package espeak

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
	"github.com/powpow088/EnglishWordsT/internal/speech/registry"
)

// espeak-ng defaults the utterance parameters scale against.
const (
	baseWPM   = 160
	basePitch = 50
	maxPitch  = 99
)

func init() {
	registry.Synth.Register("espeak", func(config map[string]string) (engine.Synthesizer, error) {
		binaryPath := config["binary_path"]
		if binaryPath == "" {
			binaryPath = "espeak-ng"
		}
		language := config["language"]
		if language == "" {
			language = "en"
		}
		return NewSynth(binaryPath, language), nil
	})
}

// Synth implements engine.Synthesizer by spawning espeak-ng per
// utterance. A new Speak kills any still-running process first.
type Synth struct {
	binaryPath string
	language   string

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the in-flight utterance, if any
	seq    int                // identifies the current utterance
}

// NewSynth creates an espeak-ng synthesizer.
func NewSynth(binaryPath, language string) *Synth {
	return &Synth{binaryPath: binaryPath, language: language}
}

// Speak plays one utterance, blocking until playback ends or ctx is done.
func (s *Synth) Speak(ctx context.Context, u engine.Utterance) error {
	voice := u.VoiceURI
	if voice == "" {
		voice = s.language
	}

	wpm := int(baseWPM * orOne(u.Rate))
	pitch := int(basePitch * orOne(u.Pitch))
	if pitch > maxPitch {
		pitch = maxPitch
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.seq++
	mine := s.seq
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		// Only release the handle if no newer utterance took it over.
		if s.seq == mine {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	cmd := exec.CommandContext(ctx, s.binaryPath,
		"-v", voice,
		"-s", strconv.Itoa(wpm),
		"-p", strconv.Itoa(pitch),
		u.Text,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil // superseded or cancelled, not a failure
		}
		return fmt.Errorf("espeak-ng: %w: %s", err, stderr.String())
	}
	return nil
}

// Cancel aborts the in-flight utterance, if any.
func (s *Synth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Voices lists the voices espeak-ng ships for the configured language.
func (s *Synth) Voices(ctx context.Context) ([]engine.Voice, error) {
	cmd := exec.CommandContext(ctx, s.binaryPath, "--voices="+s.language)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("espeak-ng list voices: %w", err)
	}
	return parseVoices(string(out)), nil
}

// Close aborts any in-flight utterance.
func (s *Synth) Close() error {
	s.Cancel()
	return nil
}

// parseVoices reads `espeak-ng --voices` tabular output. Columns are
// Pty Language Age/Gender VoiceName File [Other Languages].
func parseVoices(out string) []engine.Voice {
	var voices []engine.Voice
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if i == 0 { // header
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		name := strings.ReplaceAll(fields[3], "_", " ")
		uri := fields[3]
		if len(fields) > 4 {
			uri = fields[4]
		}
		voices = append(voices, engine.Voice{
			URI:      uri,
			Name:     name,
			Language: fields[1],
		})
	}
	return voices
}

func orOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
