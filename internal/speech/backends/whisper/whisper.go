// Package whisper provides a Recognizer backed by whisper.cpp's stream
// binary, which transcribes the microphone live and prints each
// recognized segment as a line on stdout.
package whisper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
	"github.com/powpow088/EnglishWordsT/internal/speech/registry"
)

func init() {
	registry.Recog.Register("whisper", func(config map[string]string) (engine.Recognizer, error) {
		binaryPath := config["binary_path"]
		if binaryPath == "" {
			binaryPath = "whisper-stream"
		}
		return NewRecognizer(binaryPath, config["model_path"]), nil
	})
}

// Recognizer implements engine.Recognizer by spawning the stream binary
// per capture session and scanning its stdout.
type Recognizer struct {
	binaryPath string
	modelPath  string
}

// NewRecognizer creates a whisper.cpp stream recognizer.
func NewRecognizer(binaryPath, modelPath string) *Recognizer {
	return &Recognizer{binaryPath: binaryPath, modelPath: modelPath}
}

// Listen starts one capture session. The returned channel closes when the
// process exits or ctx is cancelled; an unexpected exit is surfaced as a
// trailing error fragment.
func (r *Recognizer) Listen(ctx context.Context) (<-chan engine.Fragment, error) {
	var args []string
	if r.modelPath != "" {
		args = append(args, "-m", r.modelPath)
	}

	cmd := exec.CommandContext(ctx, r.binaryPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("whisper stream: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("whisper stream: %w", err)
	}

	out := make(chan engine.Fragment)
	go func() {
		defer close(out)
		scanSegments(stdout, out)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			out <- engine.Fragment{Err: fmt.Errorf("whisper stream: %w", err)}
		}
	}()
	return out, nil
}

// Close is a no-op; each capture session owns its own process.
func (r *Recognizer) Close() error { return nil }

// scanSegments emits every non-empty stdout line as a final fragment.
// The stream binary rewrites in-progress segments with carriage returns,
// so intermediate revisions of a line are folded into the last one.
func scanSegments(r io.Reader, out chan<- engine.Fragment) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.LastIndexByte(line, '\r'); i >= 0 {
			line = line[i+1:]
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		out <- engine.Fragment{Text: text, Final: true}
	}
}
