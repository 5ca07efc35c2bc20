// Package quiz implements the spelling-quiz session state machine: an
// ordered shuffled item sequence, a shared typed/dictated input buffer,
// per-item feedback with timed advancement, and a final summary.
package quiz

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/powpow088/EnglishWordsT/pkg/events"
)

// ErrEmptyItems rejects a session start with nothing to quiz.
var ErrEmptyItems = errors.New("quiz: item set must not be empty")

// UX timing constants. The prompt delay debounces against presentation
// mount jitter; the dwell gives the learner time to read feedback.
const (
	DefaultPromptDelay   = 600 * time.Millisecond
	DefaultFeedbackDwell = 1500 * time.Millisecond
)

// Config wires an Engine to its collaborators. Speak, Listen, Play, and
// Publisher are all optional; a nil value degrades that path silently.
type Config struct {
	Speak     SpeakFunc
	Listen    ListenFunc
	Play      PlayFunc
	Publisher *events.Publisher

	PromptDelay   time.Duration
	FeedbackDwell time.Duration

	// OnSnapshot receives a state view on every transition.
	OnSnapshot func(Snapshot)
	// OnFinished receives the full result sequence and whole-second
	// duration when the last item's feedback window elapses. Never
	// called for exited sessions.
	OnFinished func(results []AttemptRecord, durationSeconds int)
}

// Engine runs quiz sessions. Stateless across sessions; all mutable
// state lives in the Session it hands out.
type Engine struct {
	speak       SpeakFunc
	listen      ListenFunc
	play        PlayFunc
	pub         *events.Publisher
	promptDelay time.Duration
	dwell       time.Duration
	onSnapshot  func(Snapshot)
	onFinished  func([]AttemptRecord, int)
}

// NewEngine creates an engine from the given configuration.
func NewEngine(cfg Config) *Engine {
	if cfg.PromptDelay <= 0 {
		cfg.PromptDelay = DefaultPromptDelay
	}
	if cfg.FeedbackDwell <= 0 {
		cfg.FeedbackDwell = DefaultFeedbackDwell
	}
	return &Engine{
		speak:       cfg.Speak,
		listen:      cfg.Listen,
		play:        cfg.Play,
		pub:         cfg.Publisher,
		promptDelay: cfg.PromptDelay,
		dwell:       cfg.FeedbackDwell,
		onSnapshot:  cfg.OnSnapshot,
		onFinished:  cfg.OnFinished,
	}
}

// StartSession shuffles the items into a fixed sequence and begins the
// prompt cycle for the first one. The input set must be non-empty.
func (e *Engine) StartSession(ctx context.Context, items []VocabItem, gender Gender, explicitVoiceURI string) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	sequence := make([]VocabItem, len(items))
	copy(sequence, items)
	rand.Shuffle(len(sequence), func(i, j int) {
		sequence[i], sequence[j] = sequence[j], sequence[i]
	})

	s := &Session{
		id:          xid.New().String(),
		sequence:    sequence,
		feedback:    FeedbackIdle,
		captureMode: ModeTyping,
		startedAt:   time.Now(),
		gender:      gender,
		voiceURI:    explicitVoiceURI,
	}

	e.emit(ctx, events.SessionStarted, s.id, events.SessionStartedData{Total: len(sequence)})
	e.notify(s.Snapshot())

	s.mu.Lock()
	s.promptTimer = time.AfterFunc(e.promptDelay, func() { e.prompt(s, 0) })
	s.mu.Unlock()

	return s, nil
}

// UpdateInput overwrites the input buffer with typed text. Ignored
// outside the Idle feedback state.
func (e *Engine) UpdateInput(ctx context.Context, s *Session, text string) {
	s.mu.Lock()
	if s.finished || s.exited || s.feedback != FeedbackIdle {
		s.mu.Unlock()
		return
	}
	s.inputBuffer = text
	snap := s.snapshotLocked()
	s.mu.Unlock()

	e.notify(snap)
}

// StartListening begins a dictation capture for the current item,
// stopping any prior capture first. A host without speech input degrades
// to the typing path with a one-time error event.
func (e *Engine) StartListening(ctx context.Context, s *Session) {
	s.mu.Lock()
	if s.finished || s.exited || s.feedback != FeedbackIdle {
		s.mu.Unlock()
		return
	}
	if e.listen == nil {
		// Missing capability is a one-time notice per session, not a
		// fresh error on every attempt.
		warned := s.listenWarned
		s.listenWarned = true
		s.mu.Unlock()
		if !warned {
			e.emit(ctx, events.SystemError, s.id, events.ErrorData{Message: "speech input unavailable"})
		}
		return
	}

	prior := s.capture
	s.capture = nil
	s.captureGen++
	gen := s.captureGen
	s.captureMode = ModeListening
	pos := s.position
	s.mu.Unlock()

	if prior != nil {
		prior.Stop()
	}

	capture, err := e.listen(ctx,
		func(transcript string) { e.onTranscript(s, gen, transcript) },
		func(err error) { e.onCaptureError(s, gen, err) },
	)
	if err != nil {
		// onCaptureError already reverted the mode; just surface it.
		e.emit(ctx, events.SystemError, s.id, events.ErrorData{Message: err.Error()})
		return
	}

	s.mu.Lock()
	if s.captureGen != gen || s.finished || s.exited || s.feedback != FeedbackIdle {
		s.mu.Unlock()
		capture.Stop()
		return
	}
	s.capture = capture
	snap := s.snapshotLocked()
	s.mu.Unlock()

	e.emit(ctx, events.CaptureStarted, s.id, events.CaptureData{Position: pos})
	e.notify(snap)
}

// StopListening ends the active capture session and returns input focus
// to typing. The buffer keeps whatever the dictation accumulated.
// Redundant stops are no-ops.
func (e *Engine) StopListening(ctx context.Context, s *Session) {
	s.mu.Lock()
	if s.capture == nil && s.captureMode != ModeListening {
		s.mu.Unlock()
		return
	}
	capture := s.capture
	s.capture = nil
	s.captureGen++
	s.captureMode = ModeTyping
	pos := s.position
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
	e.emit(ctx, events.CaptureStopped, s.id, events.CaptureData{Position: pos})
	e.notify(snap)
}

// Submit scores the input buffer against the current item. Valid only in
// the Idle feedback state with a non-empty buffer or an active capture;
// anything else is ignored. Repeated submits while feedback is showing
// have no effect on the result sequence.
func (e *Engine) Submit(ctx context.Context, s *Session) {
	s.mu.Lock()
	if s.finished || s.exited || s.feedback != FeedbackIdle {
		s.mu.Unlock()
		return
	}
	if s.inputBuffer == "" && s.capture == nil {
		s.mu.Unlock()
		return
	}

	// Stop-then-score ordering is mandatory: a late transcript from
	// this capture must not leak into the next item.
	capture := s.capture
	s.capture = nil
	s.captureGen++
	s.captureMode = ModeTyping

	item := s.sequence[s.position]
	correct := normalize(s.inputBuffer) == normalize(item.SourceText)
	s.results = append(s.results, AttemptRecord{
		Item:          item,
		SubmittedText: s.inputBuffer,
		IsCorrect:     correct,
	})
	if correct {
		s.feedback = FeedbackCorrect
	} else {
		s.feedback = FeedbackWrong
	}

	pos := s.position
	submitted := s.inputBuffer
	snap := s.snapshotLocked()
	s.dwellTimer = time.AfterFunc(e.dwell, func() { e.advance(s, pos) })
	s.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
	e.emit(ctx, events.AttemptSubmitted, s.id, events.AttemptSubmittedData{
		Position:  pos,
		ItemID:    item.ID,
		Submitted: submitted,
		Correct:   correct,
	})
	if e.play != nil {
		if correct {
			e.play(ctx, SoundCorrect)
		} else {
			e.play(ctx, SoundWrong)
		}
	}
	e.notify(snap)
}

// SpeakCurrent re-pronounces the current item at the given rate.
func (e *Engine) SpeakCurrent(ctx context.Context, s *Session, rate float64) {
	s.mu.Lock()
	if s.finished || s.exited {
		s.mu.Unlock()
		return
	}
	item := s.sequence[s.position]
	gender, voiceURI := s.gender, s.voiceURI
	s.mu.Unlock()

	if e.speak != nil {
		e.emit(ctx, events.SpeechStarted, s.id, events.SpeechStartedData{
			Text:     item.SourceText,
			VoiceURI: voiceURI,
			Rate:     rate,
		})
		e.speak(ctx, item.SourceText, gender, voiceURI, rate)
	}
}

// Exit abandons the session from any non-finished state. Any active
// capture is stopped, pending timers are cancelled, and partial results
// are discarded without a summary.
func (e *Engine) Exit(ctx context.Context, s *Session) {
	s.mu.Lock()
	if s.finished || s.exited {
		s.mu.Unlock()
		return
	}
	s.exited = true
	capture := s.capture
	s.capture = nil
	s.captureGen++
	if s.promptTimer != nil {
		s.promptTimer.Stop()
	}
	if s.dwellTimer != nil {
		s.dwellTimer.Stop()
	}
	pos := s.position
	submitted := len(s.results)
	s.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
	e.emit(ctx, events.SessionAborted, s.id, events.SessionAbortedData{
		Position:  pos,
		Submitted: submitted,
	})
}

// prompt speaks the item at pos, unless the session has already moved on.
func (e *Engine) prompt(s *Session, pos int) {
	s.mu.Lock()
	if s.finished || s.exited || s.position != pos || s.feedback != FeedbackIdle {
		s.mu.Unlock()
		return
	}
	item := s.sequence[pos]
	gender, voiceURI := s.gender, s.voiceURI
	s.mu.Unlock()

	ctx := context.Background()
	e.emit(ctx, events.ItemPrompted, s.id, events.ItemPromptedData{
		Position: pos,
		ItemID:   item.ID,
		Hint:     item.HintText,
	})
	if e.speak != nil {
		e.emit(ctx, events.SpeechStarted, s.id, events.SpeechStartedData{
			Text:     item.SourceText,
			VoiceURI: voiceURI,
			Rate:     RateNormal,
		})
		e.speak(ctx, item.SourceText, gender, voiceURI, RateNormal)
	}
}

// advance runs when the feedback dwell for the item at pos elapses.
func (e *Engine) advance(s *Session, pos int) {
	ctx := context.Background()

	s.mu.Lock()
	if s.finished || s.exited || s.feedback == FeedbackIdle || s.position != pos {
		s.mu.Unlock()
		return
	}

	if s.position+1 < len(s.sequence) {
		s.inputBuffer = ""
		s.feedback = FeedbackIdle
		s.position++
		next := s.position
		snap := s.snapshotLocked()
		s.promptTimer = time.AfterFunc(e.promptDelay, func() { e.prompt(s, next) })
		s.mu.Unlock()

		e.notify(snap)
		return
	}

	s.finished = true
	duration := int(time.Since(s.startedAt).Seconds())
	results := make([]AttemptRecord, len(s.results))
	copy(results, s.results)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	summary := Summarize(results, duration)
	e.emit(ctx, events.SessionFinished, s.id, events.SessionFinishedData{
		CorrectCount:    summary.CorrectCount,
		Total:           summary.Total,
		Percentage:      summary.Percentage,
		Outcome:         string(summary.Outcome),
		DurationSeconds: duration,
	})
	if e.play != nil {
		e.play(ctx, SoundComplete)
	}
	e.notify(snap)
	if e.onFinished != nil {
		e.onFinished(results, duration)
	}
}

func (e *Engine) onTranscript(s *Session, gen int, transcript string) {
	s.mu.Lock()
	if gen != s.captureGen || s.finished || s.exited || s.feedback != FeedbackIdle {
		s.mu.Unlock()
		return
	}
	s.inputBuffer = transcript
	snap := s.snapshotLocked()
	s.mu.Unlock()

	e.notify(snap)
}

// onCaptureError handles a recognition error mid-session: the capture
// ends, input focus reverts to typing, and the buffer keeps whatever
// had accumulated. The quiz itself continues.
func (e *Engine) onCaptureError(s *Session, gen int, err error) {
	s.mu.Lock()
	if gen != s.captureGen {
		s.mu.Unlock()
		return
	}
	capture := s.capture
	s.capture = nil
	s.captureGen++
	s.captureMode = ModeTyping
	pos := s.position
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
	e.emit(context.Background(), events.CaptureStopped, s.id, events.CaptureData{
		Position: pos,
		Reason:   err.Error(),
	})
	e.notify(snap)
}

func (e *Engine) emit(ctx context.Context, eventType events.EventType, sessionID string, data any) {
	if e.pub == nil {
		return
	}
	_ = e.pub.Emit(ctx, eventType, sessionID, data)
}

func (e *Engine) notify(snap Snapshot) {
	if e.onSnapshot != nil {
		e.onSnapshot(snap)
	}
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
