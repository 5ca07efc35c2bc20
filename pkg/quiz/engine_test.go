package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/powpow088/EnglishWordsT/pkg/events"
)

// fakeListener hands out captures whose callbacks the test drives by hand.
type fakeListener struct {
	mu           sync.Mutex
	onTranscript func(string)
	onError      func(error)
	stops        int
	startErr     error
}

type fakeCapture struct{ l *fakeListener }

func (c *fakeCapture) Stop() {
	c.l.mu.Lock()
	c.l.stops++
	c.l.mu.Unlock()
}

func (l *fakeListener) listen(_ context.Context, onTranscript func(string), onError func(error)) (Capture, error) {
	if l.startErr != nil {
		onError(l.startErr)
		return nil, l.startErr
	}
	l.mu.Lock()
	l.onTranscript = onTranscript
	l.onError = onError
	l.mu.Unlock()
	return &fakeCapture{l: l}, nil
}

func (l *fakeListener) emitTranscript(text string) {
	l.mu.Lock()
	fn := l.onTranscript
	l.mu.Unlock()
	if fn != nil {
		fn(text)
	}
}

func (l *fakeListener) emitError(err error) {
	l.mu.Lock()
	fn := l.onError
	l.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (l *fakeListener) stopCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stops
}

func testItems(n int) []VocabItem {
	items := make([]VocabItem, n)
	for i := range items {
		items[i] = VocabItem{
			ID:         fmt.Sprintf("w%d", i),
			SourceText: fmt.Sprintf("word%d", i),
			HintText:   fmt.Sprintf("hint%d", i),
		}
	}
	return items
}

func testConfig() Config {
	return Config{
		PromptDelay:   time.Millisecond,
		FeedbackDwell: 5 * time.Millisecond,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStartSessionEmptyItems(t *testing.T) {
	eng := NewEngine(testConfig())
	if _, err := eng.StartSession(t.Context(), nil, GenderFemale, ""); !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("err = %v, want ErrEmptyItems", err)
	}
}

func TestSequenceIsPermutation(t *testing.T) {
	items := testItems(10)

	var (
		mu      sync.Mutex
		results []AttemptRecord
		done    bool
	)
	cfg := testConfig()
	cfg.OnFinished = func(r []AttemptRecord, _ int) {
		mu.Lock()
		results = r
		done = true
		mu.Unlock()
	}
	eng := NewEngine(cfg)

	ctx := t.Context()
	s, err := eng.StartSession(ctx, items, GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	// Answer every item correctly by reading the current item back.
	for i := 0; i < len(items); i++ {
		pos := i
		waitFor(t, func() bool {
			snap := s.Snapshot()
			return snap.Position == pos && snap.Feedback == FeedbackIdle
		})
		eng.UpdateInput(ctx, s, s.Snapshot().Item.SourceText)
		eng.Submit(ctx, s)
	}

	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return done })

	if len(results) != len(items) {
		t.Fatalf("results length = %d, want %d", len(results), len(items))
	}
	seen := make(map[string]int)
	for _, r := range results {
		seen[r.Item.ID]++
		if !r.IsCorrect {
			t.Errorf("item %s scored wrong", r.Item.ID)
		}
	}
	for _, item := range items {
		if seen[item.ID] != 1 {
			t.Errorf("item %s appears %d times, want 1", item.ID, seen[item.ID])
		}
	}
}

func TestResultsTrackPositionWhileIdle(t *testing.T) {
	eng := NewEngine(testConfig())
	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(3), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	check := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.feedback == FeedbackIdle && !s.finished && len(s.results) != s.position {
			t.Errorf("len(results) = %d, position = %d", len(s.results), s.position)
		}
	}

	check()
	eng.UpdateInput(ctx, s, s.Snapshot().Item.SourceText)
	eng.Submit(ctx, s)
	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.Position == 1 && snap.Feedback == FeedbackIdle
	})
	check()
}

func TestSubmitSpamIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.FeedbackDwell = 200 * time.Millisecond
	eng := NewEngine(cfg)

	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(2), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.UpdateInput(ctx, s, "anything")
	eng.Submit(ctx, s)
	eng.Submit(ctx, s)
	eng.Submit(ctx, s)

	s.mu.Lock()
	n := len(s.results)
	s.mu.Unlock()
	if n != 1 {
		t.Errorf("results length = %d, want 1", n)
	}
}

func TestSubmitRequiresInput(t *testing.T) {
	eng := NewEngine(testConfig())
	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(1), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.Submit(ctx, s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) != 0 {
		t.Errorf("empty submit recorded an attempt")
	}
	if s.feedback != FeedbackIdle {
		t.Errorf("feedback = %q, want idle", s.feedback)
	}
}

func TestComparisonTrimsAndLowercases(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		submitted string
		want      bool
	}{
		{name: "padded mixed case", source: "apple", submitted: " Apple ", want: true},
		{name: "transposition is wrong", source: "apple", submitted: "appel", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine(testConfig())
			ctx := t.Context()
			s, err := eng.StartSession(ctx,
				[]VocabItem{{ID: "1", SourceText: tt.source}}, GenderFemale, "")
			if err != nil {
				t.Fatalf("StartSession: %v", err)
			}

			eng.UpdateInput(ctx, s, tt.submitted)
			eng.Submit(ctx, s)

			s.mu.Lock()
			defer s.mu.Unlock()
			if len(s.results) != 1 {
				t.Fatalf("results length = %d, want 1", len(s.results))
			}
			if s.results[0].IsCorrect != tt.want {
				t.Errorf("IsCorrect = %v, want %v", s.results[0].IsCorrect, tt.want)
			}
			if s.results[0].SubmittedText != tt.submitted {
				t.Errorf("SubmittedText = %q, want raw %q", s.results[0].SubmittedText, tt.submitted)
			}
		})
	}
}

func runScoredSession(t *testing.T, items []VocabItem, answer func(VocabItem) string) Summary {
	t.Helper()

	var (
		mu      sync.Mutex
		summary Summary
		done    bool
	)
	cfg := testConfig()
	cfg.OnFinished = func(results []AttemptRecord, durationSeconds int) {
		mu.Lock()
		summary = Summarize(results, durationSeconds)
		done = true
		mu.Unlock()
	}
	eng := NewEngine(cfg)

	ctx := t.Context()
	s, err := eng.StartSession(ctx, items, GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	for i := 0; i < len(items); i++ {
		pos := i
		waitFor(t, func() bool {
			snap := s.Snapshot()
			return snap.Position == pos && snap.Feedback == FeedbackIdle
		})
		eng.UpdateInput(ctx, s, answer(s.Snapshot().Item))
		eng.Submit(ctx, s)
	}

	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return done })
	return summary
}

func TestEndToEndPerfect(t *testing.T) {
	items := []VocabItem{
		{ID: "1", SourceText: "cat", HintText: "貓"},
		{ID: "2", SourceText: "dog", HintText: "狗"},
	}

	summary := runScoredSession(t, items, func(item VocabItem) string {
		return item.SourceText
	})

	if summary.CorrectCount != 2 || summary.Total != 2 {
		t.Errorf("score = %d/%d, want 2/2", summary.CorrectCount, summary.Total)
	}
	if summary.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", summary.Percentage)
	}
	if summary.Outcome != OutcomePerfect {
		t.Errorf("outcome = %q, want perfect", summary.Outcome)
	}
}

func TestEndToEndPoor(t *testing.T) {
	items := []VocabItem{
		{ID: "1", SourceText: "cat", HintText: "貓"},
		{ID: "2", SourceText: "dog", HintText: "狗"},
	}

	summary := runScoredSession(t, items, func(item VocabItem) string {
		if item.SourceText == "cat" {
			return "cet"
		}
		return item.SourceText
	})

	if summary.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", summary.Percentage)
	}
	if summary.Outcome != OutcomePoor {
		t.Errorf("outcome = %q, want poor", summary.Outcome)
	}
}

func TestExitDiscardsPartialResults(t *testing.T) {
	var (
		mu       sync.Mutex
		finished bool
	)
	cfg := testConfig()
	cfg.OnFinished = func([]AttemptRecord, int) {
		mu.Lock()
		finished = true
		mu.Unlock()
	}
	eng := NewEngine(cfg)

	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(2), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.UpdateInput(ctx, s, s.Snapshot().Item.SourceText)
	eng.Submit(ctx, s)
	eng.Exit(ctx, s)

	time.Sleep(50 * time.Millisecond) // past dwell and prompt timers

	mu.Lock()
	defer mu.Unlock()
	if finished {
		t.Error("OnFinished fired after Exit")
	}
}

func TestDictationWritesBuffer(t *testing.T) {
	listener := &fakeListener{}
	cfg := testConfig()
	cfg.Listen = listener.listen
	eng := NewEngine(cfg)

	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(2), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.StartListening(ctx, s)
	if snap := s.Snapshot(); snap.CaptureMode != ModeListening {
		t.Fatalf("capture mode = %q, want listening", snap.CaptureMode)
	}

	listener.emitTranscript("appl")
	listener.emitTranscript("apple")
	if snap := s.Snapshot(); snap.InputBuffer != "apple" {
		t.Errorf("buffer = %q, want %q", snap.InputBuffer, "apple")
	}

	// Typing over a dictated buffer wins, and vice versa.
	eng.UpdateInput(ctx, s, "apples")
	if snap := s.Snapshot(); snap.InputBuffer != "apples" {
		t.Errorf("buffer = %q, want %q", snap.InputBuffer, "apples")
	}
	listener.emitTranscript("apple")

	eng.Submit(ctx, s)
	if listener.stopCount() == 0 {
		t.Error("submit did not stop the active capture")
	}

	// A stray late transcript from the stale capture must not touch
	// the next item's buffer.
	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.Position == 1 && snap.Feedback == FeedbackIdle
	})
	listener.emitTranscript("stale")
	if snap := s.Snapshot(); snap.InputBuffer != "" {
		t.Errorf("stale transcript mutated buffer: %q", snap.InputBuffer)
	}
}

func TestRecognitionErrorRevertsToTyping(t *testing.T) {
	listener := &fakeListener{}
	cfg := testConfig()
	cfg.Listen = listener.listen
	eng := NewEngine(cfg)

	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(1), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.StartListening(ctx, s)
	listener.emitTranscript("app")
	listener.emitError(errors.New("recognizer gave up"))

	snap := s.Snapshot()
	if snap.CaptureMode != ModeTyping {
		t.Errorf("capture mode = %q, want typing", snap.CaptureMode)
	}
	if snap.InputBuffer != "app" {
		t.Errorf("buffer = %q, want preserved %q", snap.InputBuffer, "app")
	}
	if snap.Feedback != FeedbackIdle {
		t.Errorf("feedback = %q, quiz should continue", snap.Feedback)
	}
}

func TestListeningUnavailableDegrades(t *testing.T) {
	eng := NewEngine(testConfig()) // no ListenFunc configured
	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(1), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.StartListening(ctx, s)
	if snap := s.Snapshot(); snap.CaptureMode != ModeTyping {
		t.Errorf("capture mode = %q, want typing", snap.CaptureMode)
	}

	// Typed path still works end to end.
	eng.UpdateInput(ctx, s, s.Snapshot().Item.SourceText)
	eng.Submit(ctx, s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) != 1 || !s.results[0].IsCorrect {
		t.Error("typed path broken after degraded listening")
	}
}

func TestPromptEmitsSpeechStarted(t *testing.T) {
	pub := events.NewPublisher(nil, "test", "")
	ch := pub.Subscribe("observer", 16)
	defer pub.Unsubscribe("observer")

	cfg := testConfig()
	cfg.Publisher = pub
	cfg.Speak = func(context.Context, string, Gender, string, float64) {}
	eng := NewEngine(cfg)

	if _, err := eng.StartSession(t.Context(), testItems(1), GenderFemale, ""); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case env := <-ch:
			if env.Type != events.SpeechStarted {
				continue
			}
			var data events.SpeechStartedData
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatalf("decoding payload: %v", err)
			}
			if data.Text != "word0" {
				t.Errorf("Text = %q, want %q", data.Text, "word0")
			}
			if data.Rate != RateNormal {
				t.Errorf("Rate = %v, want %v", data.Rate, RateNormal)
			}
			return
		case <-deadline:
			t.Fatal("no tts.started event observed")
		}
	}
}

func TestListeningUnavailableWarnsOnce(t *testing.T) {
	pub := events.NewPublisher(nil, "test", "")
	ch := pub.Subscribe("observer", 16)
	defer pub.Unsubscribe("observer")

	cfg := testConfig()
	cfg.Publisher = pub
	eng := NewEngine(cfg) // no ListenFunc configured

	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(1), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.StartListening(ctx, s)
	eng.StartListening(ctx, s)
	eng.StartListening(ctx, s)

	// The error emit is synchronous with StartListening, so whatever
	// made it onto the channel is all there will be.
	errCount := 0
drain:
	for {
		select {
		case env := <-ch:
			if env.Type == events.SystemError {
				errCount++
			}
		default:
			break drain
		}
	}
	if errCount != 1 {
		t.Errorf("error events = %d, want exactly 1", errCount)
	}
}

func TestStopListeningIsIdempotent(t *testing.T) {
	listener := &fakeListener{}
	cfg := testConfig()
	cfg.Listen = listener.listen
	eng := NewEngine(cfg)

	ctx := t.Context()
	s, err := eng.StartSession(ctx, testItems(1), GenderFemale, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	eng.StartListening(ctx, s)
	eng.StopListening(ctx, s)
	eng.StopListening(ctx, s)
	eng.StopListening(ctx, s)

	if got := listener.stopCount(); got != 1 {
		t.Errorf("capture stopped %d times, want 1", got)
	}
}
