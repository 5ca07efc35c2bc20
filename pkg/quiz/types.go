package quiz

import "context"

// VocabItem is one word to be spelled. Supplied by the vocabulary
// provider and never mutated; identity is ID.
type VocabItem struct {
	ID         string
	SourceText string // the word the learner must spell
	HintText   string // translated hint shown alongside the prompt
}

// AttemptRecord is the scored outcome for one item. Created exactly once
// per item at submission time and immutable thereafter.
type AttemptRecord struct {
	Item          VocabItem
	SubmittedText string // raw buffer contents, untrimmed
	IsCorrect     bool
}

// Feedback is the per-item feedback state of a session.
type Feedback string

const (
	FeedbackIdle    Feedback = "idle"
	FeedbackCorrect Feedback = "correct"
	FeedbackWrong   Feedback = "wrong"
)

// CaptureMode says which input modality currently owns focus. Both
// modalities write the same buffer, last writer wins.
type CaptureMode string

const (
	ModeTyping    CaptureMode = "typing"
	ModeListening CaptureMode = "listening"
)

// Gender is the requested voice gender for pronunciation.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Speech rate presets passed through verbatim to the host.
const (
	RateSlow   = 0.7
	RateNormal = 1.0
	RateFast   = 1.3
)

// Snapshot is the read-only view of session state pushed to the
// presentation layer on every transition.
type Snapshot struct {
	SessionID   string
	Position    int
	Total       int
	Item        VocabItem
	Feedback    Feedback
	InputBuffer string
	CaptureMode CaptureMode
	Finished    bool
}

// SoundEffect identifies an advisory sound-effect hook point.
type SoundEffect string

const (
	SoundCorrect  SoundEffect = "correct"
	SoundWrong    SoundEffect = "wrong"
	SoundComplete SoundEffect = "complete"
)

// SpeakFunc pronounces text, fire-and-forget. A nil SpeakFunc means the
// host has no speech output; the session runs text-only.
type SpeakFunc func(ctx context.Context, text string, gender Gender, explicitVoiceURI string, rate float64)

// Capture is one active dictation run. Stop is idempotent.
type Capture interface {
	Stop()
}

// ListenFunc starts a dictation capture session. The running cleaned
// transcript arrives via onTranscript; a missing or failing input
// capability is reported synchronously via onError.
type ListenFunc func(ctx context.Context, onTranscript func(string), onError func(error)) (Capture, error)

// PlayFunc plays an advisory sound effect. Failures are never errors.
type PlayFunc func(ctx context.Context, effect SoundEffect)
