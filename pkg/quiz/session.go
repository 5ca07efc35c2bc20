package quiz

import (
	"sync"
	"time"
)

// Session holds the mutable state of one quiz run. The engine is its
// sole mutator; the presentation layer observes it through snapshots.
type Session struct {
	mu sync.Mutex

	id          string
	sequence    []VocabItem // shuffled once at session start
	position    int
	inputBuffer string
	feedback    Feedback
	captureMode CaptureMode
	results     []AttemptRecord
	startedAt   time.Time
	finished    bool
	exited      bool

	// listenWarned latches the missing-input-capability notice so a
	// learner mashing the mic button sees it once, not per press.
	listenWarned bool

	gender   Gender
	voiceURI string

	// captureGen invalidates transcript callbacks from stale capture
	// sessions: events for item N must never touch item N+1's buffer.
	capture    Capture
	captureGen int

	promptTimer *time.Timer
	dwellTimer  *time.Timer
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current read-only view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:   s.id,
		Position:    s.position,
		Total:       len(s.sequence),
		Item:        s.sequence[s.position],
		Feedback:    s.feedback,
		InputBuffer: s.inputBuffer,
		CaptureMode: s.captureMode,
		Finished:    s.finished,
	}
}
