package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing out of the quiz core.
type EventType string

const (
	SessionStarted   EventType = "session.started"
	SessionFinished  EventType = "session.finished"
	SessionAborted   EventType = "session.aborted"
	ItemPrompted     EventType = "item.prompted"
	AttemptSubmitted EventType = "attempt.submitted"
	CaptureStarted   EventType = "capture.started"
	CaptureStopped   EventType = "capture.stopped"
	SpeechStarted    EventType = "tts.started"
	SystemError      EventType = "error"
)

// Envelope is the standard event wrapper pushed to subscribers.
type Envelope struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Source    string            `json:"source"`
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SessionStartedData is the payload for session.started events.
type SessionStartedData struct {
	Total int `json:"total"`
}

// SessionFinishedData is the payload for session.finished events.
type SessionFinishedData struct {
	CorrectCount    int    `json:"correct_count"`
	Total           int    `json:"total"`
	Percentage      int    `json:"percentage"`
	Outcome         string `json:"outcome"`
	DurationSeconds int    `json:"duration_seconds"`
}

// SessionAbortedData is the payload for session.aborted events.
type SessionAbortedData struct {
	Position  int `json:"position"`
	Submitted int `json:"submitted"`
}

// ItemPromptedData is the payload for item.prompted events.
type ItemPromptedData struct {
	Position int    `json:"position"`
	ItemID   string `json:"item_id"`
	Hint     string `json:"hint"`
}

// AttemptSubmittedData is the payload for attempt.submitted events.
type AttemptSubmittedData struct {
	Position  int    `json:"position"`
	ItemID    string `json:"item_id"`
	Submitted string `json:"submitted"`
	Correct   bool   `json:"correct"`
}

// CaptureData is the payload for capture.started and capture.stopped events.
type CaptureData struct {
	Position int    `json:"position"`
	Reason   string `json:"reason,omitempty"`
}

// SpeechStartedData is the payload for tts.started events.
type SpeechStartedData struct {
	Text     string  `json:"text"`
	VoiceURI string  `json:"voice_uri,omitempty"`
	Rate     float64 `json:"rate"`
}

// ErrorData is the payload for error events.
type ErrorData struct {
	Message string `json:"message"`
}
