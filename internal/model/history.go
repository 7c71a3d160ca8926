package model

import "time"

// Outcome labels how a recorded network attempt ended.
type Outcome string

const (
	OutcomeSucceeded      Outcome = "succeeded"
	OutcomeRemoteError    Outcome = "remote_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeUnexpected     Outcome = "unexpected"
)

// HistoryEntry is a completed classification attempt stored locally.
type HistoryEntry struct {
	ID         string
	Body       string
	Outcome    Outcome
	Message    string
	Fields     []Field
	Endpoint   string
	DurationMS int64
	CreatedAt  time.Time
}

// Summary returns the first line of the body, truncated for list display.
func (e HistoryEntry) Summary(max int) string {
	line := e.Body
	for i, r := range line {
		if r == '\n' || r == '\r' {
			line = line[:i]
			break
		}
	}
	runes := []rune(line)
	if max > 1 && len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return line
}
