package domain

import (
	"context"
	"time"
)

const msPerMinute = 60_000

// MaxMinutes caps a session at 100 years so end_ms stays well inside the range
// JSON clients parse exactly (2^53).
const MaxMinutes = 100 * 365 * 24 * 60

// Session is one timed entry: a nick (person or group) playing for a bounded duration.
type Session struct {
	ID      string `json:"id"`
	Nick    string `json:"nick"`
	Players int    `json:"players"`
	Minutes int    `json:"minutes"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// EndMsFor returns the end timestamp for a session starting at startMs.
func EndMsFor(startMs int64, minutes int) int64 {
	return startMs + int64(minutes)*msPerMinute
}

// Expired reports whether the session's end time has passed. Display only.
func (s Session) Expired(now time.Time) bool {
	return now.UnixMilli() >= s.EndMs
}

// Remaining returns the time left until EndMs, or zero once expired.
func (s Session) Remaining(now time.Time) time.Duration {
	left := s.EndMs - now.UnixMilli()
	if left <= 0 {
		return 0
	}
	return time.Duration(left) * time.Millisecond
}

// Document is the whole persisted state. Order of Sessions is insertion order.
type Document struct {
	Sessions []Session `json:"sessions"`
}

// NewDocument returns the empty document.
func NewDocument() *Document {
	return &Document{Sessions: []Session{}}
}

// Normalize replaces a nil session slice so it encodes as [] rather than null.
func (d *Document) Normalize() *Document {
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	return d
}

// SessionStore abstracts durable persistence of the session document.
type SessionStore interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}
