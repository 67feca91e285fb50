// Package registry implements the session operations (add, remove, clear, list) as pure
// functions over a loaded document. Callers own persistence and locking.
package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/pscheid92/sessiontimer/internal/domain"
)

const defaultPlayers = 1

// AddRequest carries the client-supplied fields for a new session.
type AddRequest struct {
	Nick    string
	Minutes int
	Players int
}

// Validate trims the nick and checks the required fields. It returns the normalized request.
func (r AddRequest) Validate() (AddRequest, error) {
	r.Nick = strings.TrimSpace(r.Nick)
	if r.Nick == "" || r.Minutes <= 0 || r.Minutes > domain.MaxMinutes {
		return r, domain.ErrInvalidSession
	}
	if r.Players <= 0 {
		r.Players = defaultPlayers
	}
	return r, nil
}

// Add appends a new session to a copy of doc. The input document is left untouched.
func Add(doc *domain.Document, req AddRequest, now time.Time) (*domain.Document, domain.Session, error) {
	req, err := req.Validate()
	if err != nil {
		return doc, domain.Session{}, err
	}

	startMs := now.UnixMilli()
	session := domain.Session{
		ID:      nextID(doc, now),
		Nick:    req.Nick,
		Players: req.Players,
		Minutes: req.Minutes,
		StartMs: startMs,
		EndMs:   domain.EndMsFor(startMs, req.Minutes),
	}

	sessions := make([]domain.Session, 0, len(doc.Sessions)+1)
	sessions = append(sessions, doc.Sessions...)
	sessions = append(sessions, session)

	return &domain.Document{Sessions: sessions}, session, nil
}

// nextID builds "<epoch_seconds>-<ordinal>", starting the ordinal at len+1 and bumping
// it past any id already in the document.
func nextID(doc *domain.Document, now time.Time) string {
	taken := make(map[string]struct{}, len(doc.Sessions))
	for _, s := range doc.Sessions {
		taken[s.ID] = struct{}{}
	}

	for ordinal := len(doc.Sessions) + 1; ; ordinal++ {
		id := fmt.Sprintf("%d-%d", now.Unix(), ordinal)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// Remove returns a document without any session matching id. Unknown ids are a no-op.
func Remove(doc *domain.Document, id string) *domain.Document {
	sessions := make([]domain.Session, 0, len(doc.Sessions))
	for _, s := range doc.Sessions {
		if s.ID != id {
			sessions = append(sessions, s)
		}
	}
	return &domain.Document{Sessions: sessions}
}

// Clear returns the empty document.
func Clear() *domain.Document {
	return domain.NewDocument()
}

// List returns the document as-is. Expired sessions are kept; clients decide how to show them.
func List(doc *domain.Document) *domain.Document {
	return doc.Normalize()
}

// Find looks up a session by id.
func Find(doc *domain.Document, id string) (domain.Session, bool) {
	for _, s := range doc.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Session{}, false
}
