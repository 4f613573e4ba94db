package engine

import (
	"errors"

	"github.com/subhdotsol/vimgram/internal/chat"
	"github.com/subhdotsol/vimgram/internal/status"
)

// ErrNotFound is returned by Transport.Lookup when no peer matches the
// query. The interface distinguishes it from transport failures.
var ErrNotFound = errors.New("peer not found")

// Summary is one chat as reported by a dialog listing or a lookup.
type Summary struct {
	ID      int64
	Name    string
	Unread  int
	Preview string
}

// Results carry one of the following event types. The interface loop
// drains the queue once per iteration and type-switches, the same way it
// handles terminal events.
type (
	// ChatsLoaded is the outcome of a dialog listing.
	ChatsLoaded struct {
		Chats []Summary
		Err   error
	}

	// HistoryLoaded is the outcome of a backfill, tagged with the chat it
	// was started for. Messages are oldest first. The loop discards it
	// when the tag no longer matches the pending marker.
	HistoryLoaded struct {
		ChatID   int64
		Messages []chat.Message
		Err      error
	}

	// Inbound is a live message pushed by the server.
	Inbound struct {
		ChatID   int64
		ChatName string
		Message  chat.Message
	}

	// LookupDone is the outcome of the newest user lookup. Err is nil on
	// a hit, ErrNotFound on a miss, anything else on failure.
	LookupDone struct {
		Seq   uint64
		Query string
		Peer  Summary
		Err   error
	}

	// SendDone resolves the optimistic echo identified by ClientID.
	SendDone struct {
		ChatID   int64
		ClientID string
		Err      error
	}

	// StatusChanged mirrors connection state transitions for the status line.
	StatusChanged struct {
		State status.State
	}
)
