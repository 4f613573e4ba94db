// Package chat holds the in-memory conversation state shown by the
// interface: the ordered chat list, per-chat message slices and unread
// counters. The store is confined to the interface loop goroutine and is
// deliberately unsynchronized; background work never touches it directly,
// results arrive as events the loop applies itself.
package chat

import "strings"

// SendStatus tracks the fate of an optimistically echoed outgoing message.
type SendStatus int

const (
	// StatusNone marks inbound messages, which have no send lifecycle.
	StatusNone SendStatus = iota
	StatusSending
	StatusSent
	StatusFailed
)

// Message is a single rendered message.
type Message struct {
	Sender   string
	Text     string
	Outgoing bool

	// Status and ClientID are set on outgoing echoes only. ClientID
	// correlates the echo with its background send result.
	Status   SendStatus
	ClientID string
}

// Chat is one entry in the friends panel.
type Chat struct {
	ID      int64
	Name    string
	Unread  int
	Preview string
}

// Store keeps chats in first-seen order plus per-chat message history.
type Store struct {
	chats    []Chat
	index    map[int64]int
	messages map[int64][]Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index:    make(map[int64]int),
		messages: make(map[int64][]Message),
	}
}

// Len returns the number of chats.
func (s *Store) Len() int { return len(s.chats) }

// Upsert registers a chat under its first-seen name. Calling it again
// for a known id is a no-op: the name is never updated and insertion
// order never changes.
func (s *Store) Upsert(id int64, name string) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.chats)
	s.chats = append(s.chats, Chat{ID: id, Name: name})
}

// SetUnread overwrites a chat's unread counter (server-reported counts
// from the dialog listing).
func (s *Store) SetUnread(id int64, n int) {
	if i, ok := s.index[id]; ok {
		s.chats[i].Unread = n
	}
}

// SetPreview overwrites a chat's last-message preview.
func (s *Store) SetPreview(id int64, preview string) {
	if i, ok := s.index[id]; ok {
		s.chats[i].Preview = preview
	}
}

// Append adds a message to a chat, newest last. An unknown chat id is
// instantiated with the given name. Inbound messages bump the unread
// counter; the loop clears it right away when the chat is on screen.
// The chat preview always follows the latest message.
func (s *Store) Append(id int64, name string, m Message) {
	if _, ok := s.index[id]; !ok {
		s.Upsert(id, name)
	}
	s.messages[id] = append(s.messages[id], m)
	i := s.index[id]
	s.chats[i].Preview = preview(m.Text)
	if !m.Outgoing {
		s.chats[i].Unread++
	}
}

// Replace swaps a chat's entire message slice, wholesale. This is how
// backfill results land: last write wins. Replacing an id that is not in
// the chat list stores the messages without creating a list entry, same
// as the listing and history arriving out of order.
func (s *Store) Replace(id int64, msgs []Message) {
	s.messages[id] = msgs
	if i, ok := s.index[id]; ok && len(msgs) > 0 {
		s.chats[i].Preview = preview(msgs[len(msgs)-1].Text)
	}
}

// Resolve flips the status of an in-flight outgoing echo identified by
// its client id. Unknown ids are ignored (the echo may have been
// replaced by a backfill in the meantime).
func (s *Store) Resolve(id int64, clientID string, failed bool) {
	msgs := s.messages[id]
	for i := range msgs {
		if msgs[i].ClientID == clientID {
			if failed {
				msgs[i].Status = StatusFailed
			} else {
				msgs[i].Status = StatusSent
			}
			return
		}
	}
}

// ClearUnread zeroes a chat's unread counter.
func (s *Store) ClearUnread(id int64) {
	if i, ok := s.index[id]; ok {
		s.chats[i].Unread = 0
	}
}

// Chats returns the chat list in insertion order. The slice is shared;
// callers treat it as read-only for the current frame.
func (s *Store) Chats() []Chat { return s.chats }

// At returns the chat at a list position.
func (s *Store) At(i int) (Chat, bool) {
	if i < 0 || i >= len(s.chats) {
		return Chat{}, false
	}
	return s.chats[i], true
}

// Get returns a chat by id.
func (s *Store) Get(id int64) (Chat, bool) {
	if i, ok := s.index[id]; ok {
		return s.chats[i], true
	}
	return Chat{}, false
}

// IndexOf returns a chat's position in the list.
func (s *Store) IndexOf(id int64) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Messages returns a chat's messages oldest first.
func (s *Store) Messages(id int64) []Message { return s.messages[id] }

// preview trims a message body to one short line for the friends panel.
func preview(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const max = 80
	r := []rune(text)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return text
}
