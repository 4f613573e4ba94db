package telegram

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/subhdotsol/vimgram/internal/chat"
	"github.com/subhdotsol/vimgram/internal/engine"
)

var _ engine.Transport = (*Adapter)(nil)

// ListChats fetches the most recent dialogs with their unread counts
// and last-message previews.
func (a *Adapter) ListChats(ctx context.Context, limit int) ([]engine.Summary, error) {
	res, err := a.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get dialogs: %w", err)
	}
	dialogs, messages, chats, users, err := dialogsParts(res)
	if err != nil {
		return nil, err
	}
	a.peers.ingestChats(chats)
	a.peers.ingestUsers(users)

	type msgKey struct {
		peer int64
		id   int
	}
	previews := make(map[msgKey]string, len(messages))
	for _, mc := range messages {
		if m, ok := mc.(*tg.Message); ok {
			previews[msgKey{peerKey(m.PeerID), m.ID}] = messageText(m)
		}
	}

	out := make([]engine.Summary, 0, len(dialogs))
	for _, dc := range dialogs {
		d, ok := dc.(*tg.Dialog)
		if !ok {
			continue
		}
		key := peerKey(d.Peer)
		if key == 0 {
			continue
		}
		out = append(out, engine.Summary{
			ID:      key,
			Name:    a.peers.nameOr(key, "chat "+strconv.FormatInt(key, 10)),
			Unread:  d.UnreadCount,
			Preview: previews[msgKey{key, d.TopMessage}],
		})
	}
	return out, nil
}

// History fetches up to limit messages for a chat, newest first as the
// API returns them.
func (a *Adapter) History(ctx context.Context, chatID int64, limit int) ([]chat.Message, error) {
	peer, ok := a.peers.peer(chatID)
	if !ok {
		return nil, fmt.Errorf("no input peer for chat %d", chatID)
	}
	res, err := a.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	messages, chats, users, err := historyParts(res)
	if err != nil {
		return nil, err
	}
	a.peers.ingestChats(chats)
	a.peers.ingestUsers(users)

	out := make([]chat.Message, 0, len(messages))
	for _, mc := range messages {
		m, ok := mc.(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, a.historyMessage(chatID, m))
	}
	return out, nil
}

// SendText posts a plain text message to a chat.
func (a *Adapter) SendText(ctx context.Context, chatID int64, text string) error {
	peer, ok := a.peers.peer(chatID)
	if !ok {
		return fmt.Errorf("no input peer for chat %d", chatID)
	}
	rid, err := randomID()
	if err != nil {
		return fmt.Errorf("random id: %w", err)
	}
	if _, err := a.api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: rid,
	}); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Lookup resolves a public @username to a peer, caching its access
// hash so the chat can be opened and written to right away.
func (a *Adapter) Lookup(ctx context.Context, query string) (engine.Summary, error) {
	username := strings.TrimPrefix(strings.TrimSpace(query), "@")
	res, err := a.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		if tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID") {
			return engine.Summary{}, engine.ErrNotFound
		}
		return engine.Summary{}, fmt.Errorf("resolve %q: %w", username, err)
	}
	a.peers.ingestChats(res.Chats)
	a.peers.ingestUsers(res.Users)

	key := peerKey(res.Peer)
	if key == 0 {
		return engine.Summary{}, engine.ErrNotFound
	}
	return engine.Summary{ID: key, Name: a.peers.nameOr(key, username)}, nil
}

func (a *Adapter) historyMessage(chatID int64, m *tg.Message) chat.Message {
	var sender string
	if m.Out {
		sender = a.SelfName()
		if sender == "" {
			sender = "You"
		}
	} else {
		sender = a.senderName(m, a.peers.nameOr(chatID, "unknown"))
	}
	return chat.Message{
		Sender:   sender,
		Text:     messageText(m),
		Outgoing: m.Out,
	}
}

func dialogsParts(res tg.MessagesDialogsClass) ([]tg.DialogClass, []tg.MessageClass, []tg.ChatClass, []tg.UserClass, error) {
	switch v := res.(type) {
	case *tg.MessagesDialogs:
		return v.Dialogs, v.Messages, v.Chats, v.Users, nil
	case *tg.MessagesDialogsSlice:
		return v.Dialogs, v.Messages, v.Chats, v.Users, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unexpected dialogs response %T", res)
	}
}

func historyParts(res tg.MessagesMessagesClass) ([]tg.MessageClass, []tg.ChatClass, []tg.UserClass, error) {
	switch v := res.(type) {
	case *tg.MessagesMessages:
		return v.Messages, v.Chats, v.Users, nil
	case *tg.MessagesMessagesSlice:
		return v.Messages, v.Chats, v.Users, nil
	case *tg.MessagesChannelMessages:
		return v.Messages, v.Chats, v.Users, nil
	default:
		return nil, nil, nil, fmt.Errorf("unexpected history response %T", res)
	}
}

// randomID draws the client-side dedup id MTProto requires per send.
func randomID() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
