package telegram

import (
	"context"

	"github.com/gotd/td/tg"

	"github.com/subhdotsol/vimgram/internal/bus"
	"github.com/subhdotsol/vimgram/internal/chat"
	"github.com/subhdotsol/vimgram/internal/engine"
)

func (a *Adapter) registerHandlers() {
	a.dispatcher.OnNewMessage(func(_ context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		return a.handleMessage(e, u.Message)
	})
	a.dispatcher.OnNewChannelMessage(func(_ context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		return a.handleMessage(e, u.Message)
	})
}

// handleMessage republishes an incoming message on the bus. Service
// messages carry no chat text and own sends are already echoed
// locally, so both are dropped here.
func (a *Adapter) handleMessage(e tg.Entities, msg tg.MessageClass) error {
	m, ok := msg.(*tg.Message)
	if !ok {
		return nil
	}
	if m.Out {
		return nil
	}
	a.peers.ingestEntities(e)

	key := peerKey(m.PeerID)
	if key == 0 {
		return nil
	}
	chatName := a.peers.nameOr(key, "unknown")
	a.bus.Emit(bus.KindMessage, engine.Inbound{
		ChatID:   key,
		ChatName: chatName,
		Message: chat.Message{
			Sender: a.senderName(m, chatName),
			Text:   messageText(m),
		},
	})
	return nil
}

// senderName resolves the author. Group messages carry an explicit
// FromID; in direct chats and broadcast channels the peer itself is
// the author, so the chat name doubles as the fallback.
func (a *Adapter) senderName(m *tg.Message, fallback string) string {
	if from, ok := m.GetFromID(); ok {
		return a.peers.nameOr(peerKey(from), fallback)
	}
	return fallback
}
