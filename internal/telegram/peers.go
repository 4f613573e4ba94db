package telegram

import (
	"sync"

	"github.com/gotd/td/tg"
)

// channelIDOffset keeps channel keys clear of user and basic-group
// keys, following the Bot API convention: users map to their positive
// id, basic groups to the negated id, channels below -1e12.
const channelIDOffset = int64(1000000000000)

// peerKey folds a typed peer into the single int64 keyspace chats are
// tracked under.
func peerKey(p tg.PeerClass) int64 {
	switch v := p.(type) {
	case *tg.PeerUser:
		return v.UserID
	case *tg.PeerChat:
		return -v.ChatID
	case *tg.PeerChannel:
		return -channelIDOffset - v.ChannelID
	default:
		return 0
	}
}

// peerCache remembers every user, group and channel seen in API
// responses so later calls can produce the InputPeer (with access
// hash) that raw requests demand.
type peerCache struct {
	mu    sync.RWMutex
	peers map[int64]tg.InputPeerClass
	names map[int64]string
}

func newPeerCache() *peerCache {
	return &peerCache{
		peers: make(map[int64]tg.InputPeerClass),
		names: make(map[int64]string),
	}
}

func (c *peerCache) put(key int64, peer tg.InputPeerClass, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers[key] = peer
	if name != "" {
		c.names[key] = name
	}
}

func (c *peerCache) peer(key int64) (tg.InputPeerClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.peers[key]
	return p, ok
}

func (c *peerCache) name(key int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.names[key]
	return n, ok
}

// nameOr returns the cached display name or the fallback.
func (c *peerCache) nameOr(key int64, fallback string) string {
	if n, ok := c.name(key); ok && n != "" {
		return n
	}
	return fallback
}

func (c *peerCache) ingestUser(u *tg.User) {
	if u == nil {
		return
	}
	c.put(u.ID, &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}, displayUserName(u))
}

func (c *peerCache) ingestChat(ch *tg.Chat) {
	if ch == nil {
		return
	}
	c.put(-ch.ID, &tg.InputPeerChat{ChatID: ch.ID}, ch.Title)
}

func (c *peerCache) ingestChannel(ch *tg.Channel) {
	if ch == nil {
		return
	}
	c.put(-channelIDOffset-ch.ID, &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, ch.Title)
}

// ingestUsers absorbs a users slice as returned by dialog, history and
// resolve calls.
func (c *peerCache) ingestUsers(users []tg.UserClass) {
	for _, uc := range users {
		if u, ok := uc.(*tg.User); ok {
			c.ingestUser(u)
		}
	}
}

// ingestChats absorbs a chats slice, which mixes basic groups and
// channels.
func (c *peerCache) ingestChats(chats []tg.ChatClass) {
	for _, cc := range chats {
		switch ch := cc.(type) {
		case *tg.Chat:
			c.ingestChat(ch)
		case *tg.Channel:
			c.ingestChannel(ch)
		}
	}
}

// ingestEntities absorbs the entity maps handed to update handlers.
func (c *peerCache) ingestEntities(e tg.Entities) {
	for _, u := range e.Users {
		c.ingestUser(u)
	}
	for _, ch := range e.Chats {
		c.ingestChat(ch)
	}
	for _, ch := range e.Channels {
		c.ingestChannel(ch)
	}
}
