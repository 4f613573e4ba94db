package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestPeerKey(t *testing.T) {
	tests := []struct {
		name string
		peer tg.PeerClass
		want int64
	}{
		{"user keeps positive id", &tg.PeerUser{UserID: 4242}, 4242},
		{"basic group negates id", &tg.PeerChat{ChatID: 900}, -900},
		{"channel sits below the offset", &tg.PeerChannel{ChannelID: 1337}, -1000000001337},
		{"empty peer maps to zero", &tg.PeerUser{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := peerKey(tc.peer); got != tc.want {
				t.Errorf("peerKey(%T) = %d, want %d", tc.peer, got, tc.want)
			}
		})
	}
}

func TestPeerKeySpacesDoNotCollide(t *testing.T) {
	user := peerKey(&tg.PeerUser{UserID: 500})
	group := peerKey(&tg.PeerChat{ChatID: 500})
	channel := peerKey(&tg.PeerChannel{ChannelID: 500})
	if user == group || user == channel || group == channel {
		t.Fatalf("keys collide: user=%d group=%d channel=%d", user, group, channel)
	}
}

func TestCacheIngestAndResolve(t *testing.T) {
	c := newPeerCache()
	c.ingestUser(&tg.User{ID: 10, AccessHash: 777, FirstName: "Ada"})
	c.ingestChat(&tg.Chat{ID: 20, Title: "Garden Club"})
	c.ingestChannel(&tg.Channel{ID: 30, AccessHash: 888, Title: "News"})

	p, ok := c.peer(10)
	if !ok {
		t.Fatal("user peer missing")
	}
	ipu, ok := p.(*tg.InputPeerUser)
	if !ok || ipu.AccessHash != 777 {
		t.Fatalf("user peer = %#v, want InputPeerUser with hash 777", p)
	}

	if _, ok := c.peer(-20); !ok {
		t.Fatal("group peer missing")
	}
	p, ok = c.peer(-channelIDOffset - 30)
	if !ok {
		t.Fatal("channel peer missing")
	}
	ipc, ok := p.(*tg.InputPeerChannel)
	if !ok || ipc.AccessHash != 888 {
		t.Fatalf("channel peer = %#v, want InputPeerChannel with hash 888", p)
	}

	if got, _ := c.name(10); got != "Ada" {
		t.Errorf("user name = %q, want Ada", got)
	}
	if got, _ := c.name(-20); got != "Garden Club" {
		t.Errorf("group name = %q, want Garden Club", got)
	}
}

func TestNameOrFallsBack(t *testing.T) {
	c := newPeerCache()
	c.ingestUser(&tg.User{ID: 1, FirstName: "Ada"})
	if got := c.nameOr(1, "x"); got != "Ada" {
		t.Errorf("nameOr(known) = %q, want Ada", got)
	}
	if got := c.nameOr(99, "stranger"); got != "stranger" {
		t.Errorf("nameOr(unknown) = %q, want stranger", got)
	}
}

func TestIngestSlicesSkipForeignVariants(t *testing.T) {
	c := newPeerCache()
	c.ingestUsers([]tg.UserClass{&tg.UserEmpty{ID: 5}, &tg.User{ID: 6, FirstName: "Eve"}})
	c.ingestChats([]tg.ChatClass{&tg.ChatEmpty{ID: 7}, &tg.Chat{ID: 8, Title: "Ops"}})

	if _, ok := c.peer(5); ok {
		t.Error("empty user should not be cached")
	}
	if _, ok := c.peer(6); !ok {
		t.Error("real user should be cached")
	}
	if _, ok := c.peer(-7); ok {
		t.Error("empty chat should not be cached")
	}
	if _, ok := c.peer(-8); !ok {
		t.Error("real chat should be cached")
	}
}

func TestIngestEntities(t *testing.T) {
	c := newPeerCache()
	c.ingestEntities(tg.Entities{
		Users:    map[int64]*tg.User{11: {ID: 11, FirstName: "Bo"}},
		Chats:    map[int64]*tg.Chat{12: {ID: 12, Title: "Team"}},
		Channels: map[int64]*tg.Channel{13: {ID: 13, Title: "Feed", AccessHash: 3}},
	})
	for _, key := range []int64{11, -12, -channelIDOffset - 13} {
		if _, ok := c.peer(key); !ok {
			t.Errorf("peer %d missing after entity ingest", key)
		}
	}
}
