// Package engine runs every network round-trip the interface needs and
// feeds the outcomes back through a single ordered queue. The interface
// loop stays synchronous: it asks for work with non-blocking calls and
// applies results when they surface in Results().
package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/subhdotsol/vimgram/internal/bus"
	"github.com/subhdotsol/vimgram/internal/chat"
	"github.com/subhdotsol/vimgram/internal/status"
)

// Transport is the slice of the Telegram adapter the engine consumes.
// History returns messages newest first, the way the server pages them;
// the engine reverses before delivery.
type Transport interface {
	ListChats(ctx context.Context, limit int) ([]Summary, error)
	History(ctx context.Context, chatID int64, limit int) ([]chat.Message, error)
	SendText(ctx context.Context, chatID int64, text string) error
	Lookup(ctx context.Context, query string) (Summary, error)
}

// Engine owns background tasks and their single consumer queue.
type Engine struct {
	tr     Transport
	bus    *bus.Bus
	logger *zap.Logger

	dialogLimit  int
	historyLimit int

	out chan any

	mu        sync.Mutex
	inflight  map[int64]bool
	lookupSeq uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine over the given transport. Limits bound the
// dialog listing and per-chat backfill sizes.
func New(tr Transport, b *bus.Bus, logger *zap.Logger, dialogLimit, historyLimit int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tr:           tr,
		bus:          b,
		logger:       logger,
		dialogLimit:  dialogLimit,
		historyLimit: historyLimit,
		out:          make(chan any, 512),
		inflight:     make(map[int64]bool),
	}
}

// Results is the queue the interface loop drains once per iteration.
func (e *Engine) Results() <-chan any { return e.out }

// Start subscribes to adapter events and begins accepting task calls.
// Must be called before any of them.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)
	msgCh, unsubMsg := e.bus.Subscribe("tg.", 256)
	sesCh, unsubSes := e.bus.Subscribe("session.", 64)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer unsubMsg()
		defer unsubSes()
		for {
			select {
			case evt := <-msgCh:
				e.forward(evt)
			case evt := <-sesCh:
				e.forward(evt)
			case <-e.ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels outstanding tasks and joins every goroutine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

// forward translates bus events from the adapter into queue events.
func (e *Engine) forward(evt bus.Event) {
	switch evt.Kind {
	case bus.KindMessage:
		if in, ok := evt.Payload.(Inbound); ok {
			e.deliver(in)
		}
	case bus.KindStatusChanged:
		if ch, ok := evt.Payload.(status.Change); ok {
			e.deliver(StatusChanged{State: ch.To})
		}
	}
}

// deliver blocks only when the queue is full, and gives up when the
// engine shuts down. Order of delivered events is the order of calls.
func (e *Engine) deliver(ev any) {
	select {
	case e.out <- ev:
	case <-e.ctx.Done():
	}
}

// LoadChats fetches the bounded dialog listing in the background.
func (e *Engine) LoadChats() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		chats, err := e.tr.ListChats(e.ctx, e.dialogLimit)
		if err != nil {
			e.logger.Error("dialog listing failed", zap.Error(err))
		}
		e.deliver(ChatsLoaded{Chats: chats, Err: err})
	}()
}

// StartBackfill fetches a chat's recent history. A second call for a
// chat whose backfill is still in flight is a no-op and returns false;
// the caller's pending marker, not cancellation, invalidates results
// that arrive for a chat the user has already left.
func (e *Engine) StartBackfill(chatID int64) bool {
	e.mu.Lock()
	if e.inflight[chatID] {
		e.mu.Unlock()
		return false
	}
	e.inflight[chatID] = true
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		msgs, err := e.tr.History(e.ctx, chatID, e.historyLimit)
		e.mu.Lock()
		delete(e.inflight, chatID)
		e.mu.Unlock()

		if err != nil {
			e.logger.Error("backfill failed", zap.Int64("chat_id", chatID), zap.Error(err))
			e.deliver(HistoryLoaded{ChatID: chatID, Err: err})
			return
		}
		reverse(msgs)
		e.deliver(HistoryLoaded{ChatID: chatID, Messages: msgs})
	}()
	return true
}

// Lookup resolves a username in the background. Each call supersedes the
// previous one: a result that is no longer the newest is dropped instead
// of delivered, so stale lookups can never overwrite fresh ones.
func (e *Engine) Lookup(query string) {
	e.mu.Lock()
	e.lookupSeq++
	seq := e.lookupSeq
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		peer, err := e.tr.Lookup(e.ctx, query)

		e.mu.Lock()
		stale := seq != e.lookupSeq
		e.mu.Unlock()
		if stale {
			e.logger.Debug("lookup superseded", zap.String("query", query))
			return
		}
		e.deliver(LookupDone{Seq: seq, Query: query, Peer: peer, Err: err})
	}()
}

// Send performs a background send. The caller has already echoed the
// message with the given client id; SendDone resolves that echo.
func (e *Engine) Send(chatID int64, text, clientID string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := e.tr.SendText(e.ctx, chatID, text)
		if err != nil {
			e.logger.Error("send failed",
				zap.Int64("chat_id", chatID),
				zap.String("client_msg_id", clientID),
				zap.Error(err))
		}
		e.deliver(SendDone{ChatID: chatID, ClientID: clientID, Err: err})
	}()
}

func reverse(msgs []chat.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
