package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/subhdotsol/vimgram/internal/chat"
	"github.com/subhdotsol/vimgram/internal/engine"
	"github.com/subhdotsol/vimgram/internal/status"
)

// welcomeChatID is the synthetic local chat seeded at startup. It has
// no server-side peer, so it is never backfilled.
const welcomeChatID = 1

const flashDuration = 3 * time.Second

// orchestrator is the slice of the engine the loop drives. Narrow so
// tests can substitute a fake.
type orchestrator interface {
	Results() <-chan any
	LoadChats()
	StartBackfill(chatID int64) bool
	Lookup(query string)
	Send(chatID int64, text, clientID string)
}

// OutcomeKind says what the host should do after the loop returns.
type OutcomeKind int

const (
	OutcomeQuit OutcomeKind = iota
	OutcomeSwitch
	OutcomeAddAccount
	OutcomeDisconnect
)

// Outcome is the loop's exit verdict.
type Outcome struct {
	Kind     OutcomeKind
	SwitchTo string
}

// Loop runs the synchronous interface cycle: poll input, drain results,
// mutate state, render. All store and state mutation happens here, on
// one goroutine.
type Loop struct {
	screen  tcell.Screen
	store   *chat.Store
	st      *State
	eng     orchestrator
	machine *status.Machine
	logger  *zap.Logger
	flash   *Flash
	theme   *Theme
	account string
	conn    status.State
}

// NewLoop wires a loop. A nil screen means Run allocates a real
// terminal screen; tests inject a simulation screen instead.
func NewLoop(screen tcell.Screen, store *chat.Store, st *State, eng orchestrator, machine *status.Machine, logger *zap.Logger, account string) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		screen:  screen,
		store:   store,
		st:      st,
		eng:     eng,
		machine: machine,
		logger:  logger,
		flash:   &Flash{},
		theme:   DefaultTheme(),
		account: account,
		conn:    status.Booting,
	}
}

// Run owns the terminal until the user asks to leave. It returns the
// exit verdict; ctx cancellation counts as a quit.
func (l *Loop) Run(ctx context.Context) (Outcome, error) {
	if l.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return Outcome{}, fmt.Errorf("create screen: %w", err)
		}
		l.screen = s
	}
	if err := l.screen.Init(); err != nil {
		return Outcome{}, fmt.Errorf("init screen: %w", err)
	}
	defer l.screen.Fini()

	if l.machine != nil {
		l.conn = l.machine.Current()
	}
	l.seedWelcome()
	l.eng.LoadChats()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := l.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if out, done := l.outcome(); done {
			return out, nil
		}
		l.draw()

		select {
		case <-ctx.Done():
			return Outcome{Kind: OutcomeQuit}, nil
		case ev := <-events:
			l.handleTerm(ev)
		case res := <-l.eng.Results():
			l.applyEvent(res)
		case <-ticker.C:
		}

		l.drainResults()
		l.handleFlags()
	}
}

// seedWelcome plants the local welcome chat so the interface has
// content before the first listing lands.
func (l *Loop) seedWelcome() {
	l.store.Upsert(welcomeChatID, "Welcome")
	l.store.Append(welcomeChatID, "Welcome", chat.Message{
		Sender: "vimgram",
		Text:   "Welcome to vimgram! Use hjkl to navigate, i to type, Enter to send.",
	})
	l.store.ClearUnread(welcomeChatID)
}

func (l *Loop) draw() {
	w, h := l.screen.Size()
	f := BuildFrame(l.st, l.store, l.conn, l.account, l.flash.Get(), w, h)
	Draw(l.screen, l.theme, f)
}

func (l *Loop) outcome() (Outcome, bool) {
	switch {
	case l.st.Quit:
		return Outcome{Kind: OutcomeQuit}, true
	case l.st.Disconnect:
		return Outcome{Kind: OutcomeDisconnect}, true
	case l.st.SwitchTo != "":
		return Outcome{Kind: OutcomeSwitch, SwitchTo: l.st.SwitchTo}, true
	case l.st.AddAccount:
		return Outcome{Kind: OutcomeAddAccount}, true
	}
	return Outcome{}, false
}

func (l *Loop) handleTerm(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch act := Dispatch(l.st, l.store, ev).(type) {
		case ActionSend:
			l.send(act)
		case ActionLookup:
			l.eng.Lookup(act.Query)
		}
	case *tcell.EventResize:
		l.screen.Sync()
	}
}

// send echoes the message locally before the network round-trip so the
// conversation updates instantly; SendDone later resolves the echo.
func (l *Loop) send(act ActionSend) {
	clientID := uuid.NewString()
	l.store.Append(act.ChatID, act.Name, chat.Message{
		Sender:   "You",
		Text:     act.Text,
		Outgoing: true,
		Status:   chat.StatusSending,
		ClientID: clientID,
	})
	l.eng.Send(act.ChatID, act.Text, clientID)
}

func (l *Loop) drainResults() {
	for {
		select {
		case res := <-l.eng.Results():
			l.applyEvent(res)
		default:
			return
		}
	}
}

func (l *Loop) applyEvent(res any) {
	switch ev := res.(type) {
	case engine.ChatsLoaded:
		if ev.Err != nil {
			l.flash.Set("failed to load chats", flashDuration)
		}
		for _, s := range ev.Chats {
			if _, known := l.store.Get(s.ID); known {
				continue
			}
			l.store.Upsert(s.ID, s.Name)
			l.store.SetUnread(s.ID, s.Unread)
			if s.Preview != "" {
				l.store.SetPreview(s.ID, s.Preview)
			}
		}
		l.st.clampSelection(l.store)
		l.st.NeedsLoad = true

	case engine.HistoryLoaded:
		if l.st.PendingLoad != ev.ChatID {
			l.logger.Debug("discarding stale backfill", zap.Int64("chat_id", ev.ChatID))
			return
		}
		l.st.PendingLoad = 0
		if ev.Err != nil {
			l.flash.Set("failed to load messages", flashDuration)
			return
		}
		l.store.Replace(ev.ChatID, ev.Messages)
		if c, ok := l.store.At(l.st.Selected); ok && c.ID == ev.ChatID {
			l.st.Scroll = 0
		}

	case engine.Inbound:
		l.store.Append(ev.ChatID, ev.ChatName, ev.Message)
		if c, ok := l.store.At(l.st.Selected); ok && c.ID == ev.ChatID {
			l.store.ClearUnread(ev.ChatID)
		}

	case engine.LookupDone:
		if l.st.Mode != ModeFindUser {
			return
		}
		if strings.TrimSpace(l.st.FindInput) != ev.Query {
			return
		}
		switch {
		case ev.Err == nil:
			l.st.Find = FindResult{State: FindFound, ID: ev.Peer.ID, Name: ev.Peer.Name}
		case errors.Is(ev.Err, engine.ErrNotFound):
			l.st.Find = FindResult{State: FindNotFound}
		default:
			l.st.Find = FindResult{State: FindFailed, Reason: ev.Err.Error()}
		}

	case engine.SendDone:
		l.store.Resolve(ev.ChatID, ev.ClientID, ev.Err != nil)
		if ev.Err != nil {
			l.flash.Set("send failed", flashDuration)
		}

	case engine.StatusChanged:
		l.conn = ev.State
	}
}

// handleFlags consumes the request flags the dispatcher raised during
// this iteration.
func (l *Loop) handleFlags() {
	if l.st.Notice != "" {
		l.flash.Set(l.st.Notice, flashDuration)
		l.st.Notice = ""
	}
	if l.st.Reload {
		l.st.Reload = false
		l.st.NeedsLoad = true
		l.st.PendingLoad = 0
		l.eng.LoadChats()
	}
	if l.st.NeedsLoad {
		l.st.NeedsLoad = false
		c, ok := l.store.At(l.st.Selected)
		if !ok || c.ID == welcomeChatID {
			return
		}
		if l.st.PendingLoad == c.ID {
			return
		}
		l.st.PendingLoad = c.ID
		l.eng.StartBackfill(c.ID)
	}
}
