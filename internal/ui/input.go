package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/subhdotsol/vimgram/internal/chat"
)

// Action is an outbound effect the dispatcher hands back to the loop.
// nil means the key was consumed by state mutation alone.
type Action any

// ActionSend asks the loop to send Text to the chat, echoing it locally
// first.
type ActionSend struct {
	ChatID int64
	Name   string
	Text   string
}

// ActionLookup asks the loop to start a username lookup.
type ActionLookup struct {
	Query string
}

// Dispatch maps one key event to state mutation plus an optional
// action, according to the current mode. It never blocks and performs
// no I/O; every effect is visible to the caller when it returns.
func Dispatch(st *State, store *chat.Store, ev *tcell.EventKey) Action {
	if ev.Key() == tcell.KeyCtrlC {
		st.Quit = true
		return nil
	}

	switch st.Mode {
	case ModeInsert:
		return dispatchInsert(st, store, ev)
	case ModeSearch:
		dispatchSearch(st, store, ev)
		return nil
	case ModeAccounts:
		dispatchAccounts(st, ev)
		return nil
	case ModeCommand:
		return dispatchCommand(st, ev)
	case ModeFindUser:
		return dispatchFind(st, store, ev)
	default:
		dispatchNormal(st, store, ev)
		return nil
	}
}

func dispatchNormal(st *State, store *chat.Store, ev *tcell.EventKey) {
	if st.ShowHelp {
		st.ShowHelp = false
		return
	}

	switch ev.Key() {
	case tcell.KeyDown:
		st.moveDown(store)
	case tcell.KeyUp:
		st.moveUp(store)
	case tcell.KeyLeft, tcell.KeyRight:
		st.togglePanel()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			st.moveDown(store)
		case 'k':
			st.moveUp(store)
		case 'h', 'l':
			st.togglePanel()
		case 'g':
			st.jumpFirst(store)
		case 'G':
			st.jumpLast(store)
		case 'i':
			st.enterInsert(store)
		case '/':
			st.enterSearch(store)
		case 'f':
			st.enterFind()
		case ':':
			st.enterCommand()
		case 'A':
			st.enterAccounts()
		case 'r':
			st.Reload = true
		case 'D':
			st.Disconnect = true
		case 'q':
			st.Quit = true
		}
	}
}

func dispatchInsert(st *State, store *chat.Store, ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape:
		st.exitInsert()
	case tcell.KeyEnter:
		text := st.Input
		if text == "" {
			return nil
		}
		c, ok := store.At(st.Selected)
		if !ok {
			return nil
		}
		st.exitInsert()
		return ActionSend{ChatID: c.ID, Name: c.Name, Text: text}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		st.Input = popRune(st.Input)
	case tcell.KeyRune:
		st.Input += string(ev.Rune())
	}
	return nil
}

func dispatchSearch(st *State, store *chat.Store, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		st.exitSearch()
	case tcell.KeyEnter:
		st.confirmSearch(store)
	case tcell.KeyDown, tcell.KeyCtrlJ:
		st.searchMoveDown()
	case tcell.KeyUp, tcell.KeyCtrlK:
		st.searchMoveUp()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		st.SearchInput = popRune(st.SearchInput)
		st.updateFilter(store)
	case tcell.KeyRune:
		st.SearchInput += string(ev.Rune())
		st.updateFilter(store)
	}
}

func dispatchAccounts(st *State, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		st.Mode = ModeNormal
	case tcell.KeyEnter:
		st.confirmAccounts()
	case tcell.KeyDown:
		st.accountsMoveDown()
	case tcell.KeyUp:
		st.accountsMoveUp()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			st.accountsMoveDown()
		case 'k':
			st.accountsMoveUp()
		}
	}
}

func dispatchCommand(st *State, ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape:
		st.exitCommand()
	case tcell.KeyEnter:
		raw := st.CmdInput
		st.exitCommand()
		return executeCommand(st, raw)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		// Erasing past the start of the buffer leaves command mode.
		if st.CmdInput == "" {
			st.exitCommand()
			return nil
		}
		st.CmdInput = popRune(st.CmdInput)
	case tcell.KeyRune:
		st.CmdInput += string(ev.Rune())
	}
	return nil
}

func dispatchFind(st *State, store *chat.Store, ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape:
		st.exitFind()
	case tcell.KeyEnter:
		switch st.Find.State {
		case FindFound:
			st.jumpToFound(store)
		case FindNotFound, FindFailed:
			st.exitFind()
		default:
			query := strings.TrimSpace(st.FindInput)
			if query == "" {
				return nil
			}
			st.Find = FindResult{State: FindSearching}
			return ActionLookup{Query: query}
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		st.FindInput = popRune(st.FindInput)
		st.Find = FindResult{}
	case tcell.KeyRune:
		st.FindInput += string(ev.Rune())
		st.Find = FindResult{}
	}
	return nil
}

func popRune(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(r[:len(r)-1])
}
