// Package ui implements the modal terminal interface: the interaction
// state machine, the key dispatcher, command parsing, frame building
// and tcell rendering, and the loop that stitches key events and
// background results into one synchronous cycle.
package ui

import (
	"strings"

	"github.com/subhdotsol/vimgram/internal/chat"
)

// Mode is the exclusive interaction state governing how key events are
// interpreted.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeSearch
	ModeAccounts
	ModeCommand
	ModeFindUser
)

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "INSERT"
	case ModeSearch:
		return "SEARCH"
	case ModeAccounts:
		return "ACCOUNTS"
	case ModeCommand:
		return "COMMAND"
	case ModeFindUser:
		return "FIND"
	default:
		return "NORMAL"
	}
}

// Panel is the focused half of the split.
type Panel int

const (
	PanelFriends Panel = iota
	PanelConversation
)

// FindState is the lifecycle of a user lookup shown in the find
// overlay.
type FindState int

const (
	FindNone FindState = iota
	FindSearching
	FindFound
	FindNotFound
	FindFailed
)

// FindResult holds the outcome of the most recent lookup.
type FindResult struct {
	State  FindState
	ID     int64
	Name   string
	Reason string
}

// AccountEntry is one selectable row of the account picker.
type AccountEntry struct {
	ID    string
	Label string
}

// State is the complete interaction state. It is owned by the loop
// goroutine; the dispatcher mutates it synchronously per key event.
type State struct {
	Mode  Mode
	Panel Panel

	// Selected indexes the chat list; always clamped to [0, n-1] while
	// the list is non-empty. Scroll counts messages back from the tail
	// of the conversation, 0 meaning follow the newest message.
	Selected int
	Scroll   int

	Input string

	SearchInput    string
	Filtered       []int
	SearchSelected int

	Accounts        []AccountEntry
	ActiveAccount   string
	AccountSelected int

	CmdInput string

	FindInput string
	Find      FindResult

	// Request flags, consumed by the loop once per iteration.
	NeedsLoad   bool
	PendingLoad int64
	Reload      bool
	Quit        bool
	SwitchTo    string
	AddAccount  bool
	Disconnect  bool
	ShowHelp    bool
	Notice      string
}

// NewState creates the initial state: Normal mode, friends panel
// focused, first chat selected and marked for loading.
func NewState(accounts []AccountEntry, activeID string) *State {
	return &State{
		Accounts:      accounts,
		ActiveAccount: activeID,
		NeedsLoad:     true,
	}
}

// afterSelect applies the side effects every selection change shares:
// the newly selected chat starts read, at the tail, and needing a
// history load.
func (st *State) afterSelect(s *chat.Store) {
	if c, ok := s.At(st.Selected); ok {
		s.ClearUnread(c.ID)
	}
	st.Scroll = 0
	st.NeedsLoad = true
}

// setSelection moves the friends cursor unconditionally, clamped.
func (st *State) setSelection(s *chat.Store, i int) {
	n := s.Len()
	if n == 0 {
		st.Selected = 0
		return
	}
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	st.Selected = i
	st.afterSelect(s)
}

// moveSelection shifts the friends cursor by delta; hitting an edge is
// a no-op and triggers no side effects.
func (st *State) moveSelection(s *chat.Store, delta int) {
	n := s.Len()
	if n == 0 {
		return
	}
	target := st.Selected + delta
	if target < 0 || target > n-1 || target == st.Selected {
		return
	}
	st.Selected = target
	st.afterSelect(s)
}

// clampSelection pulls the cursor back into range after the chat list
// changed underneath it. No selection side effects.
func (st *State) clampSelection(s *chat.Store) {
	if n := s.Len(); n > 0 && st.Selected > n-1 {
		st.Selected = n - 1
	}
	if st.Selected < 0 {
		st.Selected = 0
	}
}

func (st *State) moveDown(s *chat.Store) {
	if st.Panel == PanelConversation {
		if st.Scroll > 0 {
			st.Scroll--
		}
		return
	}
	st.moveSelection(s, 1)
}

func (st *State) moveUp(s *chat.Store) {
	if st.Panel == PanelConversation {
		st.Scroll++
		return
	}
	st.moveSelection(s, -1)
}

func (st *State) jumpFirst(s *chat.Store) {
	if st.Panel == PanelConversation {
		if c, ok := s.At(st.Selected); ok {
			if n := len(s.Messages(c.ID)); n > 0 {
				st.Scroll = n - 1
			}
		}
		return
	}
	if s.Len() > 0 && st.Selected != 0 {
		st.setSelection(s, 0)
	}
}

func (st *State) jumpLast(s *chat.Store) {
	if st.Panel == PanelConversation {
		st.Scroll = 0
		return
	}
	if n := s.Len(); n > 0 && st.Selected != n-1 {
		st.setSelection(s, n-1)
	}
}

func (st *State) togglePanel() {
	if st.Panel == PanelFriends {
		st.Panel = PanelConversation
	} else {
		st.Panel = PanelFriends
	}
}

func (st *State) enterInsert(s *chat.Store) {
	if s.Len() == 0 {
		return
	}
	st.Mode = ModeInsert
}

func (st *State) exitInsert() {
	st.Mode = ModeNormal
	st.Input = ""
}

func (st *State) enterSearch(s *chat.Store) {
	st.Mode = ModeSearch
	st.SearchInput = ""
	st.SearchSelected = 0
	st.updateFilter(s)
}

func (st *State) exitSearch() {
	st.Mode = ModeNormal
	st.SearchInput = ""
	st.Filtered = nil
}

// updateFilter recomputes the filtered indices: chats whose name
// contains the query case-insensitively, in original order. An empty
// query matches everything. The cursor resets to 0 only when it falls
// out of range of the new filter.
func (st *State) updateFilter(s *chat.Store) {
	query := strings.ToLower(st.SearchInput)
	st.Filtered = st.Filtered[:0]
	for i, c := range s.Chats() {
		if query == "" || strings.Contains(strings.ToLower(c.Name), query) {
			st.Filtered = append(st.Filtered, i)
		}
	}
	if st.SearchSelected >= len(st.Filtered) {
		st.SearchSelected = 0
	}
}

// confirmSearch jumps to the highlighted match, or just leaves search
// when nothing matched. Either way search state is cleared.
func (st *State) confirmSearch(s *chat.Store) {
	if st.SearchSelected < len(st.Filtered) {
		st.setSelection(s, st.Filtered[st.SearchSelected])
	}
	st.exitSearch()
}

func (st *State) searchMoveDown() {
	if st.SearchSelected < len(st.Filtered)-1 {
		st.SearchSelected++
	}
}

func (st *State) searchMoveUp() {
	if st.SearchSelected > 0 {
		st.SearchSelected--
	}
}

func (st *State) enterAccounts() {
	st.Mode = ModeAccounts
	st.AccountSelected = 0
	for i, a := range st.Accounts {
		if a.ID == st.ActiveAccount {
			st.AccountSelected = i
			break
		}
	}
}

// accountsMoveDown includes the trailing "add account" row, so the
// cursor ranges over [0, len(Accounts)] inclusive.
func (st *State) accountsMoveDown() {
	if st.AccountSelected < len(st.Accounts) {
		st.AccountSelected++
	}
}

func (st *State) accountsMoveUp() {
	if st.AccountSelected > 0 {
		st.AccountSelected--
	}
}

// confirmAccounts requests a switch when a different account row is
// chosen, an add when the trailing row is, and otherwise just closes
// the picker.
func (st *State) confirmAccounts() {
	if st.AccountSelected < len(st.Accounts) {
		if id := st.Accounts[st.AccountSelected].ID; id != st.ActiveAccount {
			st.SwitchTo = id
		}
	} else {
		st.AddAccount = true
	}
	st.Mode = ModeNormal
}

func (st *State) enterCommand() {
	st.Mode = ModeCommand
	st.CmdInput = ""
}

func (st *State) exitCommand() {
	st.Mode = ModeNormal
	st.CmdInput = ""
}

func (st *State) enterFind() {
	st.Mode = ModeFindUser
	st.FindInput = ""
	st.Find = FindResult{}
}

func (st *State) exitFind() {
	st.Mode = ModeNormal
	st.FindInput = ""
	st.Find = FindResult{}
}

// jumpToFound opens the chat the lookup resolved, creating it on first
// sight.
func (st *State) jumpToFound(s *chat.Store) {
	if st.Find.State == FindFound {
		s.Upsert(st.Find.ID, st.Find.Name)
		if i, ok := s.IndexOf(st.Find.ID); ok {
			st.setSelection(s, i)
		}
	}
	st.exitFind()
}
