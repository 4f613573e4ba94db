package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/subhdotsol/vimgram/internal/chat"
	"github.com/subhdotsol/vimgram/internal/status"
)

// FriendRow is one rendered row of the friends panel, already fitted to
// the panel width.
type FriendRow struct {
	Text     string
	Badge    string
	Selected bool
}

// MsgLine is one rendered line of the conversation panel. Sender is set
// only on the first line of an inbound message; SenderWidth is the
// indent continuation lines share with the first line's text.
type MsgLine struct {
	Sender      string
	SenderWidth int
	Text        string
	Outgoing    bool
	Failed      bool
}

// OverlayKind selects the centered modal drawn over the panels.
type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlayAccounts
	OverlayFind
	OverlayHelp
)

// OverlayRow is one line of the active overlay.
type OverlayRow struct {
	Text     string
	Selected bool
}

// Frame is the immutable snapshot the renderer paints. Everything
// user-visible is decided here so layout is testable without a screen.
type Frame struct {
	Width  int
	Height int

	Friends      []FriendRow
	FriendsFocus bool

	Lines     []MsgLine
	ConvFocus bool

	InputTitle string
	InputText  string
	InputHint  bool
	ShowCursor bool

	StatusMode    string
	StatusAccount string
	StatusConn    string
	StatusFlash   string

	Overlay      OverlayKind
	OverlayTitle string
	OverlayRows  []OverlayRow
}

// rect is a screen region, border cells included.
type rect struct {
	x, y, w, h int
}

// layout carries the frame geometry shared by BuildFrame and Draw.
type layout struct {
	friends rect
	conv    rect
	input   rect
	status  rect
}

// computeLayout splits the screen: outer border, 30/70 panel split,
// three-row input box, one-row status line.
func computeLayout(w, h int) layout {
	iw := w - 2
	mainH := h - 6
	if mainH < 0 {
		mainH = 0
	}
	fw := iw * 3 / 10
	if fw < 10 && iw >= 10 {
		fw = 10
	}
	return layout{
		friends: rect{x: 1, y: 1, w: fw, h: mainH},
		conv:    rect{x: 1 + fw, y: 1, w: iw - fw, h: mainH},
		input:   rect{x: 1, y: 1 + mainH, w: iw, h: 3},
		status:  rect{x: 1, y: h - 2, w: iw, h: 1},
	}
}

// BuildFrame assembles the complete render snapshot from the current
// interaction state and store contents. It reads and never mutates.
func BuildFrame(st *State, store *chat.Store, conn status.State, account, flash string, w, h int) Frame {
	lay := computeLayout(w, h)

	f := Frame{
		Width:         w,
		Height:        h,
		FriendsFocus:  st.Panel == PanelFriends,
		ConvFocus:     st.Panel == PanelConversation,
		StatusMode:    st.Mode.String(),
		StatusAccount: account,
		StatusConn:    string(conn),
		StatusFlash:   flash,
	}

	buildFriends(&f, st, store, lay.friends)
	buildConversation(&f, st, store, lay.conv)
	buildInput(&f, st, lay.input)
	buildOverlay(&f, st, w)
	return f
}

func buildFriends(f *Frame, st *State, store *chat.Store, r rect) {
	visible := r.h - 2
	width := r.w - 2
	if visible <= 0 || width <= 0 {
		return
	}

	chats := store.Chats()
	indices := make([]int, 0, len(chats))
	sel := st.Selected
	if st.Mode == ModeSearch {
		indices = append(indices, st.Filtered...)
		sel = st.SearchSelected
	} else {
		for i := range chats {
			indices = append(indices, i)
		}
	}

	start := 0
	if sel >= visible {
		start = sel - visible + 1
	}
	for row := start; row < len(indices) && row < start+visible; row++ {
		c := chats[indices[row]]
		selected := row == sel
		marker := "  "
		if selected {
			marker = "> "
		}
		badge := ""
		if c.Unread > 0 {
			badge = fmt.Sprintf(" (%d)", c.Unread)
		}
		avail := width - runewidth.StringWidth(marker) - runewidth.StringWidth(badge)
		if avail < 1 {
			avail = 1
		}
		name := runewidth.Truncate(sanitizeLine(c.Name), avail, "…")
		f.Friends = append(f.Friends, FriendRow{
			Text:     marker + name,
			Badge:    badge,
			Selected: selected,
		})
	}
}

func buildConversation(f *Frame, st *State, store *chat.Store, r rect) {
	visible := r.h - 2
	width := r.w - 2
	if visible <= 0 || width <= 0 {
		return
	}
	c, ok := store.At(st.Selected)
	if !ok {
		return
	}
	msgs := store.Messages(c.ID)
	n := len(msgs)
	if n == 0 {
		return
	}

	// Scroll counts whole messages back from the tail; the state leaves
	// it unbounded upward, the view pins it to the oldest message.
	scroll := st.Scroll
	if scroll > n-1 {
		scroll = n - 1
	}

	var lines []MsgLine
	for _, m := range msgs[:n-scroll] {
		lines = append(lines, wrapMessage(m, width)...)
	}
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	f.Lines = lines
}

// wrapMessage lays one message out as panel lines. Outgoing messages
// fold the "You: " prefix into the text and get right-aligned by the
// renderer; inbound messages carry the sender separately so it can be
// styled, with continuation lines indented underneath the text column.
func wrapMessage(m chat.Message, width int) []MsgLine {
	if m.Outgoing {
		text := "You: " + m.Text
		if m.Status == chat.StatusFailed {
			text += " ✗"
		}
		var out []MsgLine
		for _, line := range wrapText(sanitizeLine(text), width) {
			out = append(out, MsgLine{Text: line, Outgoing: true, Failed: m.Status == chat.StatusFailed})
		}
		return out
	}

	sender := sanitizeLine(m.Sender) + ": "
	indent := runewidth.StringWidth(sender)
	if indent > width/2 {
		indent = 0
	}
	body := width - indent
	if body < 1 {
		body = 1
	}
	var out []MsgLine
	for i, line := range wrapText(sanitizeLine(m.Text), body) {
		ml := MsgLine{SenderWidth: indent, Text: line}
		if i == 0 {
			ml.Sender = sender
		}
		out = append(out, ml)
	}
	return out
}

func buildInput(f *Frame, st *State, r rect) {
	switch st.Mode {
	case ModeInsert:
		f.InputTitle = " INSERT "
		f.InputText = st.Input
		f.ShowCursor = true
	case ModeSearch:
		f.InputTitle = " SEARCH "
		f.InputText = st.SearchInput
		f.ShowCursor = true
	case ModeCommand:
		f.InputTitle = " COMMAND "
		f.InputText = ":" + st.CmdInput
		f.ShowCursor = true
	case ModeFindUser:
		f.InputTitle = " FIND USER "
		f.InputText = st.FindInput
		f.ShowCursor = true
	default:
		f.InputTitle = " type to send "
		f.InputHint = true
	}
	f.InputText = tailClip(sanitizeLine(f.InputText), r.w-2)
}

func buildOverlay(f *Frame, st *State, w int) {
	width := overlayRowWidth(w)
	switch st.Mode {
	case ModeAccounts:
		f.Overlay = OverlayAccounts
		f.OverlayTitle = " accounts "
		for i, a := range st.Accounts {
			marker := "  "
			if a.ID == st.ActiveAccount {
				marker = "* "
			}
			f.OverlayRows = append(f.OverlayRows, OverlayRow{
				Text:     marker + runewidth.Truncate(sanitizeLine(a.Label), width-2, "…"),
				Selected: i == st.AccountSelected,
			})
		}
		f.OverlayRows = append(f.OverlayRows, OverlayRow{
			Text:     "+ add account",
			Selected: st.AccountSelected == len(st.Accounts),
		})
	case ModeFindUser:
		f.Overlay = OverlayFind
		f.OverlayTitle = " find user "
		f.OverlayRows = findRows(st, width)
	default:
		if st.ShowHelp {
			f.Overlay = OverlayHelp
			f.OverlayTitle = " help "
			for _, line := range helpLines {
				f.OverlayRows = append(f.OverlayRows, OverlayRow{Text: line})
			}
		}
	}
}

func findRows(st *State, width int) []OverlayRow {
	switch st.Find.State {
	case FindSearching:
		return []OverlayRow{{Text: "searching..."}}
	case FindFound:
		return []OverlayRow{
			{Text: runewidth.Truncate(sanitizeLine(st.Find.Name), width, "…"), Selected: true},
			{Text: "Enter to open chat"},
		}
	case FindNotFound:
		return []OverlayRow{{Text: "user not found"}}
	case FindFailed:
		return []OverlayRow{{Text: runewidth.Truncate("lookup failed: "+st.Find.Reason, width, "…")}}
	default:
		return []OverlayRow{{Text: "type a username, Enter to search"}}
	}
}

var helpLines = []string{
	"j/k  move selection / scroll",
	"h/l  switch panel",
	"g/G  jump to first / last",
	"i    compose a message",
	"/    search chats",
	"f    find user by name",
	"A    switch account",
	"r    reload chats",
	"D    disconnect account",
	":    command (:q :reload :find :help)",
	"q    quit",
}

func overlayRowWidth(w int) int {
	width := w - 8
	if width > 44 {
		width = 44
	}
	if width < 10 {
		width = 10
	}
	return width
}

// tailClip keeps the end of the string within width so the cursor end
// of a long buffer stays visible.
func tailClip(s string, width int) string {
	if width < 1 {
		return ""
	}
	for runewidth.StringWidth(s) > width {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}

// wrapText greedily wraps to width, breaking on spaces and hard-breaking
// words wider than the panel. Always returns at least one line.
func wrapText(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, seg := range strings.Split(s, "\n") {
		lines = append(lines, wrapSegment(seg, width)...)
	}
	return lines
}

func wrapSegment(s string, width int) []string {
	if runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	cur, curW := "", 0
	for _, word := range strings.Split(s, " ") {
		ww := runewidth.StringWidth(word)
		if curW > 0 {
			if curW+1+ww <= width {
				cur += " " + word
				curW += 1 + ww
				continue
			}
			lines = append(lines, cur)
			cur, curW = "", 0
		}
		for ww > width {
			r := []rune(word)
			cut := fitRunes(r, width)
			lines = append(lines, string(r[:cut]))
			word = string(r[cut:])
			ww = runewidth.StringWidth(word)
		}
		cur, curW = word, ww
	}
	lines = append(lines, cur)
	return lines
}

// fitRunes returns how many leading runes of r fit in width cells,
// always at least one so hard breaks make progress.
func fitRunes(r []rune, width int) int {
	w := 0
	for i, c := range r {
		cw := runewidth.RuneWidth(c)
		if w+cw > width && i > 0 {
			return i
		}
		w += cw
	}
	return len(r)
}

// sanitizeLine strips codepoints that break tcell rendering: C0
// controls (tabs become spaces), zero-width joiners, skin tone
// modifiers and variation selectors that form multi-codepoint emoji.
func sanitizeLine(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			b.WriteRune(' ')
		case r == '\n':
			b.WriteRune('\n')
		case r < 0x20 || r == 0x7f:
		case r >= 0x1F3FB && r <= 0x1F3FF:
		case r == 0x200D:
		case r >= 0xFE00 && r <= 0xFE0F:
		case r >= 0xE0100 && r <= 0xE01EF:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
