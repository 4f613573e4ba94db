package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Draw paints one frame. Only the loop goroutine calls it; the screen
// is never written from anywhere else.
func Draw(s tcell.Screen, th *Theme, f Frame) {
	s.Clear()
	w, h := f.Width, f.Height
	if w < 20 || h < 10 {
		drawText(s, 0, 0, th.Base, "window too small")
		s.HideCursor()
		s.Show()
		return
	}
	lay := computeLayout(w, h)

	drawBox(s, rect{x: 0, y: 0, w: w, h: h}, th.Border, th.Title, " vimgram ")

	friendsBorder := th.BorderDim
	if f.FriendsFocus {
		friendsBorder = th.Border
	}
	convBorder := th.BorderDim
	if f.ConvFocus {
		convBorder = th.Border
	}
	drawBox(s, lay.friends, friendsBorder, th.Title, " friends ")
	drawBox(s, lay.conv, convBorder, th.Title, " chats ")

	for i, row := range f.Friends {
		y := lay.friends.y + 1 + i
		style := th.Base
		if row.Selected {
			style = th.Selected
		}
		x := drawText(s, lay.friends.x+1, y, style, row.Text)
		if row.Badge != "" {
			drawText(s, x, y, th.Unread, row.Badge)
		}
	}

	drawConversation(s, th, lay.conv, f.Lines)
	drawInput(s, th, lay.input, f)
	drawStatus(s, th, lay.status, f)
	drawOverlay(s, th, f)

	s.Show()
}

func drawConversation(s tcell.Screen, th *Theme, r rect, lines []MsgLine) {
	inner := r.h - 2
	start := r.y + 1 + inner - len(lines)
	for i, ln := range lines {
		y := start + i
		if y <= r.y {
			continue
		}
		if ln.Outgoing {
			style := th.Outgoing
			if ln.Failed {
				style = th.Failed
			}
			x := r.x + r.w - 1 - runewidth.StringWidth(ln.Text)
			if x < r.x+1 {
				x = r.x + 1
			}
			drawText(s, x, y, style, ln.Text)
			continue
		}
		if ln.Sender != "" {
			drawText(s, r.x+1, y, th.Sender, ln.Sender)
		}
		drawText(s, r.x+1+ln.SenderWidth, y, th.Base, ln.Text)
	}
}

func drawInput(s tcell.Screen, th *Theme, r rect, f Frame) {
	border := th.BorderDim
	title := th.Hint
	if f.ShowCursor {
		border = th.Border
		title = th.Title
	} else if !f.InputHint {
		title = th.Title
	}
	drawBox(s, r, border, title, f.InputTitle)
	end := drawText(s, r.x+1, r.y+1, th.Base, f.InputText)
	if f.ShowCursor {
		if end > r.x+r.w-2 {
			end = r.x + r.w - 2
		}
		s.ShowCursor(end, r.y+1)
	} else {
		s.HideCursor()
	}
}

func drawStatus(s tcell.Screen, th *Theme, r rect, f Frame) {
	x := drawText(s, r.x+1, r.y, th.StatusBadge, f.StatusMode)
	x = drawText(s, x+2, r.y, th.Status, f.StatusAccount)
	drawText(s, x+2, r.y, th.Status, f.StatusConn)
	if f.StatusFlash != "" {
		fx := r.x + r.w - 1 - runewidth.StringWidth(f.StatusFlash)
		if fx > x+4 {
			drawText(s, fx, r.y, th.Base, f.StatusFlash)
		}
	}
}

func drawOverlay(s tcell.Screen, th *Theme, f Frame) {
	if f.Overlay == OverlayNone || len(f.OverlayRows) == 0 {
		return
	}
	inner := runewidth.StringWidth(f.OverlayTitle)
	for _, row := range f.OverlayRows {
		if tw := runewidth.StringWidth(row.Text); tw > inner {
			inner = tw
		}
	}
	if inner > f.Width-6 {
		inner = f.Width - 6
	}
	box := rect{
		w: inner + 4,
		h: len(f.OverlayRows) + 2,
	}
	box.x = (f.Width - box.w) / 2
	box.y = (f.Height - box.h) / 2
	if box.y < 1 {
		box.y = 1
	}

	fillRect(s, box, th.Base)
	drawBox(s, box, th.Border, th.Title, f.OverlayTitle)
	for i, row := range f.OverlayRows {
		style := th.Base
		if row.Selected {
			style = th.Selected
		}
		drawText(s, box.x+2, box.y+1+i, style, row.Text)
	}
}

// drawBox paints a rounded border with a title on the top edge. The
// interior is left untouched.
func drawBox(s tcell.Screen, r rect, border, titleStyle tcell.Style, title string) {
	if r.w < 2 || r.h < 2 {
		return
	}
	right := r.x + r.w - 1
	bottom := r.y + r.h - 1
	for x := r.x + 1; x < right; x++ {
		s.SetContent(x, r.y, '─', nil, border)
		s.SetContent(x, bottom, '─', nil, border)
	}
	for y := r.y + 1; y < bottom; y++ {
		s.SetContent(r.x, y, '│', nil, border)
		s.SetContent(right, y, '│', nil, border)
	}
	s.SetContent(r.x, r.y, '╭', nil, border)
	s.SetContent(right, r.y, '╮', nil, border)
	s.SetContent(r.x, bottom, '╰', nil, border)
	s.SetContent(right, bottom, '╯', nil, border)
	if title != "" && runewidth.StringWidth(title) <= r.w-4 {
		drawText(s, r.x+2, r.y, titleStyle, title)
	}
}

func fillRect(s tcell.Screen, r rect, style tcell.Style) {
	for y := r.y; y < r.y+r.h; y++ {
		for x := r.x; x < r.x+r.w; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawText paints text left to right and returns the x just past it.
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}
