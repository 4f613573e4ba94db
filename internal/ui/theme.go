package ui

import "github.com/gdamore/tcell/v2"

// Theme holds the styles the renderer paints with.
type Theme struct {
	Base        tcell.Style
	Border      tcell.Style
	BorderDim   tcell.Style
	Title       tcell.Style
	Selected    tcell.Style
	Unread      tcell.Style
	Sender      tcell.Style
	Outgoing    tcell.Style
	Failed      tcell.Style
	Hint        tcell.Style
	Status      tcell.Style
	StatusBadge tcell.Style
}

// DefaultTheme returns the dark steel-blue theme.
func DefaultTheme() *Theme {
	base := tcell.StyleDefault.Foreground(tcell.NewRGBColor(220, 220, 220))
	return &Theme{
		Base:        base,
		Border:      tcell.StyleDefault.Foreground(tcell.NewRGBColor(70, 130, 180)),
		BorderDim:   tcell.StyleDefault.Foreground(tcell.NewRGBColor(50, 50, 60)),
		Title:       tcell.StyleDefault.Foreground(tcell.NewRGBColor(70, 130, 180)).Bold(true),
		Selected:    base.Bold(true),
		Unread:      tcell.StyleDefault.Foreground(tcell.NewRGBColor(100, 200, 100)),
		Sender:      tcell.StyleDefault.Foreground(tcell.NewRGBColor(130, 180, 230)).Bold(true),
		Outgoing:    tcell.StyleDefault.Foreground(tcell.NewRGBColor(100, 200, 100)),
		Failed:      tcell.StyleDefault.Foreground(tcell.ColorIndianRed),
		Hint:        tcell.StyleDefault.Foreground(tcell.NewRGBColor(80, 80, 90)),
		Status:      tcell.StyleDefault.Foreground(tcell.NewRGBColor(150, 150, 160)),
		StatusBadge: tcell.StyleDefault.Foreground(tcell.NewRGBColor(70, 130, 180)).Bold(true),
	}
}
