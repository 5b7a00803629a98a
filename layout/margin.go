package layout

import (
	"gioui.org/layout"
	"gioui.org/unit"
)

// MarginStyle insets a widget on its top and bottom edges by Vertical and on
// its sides by Horizontal. Wrapping every list row in the same MarginStyle
// keeps rows evenly spaced whichever list strategy lays them out.
type MarginStyle struct {
	Vertical   unit.Dp
	Horizontal unit.Dp
}

// Margin configures a margin with a sensible default size on every edge.
func Margin() MarginStyle {
	return MarginStyle{
		Vertical:   unit.Dp(8),
		Horizontal: unit.Dp(8),
	}
}

// Layout the provided widget within the margin and return their combined
// dimensions.
func (m MarginStyle) Layout(gtx C, w layout.Widget) D {
	return layout.Inset{
		Top:    m.Vertical,
		Bottom: m.Vertical,
		Left:   m.Horizontal,
		Right:  m.Horizontal,
	}.Layout(gtx, w)
}
