// Package layout holds layout primitives shared by the benchmark widgets.
package layout

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// Surface lays out a widget over a colored background with rounded corners.
type Surface struct {
	Color        color.NRGBA
	CornerRadius unit.Dp
}

func (s Surface) Layout(gtx C, w layout.Widget) D {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	r := gtx.Dp(s.CornerRadius)
	shape := clip.UniformRRect(image.Rectangle{Max: dims.Size}, r)
	paint.FillShape(gtx.Ops, s.Color, shape.Op(gtx.Ops))
	call.Add(gtx.Ops)
	return dims
}
