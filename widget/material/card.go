package material

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	lblayout "git.sr.ht/~gioverse/listbench/layout"
	"git.sr.ht/~gioverse/listbench/model"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// CardState holds the interaction state of one item card across frames.
type CardState struct {
	widget.Clickable
	// Collapsed hides the detail block. Cards start expanded.
	Collapsed bool
	// Accent colors the card icon.
	Accent color.NRGBA
}

// Update processes clicks, toggling the detail block once per click.
func (s *CardState) Update() {
	for s.Clicked() {
		s.Collapsed = !s.Collapsed
	}
}

// CardStyle lays out an item: title and description always, and a detail
// block with an icon while expanded.
type CardStyle struct {
	State       *CardState
	Title       material.LabelStyle
	Description material.LabelStyle
	Details     material.LabelStyle
	// Icon is shown in the detail block. Optional.
	Icon *widget.Icon
	// IconSize is the side length of the icon.
	IconSize unit.Dp
	// Surface is the card background.
	Surface lblayout.Surface
	// Margin surrounds the card, Padding surrounds its content.
	Margin  lblayout.MarginStyle
	Padding layout.Inset
	// Gap separates the text blocks.
	Gap unit.Dp
}

// Card constructs a CardStyle for item with sensible defaults.
func Card(th *material.Theme, state *CardState, item model.Item, details string, icon *widget.Icon) CardStyle {
	return CardStyle{
		State:       state,
		Title:       material.H6(th, item.Title),
		Description: material.Body1(th, item.Description),
		Details:     material.Caption(th, details),
		Icon:        icon,
		IconSize:    unit.Dp(100),
		Surface: lblayout.Surface{
			Color:        color.NRGBA{R: 0xF3, G: 0xED, B: 0xF7, A: 0xFF},
			CornerRadius: unit.Dp(12),
		},
		Margin:  lblayout.Margin(),
		Padding: layout.UniformInset(unit.Dp(16)),
		Gap:     unit.Dp(8),
	}
}

// Layout the card. Clicks toggle the detail block.
func (c CardStyle) Layout(gtx C) D {
	c.State.Update()
	return c.Margin.Layout(gtx, func(gtx C) D {
		gtx.Constraints.Min.X = gtx.Constraints.Max.X
		return material.Clickable(gtx, &c.State.Clickable, func(gtx C) D {
			return c.Surface.Layout(gtx, func(gtx C) D {
				return c.Padding.Layout(gtx, c.layoutContent)
			})
		})
	})
}

func (c CardStyle) layoutContent(gtx C) D {
	gap := layout.Spacer{Height: c.Gap}.Layout
	children := []layout.FlexChild{
		layout.Rigid(c.Title.Layout),
		layout.Rigid(gap),
		layout.Rigid(c.Description.Layout),
	}
	if !c.State.Collapsed {
		children = append(children,
			layout.Rigid(gap),
			layout.Rigid(c.Details.Layout),
			layout.Rigid(c.layoutIcon),
		)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (c CardStyle) layoutIcon(gtx C) D {
	if c.Icon == nil {
		return D{}
	}
	gtx.Constraints.Min.X = gtx.Constraints.Max.X
	return layout.Center.Layout(gtx, func(gtx C) D {
		sz := gtx.Dp(c.IconSize)
		gtx.Constraints = layout.Exact(image.Pt(sz, sz))
		return c.Icon.Layout(gtx, c.State.Accent)
	})
}
