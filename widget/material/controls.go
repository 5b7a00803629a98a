package material

import (
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// LabeledSliderStyle draws a slider with a label to its left.
type LabeledSliderStyle struct {
	Label  material.LabelStyle
	Slider material.SliderStyle
	// Gap separates label and slider.
	Gap unit.Dp
}

// LabeledSlider constructs a slider over [min, max] labeled with label.
func LabeledSlider(th *material.Theme, value *widget.Float, min, max float32, label string) LabeledSliderStyle {
	return LabeledSliderStyle{
		Label:  material.Body1(th, label),
		Slider: material.Slider(th, value, min, max),
		Gap:    unit.Dp(12),
	}
}

func (s LabeledSliderStyle) Layout(gtx C) D {
	gtx.Constraints.Min.X = gtx.Constraints.Max.X
	return layout.Flex{
		Axis:      layout.Horizontal,
		Alignment: layout.Middle,
	}.Layout(gtx,
		layout.Rigid(s.Label.Layout),
		layout.Rigid(layout.Spacer{Width: s.Gap}.Layout),
		layout.Flexed(1, s.Slider.Layout),
	)
}

// ToggleStyle lays out a switch followed by any number of labels.
type ToggleStyle struct {
	Switch material.SwitchStyle
	Labels []material.LabelStyle
	// Padding surrounds each label.
	Padding layout.Inset
}

// Toggle constructs a ToggleStyle. description is read by assistive
// technology; labels are drawn.
func Toggle(th *material.Theme, value *widget.Bool, description string, labels ...string) ToggleStyle {
	t := ToggleStyle{
		Switch:  material.Switch(th, value, description),
		Padding: layout.Inset{Top: unit.Dp(10), Bottom: unit.Dp(10), Left: unit.Dp(8)},
	}
	for _, l := range labels {
		t.Labels = append(t.Labels, material.Body1(th, l))
	}
	return t
}

func (t ToggleStyle) Layout(gtx C) D {
	children := []layout.FlexChild{layout.Rigid(t.Switch.Layout)}
	for ii := range t.Labels {
		label := t.Labels[ii]
		children = append(children, layout.Rigid(func(gtx C) D {
			return t.Padding.Layout(gtx, label.Layout)
		}))
	}
	return layout.Flex{
		Axis:      layout.Horizontal,
		Alignment: layout.Middle,
	}.Layout(gtx, children...)
}
