// Package ui lays out the list benchmark: a count slider, a strategy switch
// and either a virtualized or an eagerly laid out list of item cards.
package ui

import (
	"fmt"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~gioverse/listbench"
	"git.sr.ht/~gioverse/listbench/config"
	"git.sr.ht/~gioverse/listbench/gen"
	"git.sr.ht/~gioverse/listbench/model"
	"git.sr.ht/~gioverse/listbench/regen"
	matlb "git.sr.ht/~gioverse/listbench/widget/material"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// detailWords is the length of the filler text in an expanded card.
const detailWords = 10

// AccountIcon is drawn in the detail block of every card.
var AccountIcon *widget.Icon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ActionAccountBox)
	return icon
}()

// Requester starts regenerations and reports their results.
// *regen.Controller implements it.
type Requester interface {
	Request(count int) (*regen.Task, error)
	Latest() (regen.Snapshot, bool)
}

// UI holds state for, and lays out, the benchmark.
type UI struct {
	// Theme used by every widget.
	Theme *material.Theme
	// Config bounds the slider and picks the initial strategy.
	Config config.Config
	// Requester is told about every change of the requested count.
	Requester Requester
	// Logger reports rejected requests.
	Logger zerolog.Logger

	// Count is the slider state.
	Count widget.Float
	// Lazy selects the virtualized list.
	Lazy widget.Bool
	// LazyList is scrolled by the virtualized strategy.
	LazyList widget.List
	// EagerList is scrolled by the eager strategy. It holds a single element
	// containing every row.
	EagerList widget.List
	// Rows presents the current snapshot and keeps per-card state.
	Rows *listbench.RowManager

	// requested is the last count handed to Requester.
	requested int
	// shown identifies the snapshot held by Rows.
	shown uuid.UUID
	// details is the filler text of expanded cards.
	details string
}

// New constructs a UI and requests the initial data set.
func New(th *material.Theme, cfg config.Config, req Requester, log zerolog.Logger) *UI {
	ui := &UI{
		Theme:     th,
		Config:    cfg,
		Requester: req,
		Logger:    log,
		Count:     widget.Float{Value: float32(cfg.DefaultCount)},
		Lazy:      widget.Bool{Value: cfg.LazyList()},
		details:   gen.Details(detailWords),
	}
	ui.LazyList.Axis = layout.Vertical
	ui.EagerList.Axis = layout.Vertical
	ui.Rows = listbench.NewManager(
		func(listbench.Row) interface{} {
			return &matlb.CardState{Accent: gen.Accent()}
		},
		func(r listbench.Row, state interface{}) layout.Widget {
			item := r.(model.Row).Item
			return matlb.Card(ui.Theme, state.(*matlb.CardState), item, ui.details, AccountIcon).Layout
		},
	)
	ui.request(cfg.Clamp(cfg.DefaultCount))
	return ui
}

// Requested returns the count most recently handed to the Requester.
func (ui *UI) Requested() int {
	return ui.requested
}

// Update reconciles widget state with the Requester: slider movements become
// requests and delivered snapshots replace the presented rows.
func (ui *UI) Update() {
	if n := ui.Config.Clamp(int(ui.Count.Value)); n != ui.requested {
		ui.request(n)
	}
	if snap, ok := ui.Requester.Latest(); ok && snap.Task != ui.shown {
		ui.shown = snap.Task
		ui.Rows.SetRows(model.Rows(snap.Items))
	}
}

func (ui *UI) request(n int) {
	ui.requested = n
	if _, err := ui.Requester.Request(n); err != nil {
		ui.Logger.Warn().Err(err).Int("count", n).Msg("requesting regeneration")
	}
}

// Layout the UI.
func (ui *UI) Layout(gtx C) D {
	ui.Update()
	return layout.Inset{
		Top:    unit.Dp(30),
		Bottom: unit.Dp(30),
		Left:   unit.Dp(20),
		Right:  unit.Dp(20),
	}.Layout(gtx, func(gtx C) D {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(ui.layoutControls),
			layout.Rigid(func(gtx C) D {
				return layout.Inset{Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx,
					component.Divider(ui.Theme).Layout)
			}),
			layout.Rigid(material.Body1(ui.Theme, "List under test:").Layout),
			layout.Flexed(1, ui.layoutList),
		)
	})
}

func (ui *UI) layoutControls(gtx C) D {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return matlb.LabeledSlider(ui.Theme, &ui.Count,
				float32(ui.Config.MinCount), float32(ui.Config.MaxCount),
				fmt.Sprintf("Items: %d", ui.requested),
			).Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			return matlb.Toggle(ui.Theme, &ui.Lazy, "Toggle list strategy",
				"Toggle list strategy", ui.Strategy()).Layout(gtx)
		}),
	)
}

// Strategy describes the active list strategy.
func (ui *UI) Strategy() string {
	if ui.Lazy.Value {
		return "Currently using the virtualized list"
	}
	return "Currently using the eager list"
}

func (ui *UI) layoutList(gtx C) D {
	gtx.Constraints.Min.X = gtx.Constraints.Max.X
	if ui.Lazy.Value {
		return material.List(ui.Theme, &ui.LazyList).Layout(gtx, ui.Rows.Len(), ui.Rows.Layout)
	}
	return material.List(ui.Theme, &ui.EagerList).Layout(gtx, 1, func(gtx C, _ int) D {
		return ui.layoutEager(gtx)
	})
}

// layoutEager lays out every row, visible or not.
func (ui *UI) layoutEager(gtx C) D {
	children := make([]layout.FlexChild, ui.Rows.Len())
	for ii := range children {
		ii := ii
		children[ii] = layout.Rigid(func(gtx C) D {
			return ui.Rows.Layout(gtx, ii)
		})
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}
