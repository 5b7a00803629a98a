package main

import (
	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/widget/material"
	"github.com/rs/zerolog"

	"git.sr.ht/~gioverse/listbench/config"
	"git.sr.ht/~gioverse/listbench/profile"
	"git.sr.ht/~gioverse/listbench/regen"
	"git.sr.ht/~gioverse/listbench/ui"
)

// loop handles window events and renders the application until the window
// is destroyed.
func loop(w *app.Window, cfg config.Config, ctrl *regen.Controller, profiler profile.Profiler, log zerolog.Logger) error {
	var (
		ops op.Ops
		th  = material.NewTheme(gofont.Collection())
		bui = ui.New(th, cfg, ctrl, log)
	)
	profiler.Start()
	defer profiler.Stop()
	for {
		select {
		case <-ctrl.Updated():
			w.Invalidate()
		case e := <-w.Events():
			switch e := e.(type) {
			case system.DestroyEvent:
				return e.Err
			case system.FrameEvent:
				gtx := layout.NewContext(&ops, e)
				profiler.Record(gtx)
				bui.Layout(gtx)
				e.Frame(gtx.Ops)
			}
		}
	}
}
