// Package profile unifies the profiling api between Gio profiler and pkg/profile.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"gioui.org/layout"
	"gioui.org/x/profiling"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

// ErrUnknown is returned by Parse for names that are not an Opt.
var ErrUnknown = errors.New("unknown profile option")

// Profiler unifies the profiling api between Gio profiler and pkg/profile.
type Profiler struct {
	Type     Opt
	Starter  func(p *profile.Profile)
	Stopper  func()
	Recorder func(gtx layout.Context)
}

// Start profiling.
func (pfn *Profiler) Start() {
	if pfn.Starter != nil && pfn.Type != Gio {
		pfn.Stopper = profile.Start(pfn.Starter, profile.Quiet).Stop
	} else if pfn.Type == Gio {
		pfn.Starter(nil)
	}
}

// Stop profiling.
func (pfn *Profiler) Stop() {
	if pfn.Stopper != nil {
		pfn.Stopper()
	}
}

// Record GUI stats per frame. Wrap the frame layout so the list strategies
// can be compared frame by frame.
func (pfn Profiler) Record(gtx layout.Context) {
	if pfn.Recorder != nil {
		pfn.Recorder(gtx)
	}
}

// Opt specifies the various profiling options.
type Opt string

const (
	None      Opt = "none"
	CPU       Opt = "cpu"
	Memory    Opt = "mem"
	Block     Opt = "block"
	Goroutine Opt = "goroutine"
	Mutex     Opt = "mutex"
	Trace     Opt = "trace"
	Gio       Opt = "gio"
)

// Opts lists every option in the order shown in help text.
var Opts = []Opt{None, CPU, Memory, Block, Goroutine, Mutex, Trace, Gio}

// Parse converts a name into an Opt. The empty string means None.
func Parse(name string) (Opt, error) {
	if name == "" {
		return None, nil
	}
	for _, o := range Opts {
		if string(o) == strings.ToLower(name) {
			return o, nil
		}
	}
	return None, fmt.Errorf("%w %q, use one of %s", ErrUnknown, name, Help())
}

// Help renders the options as "[none, cpu, ...]".
func Help() string {
	names := make([]string, len(Opts))
	for i, o := range Opts {
		names[i] = string(o)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// NewProfiler creates a profiler based on the selected option. Problems
// starting or stopping the Gio frame recorder are reported to log.
func (p Opt) NewProfiler(log zerolog.Logger) Profiler {
	switch p {
	case "", None:
		return Profiler{Type: p}
	case CPU:
		return Profiler{Type: p, Starter: profile.CPUProfile}
	case Memory:
		return Profiler{Type: p, Starter: profile.MemProfile}
	case Block:
		return Profiler{Type: p, Starter: profile.BlockProfile}
	case Goroutine:
		return Profiler{Type: p, Starter: profile.GoroutineProfile}
	case Mutex:
		return Profiler{Type: p, Starter: profile.MutexProfile}
	case Trace:
		return Profiler{Type: p, Starter: profile.TraceProfile}
	case Gio:
		var (
			recorder *profiling.CSVTimingRecorder
			err      error
		)
		return Profiler{
			Type: p,
			Starter: func(*profile.Profile) {
				recorder, err = profiling.NewRecorder(nil)
				if err != nil {
					log.Error().Err(err).Msg("starting frame profiler")
				}
			},
			Stopper: func() {
				if recorder == nil {
					return
				}
				if err := recorder.Stop(); err != nil {
					log.Error().Err(err).Msg("stopping frame profiler")
				}
			},
			Recorder: func(gtx layout.Context) {
				if recorder == nil {
					return
				}
				recorder.Profile(gtx)
			},
		}
	}
	return Profiler{}
}
