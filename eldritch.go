// Package eldritch is the host-embedding surface (§6): construct an
// interpreter, register libraries, interpret source, and optionally drive
// it through the REPL engine. Nothing in this package implements a
// transport, scheduler, or CLI — those are owned by the surrounding agent
// binary and the cmd/eldritch entry point, per §6's "no file format, no
// wire protocol, no CLI surface defined by the core."
package eldritch

import (
	"io/fs"
	"log/slog"

	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/repl"
	"github.com/spellshift/eldritch/internal/stdlib/agentlib"
	"github.com/spellshift/eldritch/internal/stdlib/assets"
	"github.com/spellshift/eldritch/internal/stdlib/cache"
	"github.com/spellshift/eldritch/internal/stdlib/crypto"
	"github.com/spellshift/eldritch/internal/stdlib/events"
	"github.com/spellshift/eldritch/internal/stdlib/file"
	"github.com/spellshift/eldritch/internal/stdlib/httplib"
	"github.com/spellshift/eldritch/internal/stdlib/process"
	"github.com/spellshift/eldritch/internal/stdlib/randomlib"
	"github.com/spellshift/eldritch/internal/stdlib/regexlib"
	"github.com/spellshift/eldritch/internal/stdlib/report"
	"github.com/spellshift/eldritch/internal/stdlib/sysinfo"
	"github.com/spellshift/eldritch/internal/stdlib/timelib"

	"github.com/spellshift/eldritch/internal/interp"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// Printer is re-exported so host code never needs to import internal/value
// directly just to implement §6's two-sink print abstraction.
type Printer = value.Printer

// Value is re-exported for the same reason; host code receiving the
// result of Interpret never needs internal/value for the common cases
// (Kind checks, Display/Repr).
type Value = value.Value

// Options configures the libraries an Interpreter installs. A nil Agent
// selects agentiface.NewFake() for report/assets/agent; a nil Embedded
// disables the assets library's embedded-fallback source; FakeLibraries
// swaps every stdlib package for its canned-data NewFake() constructor
// (§4.6) instead of wiring real host I/O — used for tests and for the
// REPL's --fake mode.
type Options struct {
	Agent         agentiface.Agent
	Embedded      fs.FS
	AssetManifest assets.Manifest
	AssetCacheDir string
	Cache         *cache.Store
	Log           *slog.Logger
	FakeLibraries bool
}

// Interpreter wraps the tree-walking core plus every installed library,
// the construction unit a host embeds.
type Interpreter struct {
	in     *interp.Interp
	root   *value.Env
	events *events.Library
}

// New constructs an interpreter with a Printer installed and every
// standard library registered per opts (§6 "construct an interpreter,
// optionally install a Printer, register libraries").
func New(printer Printer, opts Options) *Interpreter {
	if printer == nil {
		printer = value.StdPrinter{}
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewStore()
	}

	root := value.NewRoot(printer)
	in := interp.New(root)

	ev := events.New(in, opts.Log)

	ie := &Interpreter{in: in, root: root, events: ev}
	ie.installLibraries(opts)
	return ie
}

func (ie *Interpreter) installLibraries(opts Options) {
	agent := opts.Agent
	if agent == nil {
		agent = agentiface.NewFake()
	}

	if opts.FakeLibraries {
		library.Register(ie.root, "file", file.NewFake())
		library.Register(ie.root, "process", process.NewFake())
		library.Register(ie.root, "crypto", crypto.NewFake())
		library.Register(ie.root, "http", httplib.NewFake())
		library.Register(ie.root, "regex", regexlib.NewFake())
		library.Register(ie.root, "time", timelib.NewFake())
		library.Register(ie.root, "random", randomlib.NewFake())
		library.Register(ie.root, "sys", sysinfo.NewFake())
		library.Register(ie.root, "report", report.NewFake())
		library.Register(ie.root, "assets", assets.NewFake())
		library.Register(ie.root, "cache", cache.NewFake())
		library.Register(ie.root, "agent", agentlib.NewFake())
	} else {
		library.Register(ie.root, "file", file.New(opts.Log))
		library.Register(ie.root, "process", process.New())
		library.Register(ie.root, "crypto", crypto.New())
		library.Register(ie.root, "http", httplib.New())
		library.Register(ie.root, "regex", regexlib.New())
		library.Register(ie.root, "time", timelib.New())
		library.Register(ie.root, "random", randomlib.New())
		library.Register(ie.root, "sys", sysinfo.New())
		library.Register(ie.root, "report", report.New(agent))
		library.Register(ie.root, "assets", assets.New(agent, opts.Embedded, opts.AssetManifest, opts.AssetCacheDir))
		library.Register(ie.root, "cache", cache.New(opts.Cache))
		library.Register(ie.root, "agent", agentlib.New(agent, evaluator{ie.in, ie.root}))
	}

	library.Register(ie.root, "events", ie.events.Dispatcher())
}

// evaluator adapts Interpreter to agentlib.Evaluator, satisfying
// agent.eval(code) by running the snippet against the interpreter's root
// environment (shared state with the rest of the script, matching the
// semantics of the builtin eval()).
type evaluator struct {
	in   *interp.Interp
	root *value.Env
}

func (e evaluator) Eval(source string) (value.Value, error) {
	return e.in.Eval(e.root, source, token.Span{})
}

// Interpret parses and runs source, returning the trailing expression's
// value (or None) per §6.
func (ie *Interpreter) Interpret(source string) (Value, error) {
	return ie.in.Eval(ie.root, source, token.Span{})
}

// DefineVariable injects a value into the root environment before running
// a script, canonically used for `input_params` (§6).
func (ie *Interpreter) DefineVariable(name string, v Value) {
	ie.root.DefineLocal(name, v)
}

// TriggerEvent is the host-callable event-trigger path (§6 "host calls
// trigger_event(name, args)").
func (ie *Interpreter) TriggerEvent(name string, args []Value) {
	ie.events.TriggerEvent(name, args)
}

// REPL returns a REPL engine driving this interpreter's root environment
// (§4.8, §6 "one function input(line), one function complete(prefix,
// cursor)").
func (ie *Interpreter) REPL() *repl.REPL {
	return repl.New(ie.in, ie.root)
}
