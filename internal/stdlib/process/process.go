// Package process implements the process standard library (§4.7):
// listing, inspecting, naming, and killing OS processes, plus a netstat
// over /proc. Split along the teacher's own OS-fork pattern
// (core/decorator/local_session_{unix,windows}.go): a cross-platform
// Dispatcher here delegates to build-tagged kill/list helpers.
package process

import (
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func New() value.Dispatcher {
	return &library.Table{Name: "process", Methods: map[string]library.Method{
		"list":    listMethod,
		"info":    infoMethod,
		"name":    nameMethod,
		"kill":    killMethod,
		"netstat": netstatMethod,
	}}
}

func listMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("list", args, 0); err != nil {
		return value.None, err
	}
	procs, err := listProcesses()
	if err != nil {
		return value.None, err
	}
	out := make([]value.Value, len(procs))
	for i, p := range procs {
		out[i] = procToDict(p)
	}
	return value.NewList(out), nil
}

func infoMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.ArityRange("info", args, 0, 1); err != nil {
		return value.None, err
	}
	pid, err := optionalPid(args)
	if err != nil {
		return value.None, err
	}
	p, err := infoProcess(pid)
	if err != nil {
		return value.None, err
	}
	return procToDict(p), nil
}

func nameMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("name", args, 1); err != nil {
		return value.None, err
	}
	pid, err := library.Int("name", args[0])
	if err != nil {
		return value.None, err
	}
	p, err := infoProcess(pid)
	if err != nil {
		return value.None, err
	}
	return value.String(p.Name), nil
}

func killMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("kill", args, 1); err != nil {
		return value.None, err
	}
	pid, err := library.Int("kill", args[0])
	if err != nil {
		return value.None, err
	}
	if err := killProcess(pid); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func netstatMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("netstat", args, 0); err != nil {
		return value.None, err
	}
	conns, err := listConnections()
	if err != nil {
		return value.None, err
	}
	out := make([]value.Value, len(conns))
	for i, c := range conns {
		d := value.NewDictValue()
		d.Dict().Set(value.String("local_addr"), value.String(c.LocalAddr))
		d.Dict().Set(value.String("remote_addr"), value.String(c.RemoteAddr))
		d.Dict().Set(value.String("state"), value.String(c.State))
		d.Dict().Set(value.String("pid"), value.Int(c.PID))
		out[i] = d
	}
	return value.NewList(out), nil
}

func optionalPid(args []value.Value) (int64, error) {
	if len(args) == 0 {
		return currentPID(), nil
	}
	return library.Int("info", args[0])
}

func procToDict(p ProcInfo) value.Value {
	d := value.NewDictValue()
	d.Dict().Set(value.String("pid"), value.Int(p.PID))
	d.Dict().Set(value.String("ppid"), value.Int(p.PPID))
	d.Dict().Set(value.String("name"), value.String(p.Name))
	d.Dict().Set(value.String("path"), value.String(p.Path))
	d.Dict().Set(value.String("username"), value.String(p.Username))
	d.Dict().Set(value.String("cmdline"), value.String(p.Cmdline))
	return d
}

// ProcInfo is the cross-platform shape a real/fake implementation fills in.
type ProcInfo struct {
	PID      int64
	PPID     int64
	Name     string
	Path     string
	Username string
	Cmdline  string
}

// Connection is one netstat row.
type Connection struct {
	LocalAddr  string
	RemoteAddr string
	State      string
	PID        int64
}

func notFoundErr(pid int64) error {
	return library.MethodError(diag.ValueError, "process not found")
}
