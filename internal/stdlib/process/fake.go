package process

import (
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns a process library backed by a small, fixed process
// table, avoiding any real /proc or toolhelp access (§4.6 fake bindings).
func NewFake() value.Dispatcher {
	fk := &fakeProcs{
		procs: []ProcInfo{
			{PID: 1, PPID: 0, Name: "init", Path: "/sbin/init", Username: "0", Cmdline: "/sbin/init"},
			{PID: 1337, PPID: 1, Name: "eldritch", Path: "/opt/eldritch", Username: "1000", Cmdline: "/opt/eldritch --fake"},
		},
		conns: []Connection{
			{LocalAddr: "127.0.0.1:4444", RemoteAddr: "0.0.0.0:0", State: "LISTEN", PID: 1337},
		},
	}
	return &library.Table{Name: "process", Methods: map[string]library.Method{
		"list":    fk.list,
		"info":    fk.info,
		"name":    fk.name,
		"kill":    fk.kill,
		"netstat": fk.netstat,
	}}
}

type fakeProcs struct {
	procs []ProcInfo
	conns []Connection
}

func (fk *fakeProcs) find(pid int64) (ProcInfo, bool) {
	for _, p := range fk.procs {
		if p.PID == pid {
			return p, true
		}
	}
	return ProcInfo{}, false
}

func (fk *fakeProcs) list(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	out := make([]value.Value, len(fk.procs))
	for i, p := range fk.procs {
		out[i] = procToDict(p)
	}
	return value.NewList(out), nil
}

func (fk *fakeProcs) info(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	pid := int64(1337)
	if len(args) == 1 {
		var err error
		pid, err = library.Int("info", args[0])
		if err != nil {
			return value.None, err
		}
	}
	p, ok := fk.find(pid)
	if !ok {
		return value.None, library.MethodError(diag.ValueError, "process not found")
	}
	return procToDict(p), nil
}

func (fk *fakeProcs) name(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	pid, err := library.Int("name", args[0])
	if err != nil {
		return value.None, err
	}
	p, ok := fk.find(pid)
	if !ok {
		return value.None, library.MethodError(diag.ValueError, "process not found")
	}
	return value.String(p.Name), nil
}

func (fk *fakeProcs) kill(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	pid, err := library.Int("kill", args[0])
	if err != nil {
		return value.None, err
	}
	for i, p := range fk.procs {
		if p.PID == pid {
			fk.procs = append(fk.procs[:i], fk.procs[i+1:]...)
			return value.None, nil
		}
	}
	return value.None, library.MethodError(diag.ValueError, "process not found")
}

func (fk *fakeProcs) netstat(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	out := make([]value.Value, len(fk.conns))
	for i, c := range fk.conns {
		d := value.NewDictValue()
		d.Dict().Set(value.String("local_addr"), value.String(c.LocalAddr))
		d.Dict().Set(value.String("remote_addr"), value.String(c.RemoteAddr))
		d.Dict().Set(value.String("state"), value.String(c.State))
		d.Dict().Set(value.String("pid"), value.Int(c.PID))
		out[i] = d
	}
	return value.NewList(out), nil
}
