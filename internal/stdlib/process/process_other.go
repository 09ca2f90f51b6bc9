//go:build !linux && !windows

package process

import (
	"os"
	"syscall"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
)

// Darwin/BSD have no /proc by default; list/info/netstat are unsupported
// here the same way the teacher's own local_session build only forks
// cancellation, not full process introspection, per platform.

func currentPID() int64 { return int64(os.Getpid()) }

func listProcesses() ([]ProcInfo, error) {
	return nil, library.MethodError(diag.RuntimeError, "process.list() is not supported on this platform")
}

func infoProcess(pid int64) (ProcInfo, error) {
	if pid == currentPID() {
		return ProcInfo{PID: pid, Name: "self"}, nil
	}
	return ProcInfo{}, library.MethodError(diag.RuntimeError, "process.info() is not supported on this platform")
}

func killProcess(pid int64) error {
	proc, err := os.FindProcess(int(pid))
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGKILL)
}

func listConnections() ([]Connection, error) {
	return nil, library.MethodError(diag.RuntimeError, "process.netstat() is not supported on this platform")
}
