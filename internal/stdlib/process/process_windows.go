//go:build windows

package process

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
)

func currentPID() int64 { return int64(os.Getpid()) }

func listProcesses() ([]ProcInfo, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snap, &entry); err != nil {
		return nil, err
	}

	var out []ProcInfo
	for {
		out = append(out, ProcInfo{
			PID:  int64(entry.ProcessID),
			PPID: int64(entry.ParentProcessID),
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		})
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}
	return out, nil
}

func infoProcess(pid int64) (ProcInfo, error) {
	procs, err := listProcesses()
	if err != nil {
		return ProcInfo{}, err
	}
	for _, p := range procs {
		if p.PID == pid {
			return p, nil
		}
	}
	return ProcInfo{}, library.MethodError(diag.ValueError, "process not found")
}

func killProcess(pid int64) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.TerminateProcess(h, 1)
}

func listConnections() ([]Connection, error) {
	return nil, library.MethodError(diag.RuntimeError, "process.netstat() is not implemented on windows")
}
