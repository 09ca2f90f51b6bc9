//go:build linux

package process

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

func currentPID() int64 { return int64(os.Getpid()) }

func listProcesses() ([]ProcInfo, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	var out []ProcInfo
	for _, e := range entries {
		pid, err := strconv.ParseInt(e.Name(), 10, 64)
		if err != nil {
			continue
		}
		p, err := infoProcess(pid)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func infoProcess(pid int64) (ProcInfo, error) {
	base := filepath.Join("/proc", strconv.FormatInt(pid, 10))
	comm, err := os.ReadFile(filepath.Join(base, "comm"))
	if err != nil {
		return ProcInfo{}, notFoundErr(pid)
	}
	name := strings.TrimSpace(string(comm))
	path, _ := os.Readlink(filepath.Join(base, "exe"))
	cmdlineRaw, _ := os.ReadFile(filepath.Join(base, "cmdline"))
	cmdline := strings.ReplaceAll(strings.TrimRight(string(cmdlineRaw), "\x00"), "\x00", " ")

	ppid := int64(0)
	if stat, err := os.ReadFile(filepath.Join(base, "stat")); err == nil {
		fields := strings.Fields(string(stat))
		if len(fields) > 3 {
			if v, err := strconv.ParseInt(fields[3], 10, 64); err == nil {
				ppid = v
			}
		}
	}

	username := ""
	if st, err := os.Stat(base); err == nil {
		if sysStat, ok := st.Sys().(*syscall.Stat_t); ok {
			username = strconv.FormatUint(uint64(sysStat.Uid), 10)
		}
	}

	return ProcInfo{PID: pid, PPID: ppid, Name: name, Path: path, Username: username, Cmdline: cmdline}, nil
}

func killProcess(pid int64) error {
	return unix.Kill(int(pid), unix.SIGKILL)
}

func listConnections() ([]Connection, error) {
	var out []Connection
	for _, f := range []string{"/proc/net/tcp", "/proc/net/tcp6"} {
		conns, err := parseNetTCP(f)
		if err != nil {
			continue
		}
		out = append(out, conns...)
	}
	return out, nil
}

func parseNetTCP(path string) ([]Connection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Connection
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		out = append(out, Connection{
			LocalAddr:  decodeHexAddr(fields[1]),
			RemoteAddr: decodeHexAddr(fields[2]),
			State:      tcpStateName(fields[3]),
		})
	}
	return out, nil
}

func tcpStateName(hex string) string {
	states := map[string]string{
		"01": "ESTABLISHED", "02": "SYN_SENT", "03": "SYN_RECV",
		"04": "FIN_WAIT1", "05": "FIN_WAIT2", "06": "TIME_WAIT",
		"07": "CLOSE", "08": "CLOSE_WAIT", "09": "LAST_ACK",
		"0A": "LISTEN", "0B": "CLOSING",
	}
	if s, ok := states[strings.ToUpper(hex)]; ok {
		return s
	}
	return hex
}

func decodeHexAddr(s string) string {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return s
	}
	ipHex, portHex := parts[0], parts[1]
	port, err := strconv.ParseUint(portHex, 16, 32)
	if err != nil || len(ipHex) != 8 {
		return s
	}
	b := make([]byte, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseUint(ipHex[i*2:i*2+2], 16, 8)
		if err != nil {
			return s
		}
		b[3-i] = byte(v)
	}
	return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + "." +
		strconv.Itoa(int(b[2])) + "." + strconv.Itoa(int(b[3])) + ":" + strconv.FormatUint(port, 10)
}
