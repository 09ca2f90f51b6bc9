// Package sysinfo implements the sys standard library (§4.7): OS/arch
// identification, network interfaces, pid, hostname, environment, and the
// is_linux/is_windows/is_macos/is_bsd platform predicates.
package sysinfo

import (
	"net"
	"os"
	"runtime"
	"strings"

	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func New() value.Dispatcher {
	return &library.Table{Name: "sys", Methods: map[string]library.Method{
		"get_os":     getOS,
		"get_ip":     getIP,
		"get_pid":    getPID,
		"hostname":   hostname,
		"get_env":    getEnv,
		"is_linux":   isPlatform("is_linux", "linux"),
		"is_windows": isPlatform("is_windows", "windows"),
		"is_macos":   isPlatform("is_macos", "darwin"),
		"is_bsd":     isBSD,
	}}
}

func getOS(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get_os", args, 0); err != nil {
		return value.None, err
	}
	d := value.NewDictValue()
	d.Dict().Set(value.String("arch"), value.String(runtime.GOARCH))
	d.Dict().Set(value.String("distro"), value.String(distroName()))
	d.Dict().Set(value.String("platform"), value.String(runtime.GOOS))
	d.Dict().Set(value.String("desktop_env"), value.String(desktopEnv()))
	return d, nil
}

func distroName() string {
	if runtime.GOOS != "linux" {
		return runtime.GOOS
	}
	b, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "linux"
	}
	for _, line := range strings.Split(string(b), "\n") {
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), `"`)
		}
	}
	return "linux"
}

func desktopEnv() string {
	if v := os.Getenv("XDG_CURRENT_DESKTOP"); v != "" {
		return v
	}
	if v := os.Getenv("DESKTOP_SESSION"); v != "" {
		return v
	}
	return ""
}

func getIP(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get_ip", args, 0); err != nil {
		return value.None, err
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return value.None, err
	}
	var out []value.Value
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			d := value.NewDictValue()
			d.Dict().Set(value.String("name"), value.String(iface.Name))
			d.Dict().Set(value.String("ip"), value.String(ipnet.IP.String()))
			out = append(out, d)
		}
	}
	return value.NewList(out), nil
}

func getPID(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get_pid", args, 0); err != nil {
		return value.None, err
	}
	return value.Int(int64(os.Getpid())), nil
}

func hostname(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("hostname", args, 0); err != nil {
		return value.None, err
	}
	h, err := os.Hostname()
	if err != nil {
		return value.None, err
	}
	return value.String(h), nil
}

func getEnv(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get_env", args, 0); err != nil {
		return value.None, err
	}
	d := value.NewDictValue()
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			d.Dict().Set(value.String(parts[0]), value.String(parts[1]))
		}
	}
	return d, nil
}

func isPlatform(name, goos string) library.Method {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if err := library.Arity(name, args, 0); err != nil {
			return value.None, err
		}
		return value.Bool(runtime.GOOS == goos), nil
	}
}

func isBSD(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("is_bsd", args, 0); err != nil {
		return value.None, err
	}
	switch runtime.GOOS {
	case "freebsd", "openbsd", "netbsd", "dragonfly":
		return value.Bool(true), nil
	}
	return value.Bool(false), nil
}
