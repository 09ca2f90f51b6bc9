package sysinfo

import (
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns a sys library reporting a fixed, canned host profile
// instead of probing the real machine (§4.6 fake bindings).
func NewFake() value.Dispatcher {
	return &library.Table{Name: "sys", Methods: map[string]library.Method{
		"get_os":     fakeGetOS,
		"get_ip":     fakeGetIP,
		"get_pid":    fakeConst(value.Int(1337)),
		"hostname":   fakeConst(value.String("fake-host")),
		"get_env":    fakeGetEnv,
		"is_linux":   fakeConst(value.Bool(true)),
		"is_windows": fakeConst(value.Bool(false)),
		"is_macos":   fakeConst(value.Bool(false)),
		"is_bsd":     fakeConst(value.Bool(false)),
	}}
}

func fakeConst(v value.Value) library.Method {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return v, nil
	}
}

func fakeGetOS(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	d := value.NewDictValue()
	d.Dict().Set(value.String("arch"), value.String("amd64"))
	d.Dict().Set(value.String("distro"), value.String("fakeOS 1.0"))
	d.Dict().Set(value.String("platform"), value.String("linux"))
	d.Dict().Set(value.String("desktop_env"), value.String(""))
	return d, nil
}

func fakeGetIP(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	d := value.NewDictValue()
	d.Dict().Set(value.String("name"), value.String("eth0"))
	d.Dict().Set(value.String("ip"), value.String("10.0.0.2"))
	return value.NewList([]value.Value{d}), nil
}

func fakeGetEnv(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	d := value.NewDictValue()
	d.Dict().Set(value.String("HOME"), value.String("/home/fake"))
	return d, nil
}
