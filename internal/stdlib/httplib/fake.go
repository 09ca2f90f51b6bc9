package httplib

import (
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns an http library that performs no network I/O: get/post
// return a canned 200 response, download writes nothing and returns None.
func NewFake() value.Dispatcher {
	fk := &fakeHTTP{}
	return &library.Table{Name: "http", Methods: map[string]library.Method{
		"download": fk.download,
		"get":      fk.get,
		"post":     fk.post,
	}}
}

type fakeHTTP struct{}

func (fk *fakeHTTP) canned() value.Value {
	d := value.NewDictValue()
	d.Dict().Set(value.String("status_code"), value.Int(200))
	d.Dict().Set(value.String("body"), value.String(`{"ok":true}`))
	d.Dict().Set(value.String("headers"), library.ToStringDict(map[string]string{"Content-Type": "application/json"}))
	return d
}

func (fk *fakeHTTP) download(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("download", args, 2); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (fk *fakeHTTP) get(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get", args, 1); err != nil {
		return value.None, err
	}
	return fk.canned(), nil
}

func (fk *fakeHTTP) post(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("post", args, 1); err != nil {
		return value.None, err
	}
	return fk.canned(), nil
}
