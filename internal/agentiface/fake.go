package agentiface

import "sync"

// Fake is the canned-data Agent used by every library's fake-binding mode
// (§4.6) and by tests: it records what was reported/configured instead of
// doing any I/O, and returns deterministic, pre-seeded data.
type Fake struct {
	mu sync.Mutex

	Assets map[string][]byte

	ReportedFiles       [][]byte
	ReportedCredentials []Credential
	ReportedProcLists   [][]map[string]any
	ReportedTaskOutputs []string

	Config           map[string]string
	CallbackInterval int64
	CallbackURI      string
	Transports       []Transport
	ActiveTransport  Transport

	Tasks []Task
}

// NewFake returns a Fake seeded with a single "http" transport and no
// assets, suitable as a ready-to-use default for NewFake() stdlib modes.
func NewFake() *Fake {
	return &Fake{
		Assets:           make(map[string][]byte),
		Config:           make(map[string]string),
		CallbackInterval: 60,
		Transports:       []Transport{{Name: "http", URI: "https://example.test/callback"}},
		ActiveTransport:  Transport{Name: "http", URI: "https://example.test/callback"},
	}
}

func (f *Fake) FetchAsset(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.Assets[name]
	if !ok {
		return nil, errNotFound(name)
	}
	return b, nil
}

func (f *Fake) ReportFile(chunk []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReportedFiles = append(f.ReportedFiles, chunk)
	return nil
}

func (f *Fake) ReportCredential(cred Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReportedCredentials = append(f.ReportedCredentials, cred)
	return nil
}

func (f *Fake) ReportProcessList(procs []map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReportedProcLists = append(f.ReportedProcLists, procs)
	return nil
}

func (f *Fake) ReportTaskOutput(output string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReportedTaskOutputs = append(f.ReportedTaskOutputs, output)
	return nil
}

func (f *Fake) GetConfig() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.Config))
	for k, v := range f.Config {
		out[k] = v
	}
	return out
}

func (f *Fake) SetConfig(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Config[key] = value
}

func (f *Fake) GetCallbackInterval() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CallbackInterval
}

func (f *Fake) SetCallbackInterval(seconds int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallbackInterval = seconds
}

func (f *Fake) SetCallbackURI(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallbackURI = uri
	f.ActiveTransport.URI = uri
}

func (f *Fake) ListTransports() []Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Transport(nil), f.Transports...)
}

func (f *Fake) GetTransport() Transport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ActiveTransport
}

func (f *Fake) SetTransport(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.Transports {
		if t.Name == name {
			f.ActiveTransport = t
			return nil
		}
	}
	return errNotFound(name)
}

// ListTasks/StopTask: see the Agent doc comment — the original leaves these
// unspecified, so the fake returns an empty list / no-op success rather
// than inventing scheduling behavior.
func (f *Fake) ListTasks() ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Task(nil), f.Tasks...), nil
}

func (f *Fake) StopTask(id int64) error { return nil }

func (f *Fake) StartReverseShell(uri string) error { return nil }

type notFoundError struct{ name string }

func (e notFoundError) Error() string { return "not found: " + e.name }

func errNotFound(name string) error { return notFoundError{name: name} }
