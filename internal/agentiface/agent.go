// Package agentiface defines the Agent collaborator (§6): the external
// implant runtime that the report, agent, and assets libraries delegate
// to. Nothing in this package implements a transport, scheduler, or
// protocol — those are explicitly out of scope (§1) — it only declares the
// boundary and a canned Fake for tests and the fake-binding mode (§4.6).
package agentiface

// Transport names one of the implant's registered callback carriers
// (HTTP/gRPC/DNS, per §1 — the carriers themselves are out of scope here).
type Transport struct {
	Name string
	URI  string
}

// Task is the external scheduler's view of a running or queued unit of
// work, as surfaced by agent.list_tasks.
type Task struct {
	ID     int64
	Name   string
	Status string
}

// Credential is a structured secret observed by a script and handed to the
// report library for delivery to the callback server.
type Credential struct {
	Kind     string // "ssh_key" or "user_password"
	User     string
	Material string // key or password; never logged by callers
}

// Agent is the external collaborator described in §6. The runtime never
// implements it directly; a host embedding Eldritch supplies a concrete
// implementation wired to its own transport/scheduler.
type Agent interface {
	// FetchAsset resolves name against the agent-served remote manifest
	// (internal/stdlib/assets reads this before falling back to embedded
	// assets).
	FetchAsset(name string) ([]byte, error)

	ReportFile(chunk []byte) error
	ReportCredential(cred Credential) error
	ReportProcessList(procs []map[string]any) error
	ReportTaskOutput(output string) error

	GetConfig() map[string]string
	SetConfig(key, value string)

	GetCallbackInterval() int64
	SetCallbackInterval(seconds int64)
	SetCallbackURI(uri string)

	ListTransports() []Transport
	GetTransport() Transport
	SetTransport(name string) error

	// ListTasks and StopTask back agent.list_tasks/stop_task. The original
	// source leaves these as unfinished skeletons (§9 Open Questions); this
	// interface only declares the shape, it does not invent scheduling
	// semantics the source never committed to.
	ListTasks() ([]Task, error)
	StopTask(id int64) error

	StartReverseShell(uri string) error
}
