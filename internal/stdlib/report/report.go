// Package report implements the report standard library (§4.7):
// CBOR-encodes structured messages and hands them to the Agent
// collaborator (internal/agentiface). golang.org/x/crypto/ssh validates
// key material passed to ssh_key before it is reported as a credential.
package report

import (
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/ssh"

	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func New(a agentiface.Agent) value.Dispatcher {
	r := &impl{agent: a}
	return &library.Table{Name: "report", Methods: map[string]library.Method{
		"file":          r.file,
		"process_list":  r.processList,
		"ssh_key":       r.sshKey,
		"user_password": r.userPassword,
	}}
}

type impl struct{ agent agentiface.Agent }

// fileMessage is the CBOR-encoded payload shape delivered to
// Agent.ReportFile; process lists go to Agent.ReportProcessList unencoded.
type fileMessage struct {
	Path    string `cbor:"path"`
	Content []byte `cbor:"content"`
}

func (r *impl) file(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("file", args, 1); err != nil {
		return value.None, err
	}
	path, err := library.Str("file", args[0])
	if err != nil {
		return value.None, err
	}
	msg, err := cbor.Marshal(fileMessage{Path: path})
	if err != nil {
		return value.None, err
	}
	if err := r.agent.ReportFile(msg); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (r *impl) processList(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("process_list", args, 1); err != nil {
		return value.None, err
	}
	if args[0].Kind() != value.KindList {
		return value.None, library.MethodError(diag.TypeError, "process_list() expected a list, got '"+args[0].Kind().String()+"'")
	}
	procs := make([]map[string]any, 0, args[0].List().Len())
	for _, v := range args[0].List().Snapshot() {
		if v.Kind() != value.KindDict {
			return value.None, library.MethodError(diag.TypeError, "process_list() expected a list of dicts")
		}
		procs = append(procs, dictToAny(v))
	}
	if err := r.agent.ReportProcessList(procs); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func dictToAny(v value.Value) map[string]any {
	out := make(map[string]any)
	for _, k := range v.Dict().SortedKeys() {
		dv, _, _ := v.Dict().Get(k)
		out[value.Display(k)] = value.Display(dv)
	}
	return out
}

// sshKey validates the key material with golang.org/x/crypto/ssh before
// reporting it, so malformed input fails fast rather than silently
// forwarding garbage to the callback server.
func (r *impl) sshKey(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("ssh_key", args, 2); err != nil {
		return value.None, err
	}
	user, err := library.Str("ssh_key", args[0])
	if err != nil {
		return value.None, err
	}
	key, err := library.Str("ssh_key", args[1])
	if err != nil {
		return value.None, err
	}
	if _, err := ssh.ParsePrivateKey([]byte(key)); err != nil {
		if _, _, _, _, pubErr := ssh.ParseAuthorizedKey([]byte(key)); pubErr != nil {
			return value.None, library.MethodError(diag.ValueError, "ssh_key() not a recognizable SSH key: "+err.Error())
		}
	}
	return value.None, r.agent.ReportCredential(agentiface.Credential{Kind: "ssh_key", User: user, Material: key})
}

func (r *impl) userPassword(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("user_password", args, 2); err != nil {
		return value.None, err
	}
	user, err := library.Str("user_password", args[0])
	if err != nil {
		return value.None, err
	}
	pw, err := library.Str("user_password", args[1])
	if err != nil {
		return value.None, err
	}
	return value.None, r.agent.ReportCredential(agentiface.Credential{Kind: "user_password", User: user, Material: pw})
}
