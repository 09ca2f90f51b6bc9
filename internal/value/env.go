package value

import "fmt"

// Printer is the stdout/stderr sink abstraction from §4.5/§6. Host
// embedding swaps this to redirect `print`/`eprint` output.
type Printer interface {
	PrintOut(line int, text string)
	PrintErr(line int, text string)
}

// StdPrinter is the default Printer, used when no host Printer is
// installed.
type StdPrinter struct {
	Out, Err func(string)
}

func (p StdPrinter) PrintOut(_ int, text string) {
	if p.Out != nil {
		p.Out(text)
	} else {
		fmt.Println(text)
	}
}

func (p StdPrinter) PrintErr(_ int, text string) {
	if p.Err != nil {
		p.Err(text)
	} else {
		fmt.Println(text)
	}
}

// Env is a chained lexical scope (§3: "chained scope"). Child lookups
// defer to Parent; plain assignment (Assign) updates the nearest enclosing
// binding of the name and is local only when no scope binds it. The
// writable map is not consulted by Assign.
type Env struct {
	vars     map[string]Value
	Parent   *Env
	Printer  Printer
	writable map[string]bool
}

// NewRoot creates the interpreter's root environment.
func NewRoot(p Printer) *Env {
	return &Env{vars: make(map[string]Value), Printer: p}
}

// NewChild creates a scope nested under env, e.g. for a function call or
// a `for`/`while` body.
func (e *Env) NewChild() *Env {
	return &Env{vars: make(map[string]Value), Parent: e, Printer: e.printer()}
}

// RootPrinter resolves the nearest enclosing Printer, walking outward
// through Parent links. Exported for the print/eprint built-ins (§4.5),
// which are env-aware rather than generic NativeFunctions.
func (e *Env) RootPrinter() Printer { return e.printer() }

func (e *Env) printer() Printer {
	for env := e; env != nil; env = env.Parent {
		if env.Printer != nil {
			return env.Printer
		}
	}
	return nil
}

// Get resolves name, walking outward through Parent links.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return None, false
}

// DefineLocal binds name in this scope only, shadowing any outer binding.
func (e *Env) DefineLocal(name string, v Value) {
	e.vars[name] = v
}

// Assign rebinds name: if it already resolves in an outer scope, that
// scope's binding is updated (closure upvalue semantics, §3); otherwise a
// new local binding is created.
func (e *Env) Assign(name string, v Value) {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}

// Names returns every name visible from this scope, used by `dir()` and
// REPL completion.
func (e *Env) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for env := e; env != nil; env = env.Parent {
		for n := range env.vars {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}
