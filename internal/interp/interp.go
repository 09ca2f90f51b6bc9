// Package interp implements the Eldritch v2 tree-walking interpreter core
// (§4.4): environment-threaded statement execution, expression evaluation,
// and the function-call argument-binding protocol.
package interp

import (
	"fmt"

	"github.com/spellshift/eldritch/internal/ast"
	"github.com/spellshift/eldritch/internal/builtins"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/parser"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// MaxDepth is the recursion limit from §4.4 ("a depth counter, recursion
// limit ~500"). Exceeding it raises RecursionError rather than exhausting
// the Go stack.
const MaxDepth = 500

// frame records a call site for recursion-limit diagnostics and future
// traceback rendering (§3, "Call frame").
type frame struct {
	name string
	span token.Span
}

// Interp is one tree-walking interpreter instance. A host embeds it via
// New, registers libraries into the root Env, and calls Run.
type Interp struct {
	Root    *value.Env
	depth   int
	stack   []frame
	current string // current function name, for diagnostics
}

// New constructs an interpreter rooted at env, installing the fixed
// built-in table (§4.5) into it.
func New(root *value.Env) *Interp {
	in := &Interp{Root: root}
	builtins.Install(root, in)
	in.installEnvBuiltins()
	return in
}

// Run executes a program's top-level statements in the root environment and
// returns the value of the script, mirroring the REPL's "last expression
// result" semantics: a trailing bare expression statement's value is
// returned, otherwise None.
func (in *Interp) Run(prog *ast.Program) (value.Value, error) {
	return in.runStmts(in.Root, prog.Stmts)
}

// runStmts executes a statement sequence, returning the value of a trailing
// ExprStmt (used for both Run and eval()).
func (in *Interp) runStmts(env *value.Env, stmts []ast.Stmt) (value.Value, error) {
	last := value.None
	for _, s := range stmts {
		if es, ok := s.(*ast.ExprStmt); ok {
			v, err := in.evalExpr(env, es.X)
			if err != nil {
				return value.None, err
			}
			last = v
			continue
		}
		flow, err := in.execStmt(env, s)
		if err != nil {
			return value.None, err
		}
		if flow.Kind != FlowNext {
			return value.None, fmt.Errorf("%s outside loop/function", flow.Kind)
		}
		last = value.None
	}
	return last, nil
}

// execBlock executes a function/loop/if body, propagating Break/Continue/
// Return signals to the caller instead of treating them as errors.
func (in *Interp) execBlock(env *value.Env, stmts []ast.Stmt) (Flow, error) {
	for _, s := range stmts {
		flow, err := in.execStmt(env, s)
		if err != nil {
			return Flow{}, err
		}
		if flow.Kind != FlowNext {
			return flow, nil
		}
	}
	return Flow{Kind: FlowNext}, nil
}

func (in *Interp) execStmt(env *value.Env, s ast.Stmt) (Flow, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := in.evalExpr(env, n.X)
		return Flow{Kind: FlowNext}, err

	case *ast.PassStmt:
		return Flow{Kind: FlowNext}, nil

	case *ast.BreakStmt:
		return Flow{Kind: FlowBreak}, nil

	case *ast.ContinueStmt:
		return Flow{Kind: FlowContinue}, nil

	case *ast.ReturnStmt:
		if n.Value == nil {
			return Flow{Kind: FlowReturn, Value: value.None}, nil
		}
		v, err := in.evalExpr(env, n.Value)
		if err != nil {
			return Flow{}, err
		}
		return Flow{Kind: FlowReturn, Value: v}, nil

	case *ast.AssignStmt:
		return Flow{Kind: FlowNext}, in.execAssign(env, n)

	case *ast.TupleUnpackStmt:
		v, err := in.evalExpr(env, n.Value)
		if err != nil {
			return Flow{}, err
		}
		return Flow{Kind: FlowNext}, in.unpackAssign(env, n.Targets, v, n.Span())

	case *ast.FuncDef:
		fn := value.NewFunction(&value.Function{Name: n.Name, Params: n.Params, Body: n.Body, Env: env})
		env.DefineLocal(n.Name, fn)
		return Flow{Kind: FlowNext}, nil

	case *ast.IfStmt:
		cond, err := in.evalExpr(env, n.Cond)
		if err != nil {
			return Flow{}, err
		}
		if value.IsTruthy(cond) {
			return in.execBlock(env.NewChild(), n.Then)
		}
		if n.Else != nil {
			return in.execBlock(env.NewChild(), n.Else)
		}
		return Flow{Kind: FlowNext}, nil

	case *ast.WhileStmt:
		for {
			cond, err := in.evalExpr(env, n.Cond)
			if err != nil {
				return Flow{}, err
			}
			if !value.IsTruthy(cond) {
				break
			}
			flow, err := in.execBlock(env.NewChild(), n.Body)
			if err != nil {
				return Flow{}, err
			}
			if flow.Kind == FlowBreak {
				break
			}
			if flow.Kind == FlowReturn {
				return flow, nil
			}
		}
		return Flow{Kind: FlowNext}, nil

	case *ast.ForStmt:
		return in.execFor(env, n)

	default:
		return Flow{}, diag.New(diag.RuntimeError, s.Span(), fmt.Sprintf("unhandled statement %T", s))
	}
}

// execFor materializes the iterable once (§4.4: "mutations to the source
// during iteration do not affect the current pass") and runs the body once
// per element in a fresh child scope.
func (in *Interp) execFor(env *value.Env, n *ast.ForStmt) (Flow, error) {
	iterVal, err := in.evalExpr(env, n.Iter)
	if err != nil {
		return Flow{}, err
	}
	elts, err := iterate(iterVal)
	if err != nil {
		return Flow{}, diag.New(diag.TypeError, n.Iter.Span(), err.Error())
	}
	for _, e := range elts {
		child := env.NewChild()
		if err := in.assignTo(child, n.Target, e); err != nil {
			return Flow{}, err
		}
		flow, err := in.execBlock(child, n.Body)
		if err != nil {
			return Flow{}, err
		}
		if flow.Kind == FlowBreak {
			break
		}
		if flow.Kind == FlowReturn {
			return flow, nil
		}
	}
	return Flow{Kind: FlowNext}, nil
}

// Eval implements the `eval(code)` built-in (§4.4): parses code and runs it
// sharing env, so writes persist in the caller's scope. It consumes one
// unit of recursion budget like any other call, and parse errors surface
// as SyntaxError at the call site.
func (in *Interp) Eval(env *value.Env, code string, span token.Span) (value.Value, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > MaxDepth {
		return value.None, diag.New(diag.RecursionError, span, "maximum recursion depth exceeded")
	}
	prog, err := parser.Parse(code)
	if err != nil {
		if pe, ok := err.(*parser.Error); ok {
			return value.None, diag.New(diag.SyntaxError, span, pe.Msg)
		}
		return value.None, diag.New(diag.SyntaxError, span, err.Error())
	}
	return in.runStmts(env, prog.Stmts)
}

// iterate materializes any iterable Value (List, Tuple, Set, Dict, String,
// Bytes) into a snapshot slice.
func iterate(v value.Value) ([]value.Value, error) {
	switch v.Kind() {
	case value.KindList:
		return v.List().Snapshot(), nil
	case value.KindTuple:
		return v.Tuple(), nil
	case value.KindSet:
		return v.Set().Snapshot(), nil
	case value.KindDict:
		return v.Dict().SortedKeys(), nil
	case value.KindString:
		var out []value.Value
		for _, r := range v.AsString() {
			out = append(out, value.String(string(r)))
		}
		return out, nil
	case value.KindBytes:
		var out []value.Value
		for _, b := range v.AsBytes() {
			out = append(out, value.Int(int64(b)))
		}
		return out, nil
	}
	return nil, fmt.Errorf("'%s' object is not iterable", v.Kind())
}
