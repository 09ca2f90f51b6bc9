package interp

import (
	"strconv"

	"github.com/spellshift/eldritch/internal/ast"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// execAssign handles AssignStmt, which after parsing may carry more than
// one Target for a chained assignment `a = b = expr`, and either a plain
// ASSIGN or an augmented operator.
func (in *Interp) execAssign(env *value.Env, n *ast.AssignStmt) error {
	val, err := in.evalExpr(env, n.Value)
	if err != nil {
		return err
	}
	if n.Op != token.ASSIGN {
		cur, ok := n.Targets[0].(*ast.Ident)
		if !ok {
			return in.binAssign(env, n.Targets[0], n.Op, val)
		}
		old, err := in.evalExpr(env, cur)
		if err != nil {
			return err
		}
		result, err := in.augApply(old, n.Op, val)
		if err != nil {
			return diag.New(diag.TypeError, n.Span(), err.Error())
		}
		return in.assignTo(env, n.Targets[0], result)
	}
	for _, t := range n.Targets {
		if tup, ok := t.(*ast.TupleExpr); ok {
			if err := in.unpackAssign(env, tup.Elts, val, n.Span()); err != nil {
				return err
			}
			continue
		}
		if err := in.assignTo(env, t, val); err != nil {
			return err
		}
	}
	return nil
}

// binAssign handles augmented assignment to attribute/index targets
// (rather than a bare identifier), e.g. `d["k"] += 1`.
func (in *Interp) binAssign(env *value.Env, target ast.Expr, op token.Type, rhs value.Value) error {
	old, err := in.evalExpr(env, target)
	if err != nil {
		return err
	}
	result, err := in.augApply(old, op, rhs)
	if err != nil {
		return diag.New(diag.TypeError, target.Span(), err.Error())
	}
	return in.assignTo(env, target, result)
}

// augApply computes the augmented-assignment result. For List/Dict/Set
// under `+=`/`|=` this mutates the shared backing store in place so
// identity is preserved (§8, "augmented in-place" invariant); every other
// combination computes a fresh value to rebind.
func (in *Interp) augApply(old value.Value, op token.Type, rhs value.Value) (value.Value, error) {
	switch op {
	case token.PLUS_ASSIGN:
		if old.Kind() == value.KindList {
			elts, err := iterate(rhs)
			if err != nil {
				return value.None, err
			}
			old.List().Append(elts...)
			return old, nil
		}
		if (old.Kind() == value.KindSet || old.Kind() == value.KindDict) && rhs.Kind() == old.Kind() {
			return in.augApply(old, token.PIPE_ASSIGN, rhs)
		}
		return value.Add(old, rhs)
	case token.PIPE_ASSIGN:
		if old.Kind() == value.KindSet && rhs.Kind() == value.KindSet {
			for _, e := range rhs.Set().Snapshot() {
				if err := old.Set().Add(e); err != nil {
					return value.None, err
				}
			}
			return old, nil
		}
		if old.Kind() == value.KindDict && rhs.Kind() == value.KindDict {
			for _, k := range rhs.Dict().SortedKeys() {
				v, _, _ := rhs.Dict().Get(k)
				if err := old.Dict().Set(k, v); err != nil {
					return value.None, err
				}
			}
			return old, nil
		}
		return value.BitOr(old, rhs)
	case token.MINUS_ASSIGN:
		return value.Sub(old, rhs)
	case token.STAR_ASSIGN:
		return value.Mul(old, rhs)
	case token.SLASH_ASSIGN:
		return value.Div(old, rhs)
	case token.DSLASH_ASSIGN:
		return value.FloorDiv(old, rhs)
	case token.PERCENT_ASSIGN:
		return value.Mod(old, rhs)
	case token.AMP_ASSIGN:
		return value.BitAnd(old, rhs)
	case token.CARET_ASSIGN:
		return value.BitXor(old, rhs)
	}
	return value.None, diag.New(diag.RuntimeError, token.Span{}, "unknown augmented assignment operator")
}

// assignTo binds val to a single target expression: identifier, attribute,
// index, or a StarTarget used as a bare capture-all (`*rest = xs`).
func (in *Interp) assignTo(env *value.Env, target ast.Expr, val value.Value) error {
	switch t := target.(type) {
	case *ast.Ident:
		env.Assign(t.Name, val)
		return nil

	case *ast.StarTarget:
		elts, err := iterate(val)
		if err != nil {
			return diag.New(diag.TypeError, t.Span(), err.Error())
		}
		return in.assignTo(env, t.Target, value.NewList(elts))

	case *ast.TupleExpr:
		return in.unpackAssign(env, t.Elts, val, t.Span())

	case *ast.AttrExpr:
		recv, err := in.evalExpr(env, t.X)
		if err != nil {
			return err
		}
		if recv.Kind() != value.KindForeign {
			return diag.New(diag.AttributeError, t.Span(), "cannot set attribute on '"+recv.Kind().String()+"' object")
		}
		return diag.New(diag.AttributeError, t.Span(), "'"+recv.Foreign().Name+"' object attribute '"+t.Attr+"' is not writable")

	case *ast.IndexExpr:
		recv, err := in.evalExpr(env, t.X)
		if err != nil {
			return err
		}
		idx, err := in.evalExpr(env, t.Idx)
		if err != nil {
			return err
		}
		return in.setIndex(recv, idx, val, t.Span())

	default:
		return diag.New(diag.SyntaxError, target.Span(), "cannot assign to this expression")
	}
}

func (in *Interp) setIndex(recv, idx, val value.Value, span token.Span) error {
	switch recv.Kind() {
	case value.KindList:
		if idx.Kind() != value.KindInt {
			return diag.New(diag.TypeError, span, "list indices must be integers")
		}
		i := int(idx.AsInt())
		if i < 0 {
			i += recv.List().Len()
		}
		if !recv.List().Set(i, val) {
			return diag.New(diag.IndexError, span, "list assignment index out of range")
		}
		return nil
	case value.KindDict:
		if err := recv.Dict().Set(idx, val); err != nil {
			return diag.New(diag.TypeError, span, err.Error())
		}
		return nil
	}
	return diag.New(diag.TypeError, span, "'"+recv.Kind().String()+"' object does not support item assignment")
}

// unpackAssign implements tuple-unpack assignment: matching arity, or one
// StarTarget among the targets that captures the surplus (§4.4).
func (in *Interp) unpackAssign(env *value.Env, targets []ast.Expr, val value.Value, span token.Span) error {
	elts, err := iterate(val)
	if err != nil {
		return diag.New(diag.TypeError, span, err.Error())
	}
	starIdx := -1
	for i, t := range targets {
		if _, ok := t.(*ast.StarTarget); ok {
			if starIdx != -1 {
				return diag.New(diag.SyntaxError, span, "multiple starred expressions in assignment")
			}
			starIdx = i
		}
	}
	if starIdx == -1 {
		if len(elts) != len(targets) {
			return diag.New(diag.ValueError, span, notEnoughValuesMsg(len(targets), len(elts)))
		}
		for i, t := range targets {
			if err := in.assignTo(env, t, elts[i]); err != nil {
				return err
			}
		}
		return nil
	}
	before := starIdx
	after := len(targets) - starIdx - 1
	if len(elts) < before+after {
		return diag.New(diag.ValueError, span, notEnoughValuesMsg(len(targets)-1, len(elts)))
	}
	for i := 0; i < before; i++ {
		if err := in.assignTo(env, targets[i], elts[i]); err != nil {
			return err
		}
	}
	surplus := append([]value.Value(nil), elts[before:len(elts)-after]...)
	if err := in.assignTo(env, targets[starIdx], value.NewList(surplus)); err != nil {
		return err
	}
	for i := 0; i < after; i++ {
		if err := in.assignTo(env, targets[starIdx+1+i], elts[len(elts)-after+i]); err != nil {
			return err
		}
	}
	return nil
}

func notEnoughValuesMsg(want, got int) string {
	if got < want {
		return "not enough values to unpack (expected " + strconv.Itoa(want) + ", got " + strconv.Itoa(got) + ")"
	}
	return "too many values to unpack (expected " + strconv.Itoa(want) + ")"
}
