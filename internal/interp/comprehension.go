package interp

import (
	"github.com/spellshift/eldritch/internal/ast"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/value"
)

// evalComprehension handles list/set/dict comprehensions. Each iteration
// runs in its own child scope so the loop variable never leaks into the
// enclosing environment.
func (in *Interp) evalComprehension(env *value.Env, n *ast.Comprehension) (value.Value, error) {
	iterVal, err := in.evalExpr(env, n.Iter)
	if err != nil {
		return value.None, err
	}
	elts, err := iterate(iterVal)
	if err != nil {
		return value.None, diag.New(diag.TypeError, n.Iter.Span(), err.Error())
	}

	switch n.Kind {
	case ast.SetComp:
		out := value.NewSetValue()
		err := in.forEachComp(env, n, elts, func(child *value.Env) error {
			v, err := in.evalExpr(child, n.Element)
			if err != nil {
				return err
			}
			return out.Set().Add(v)
		})
		return out, err

	case ast.DictComp:
		out := value.NewDictValue()
		err := in.forEachComp(env, n, elts, func(child *value.Env) error {
			k, err := in.evalExpr(child, n.Element)
			if err != nil {
				return err
			}
			v, err := in.evalExpr(child, n.DictValue)
			if err != nil {
				return err
			}
			return out.Dict().Set(k, v)
		})
		return out, err

	default: // ListComp
		var out []value.Value
		err := in.forEachComp(env, n, elts, func(child *value.Env) error {
			v, err := in.evalExpr(child, n.Element)
			if err != nil {
				return err
			}
			out = append(out, v)
			return nil
		})
		return value.NewList(out), err
	}
}

func (in *Interp) forEachComp(env *value.Env, n *ast.Comprehension, elts []value.Value, body func(*value.Env) error) error {
	for _, e := range elts {
		child := env.NewChild()
		if err := in.assignTo(child, n.Target, e); err != nil {
			return err
		}
		if n.Cond != nil {
			cond, err := in.evalExpr(child, n.Cond)
			if err != nil {
				return err
			}
			if !value.IsTruthy(cond) {
				continue
			}
		}
		if err := body(child); err != nil {
			return err
		}
	}
	return nil
}
