package interp

import (
	"github.com/spellshift/eldritch/internal/ast"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

func (in *Interp) evalExpr(env *value.Env, e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return value.Int(n.Value), nil
	case *ast.FloatLit:
		return value.Float(n.Value), nil
	case *ast.StringLit:
		return value.String(n.Value), nil
	case *ast.BytesLit:
		return value.Bytes(n.Value), nil
	case *ast.BoolLit:
		return value.Bool(n.Value), nil
	case *ast.NoneLit:
		return value.None, nil

	case *ast.Ident:
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		return value.None, diag.New(diag.NameError, n.Span(), diag.NameErrorMessage(n.Name, env.Names()))

	case *ast.FStringExpr:
		return in.evalFString(env, n)

	case *ast.TupleExpr:
		elts, err := in.evalExprs(env, n.Elts)
		if err != nil {
			return value.None, err
		}
		return value.NewTuple(elts), nil

	case *ast.ListExpr:
		elts, err := in.evalExprs(env, n.Elts)
		if err != nil {
			return value.None, err
		}
		return value.NewList(elts), nil

	case *ast.SetExpr:
		out := value.NewSetValue()
		for _, el := range n.Elts {
			v, err := in.evalExpr(env, el)
			if err != nil {
				return value.None, err
			}
			if err := out.Set().Add(v); err != nil {
				return value.None, diag.New(diag.TypeError, el.Span(), err.Error())
			}
		}
		return out, nil

	case *ast.DictExpr:
		out := value.NewDictValue()
		for i, k := range n.Keys {
			kv, err := in.evalExpr(env, k)
			if err != nil {
				return value.None, err
			}
			vv, err := in.evalExpr(env, n.Values[i])
			if err != nil {
				return value.None, err
			}
			if err := out.Dict().Set(kv, vv); err != nil {
				return value.None, diag.New(diag.TypeError, k.Span(), err.Error())
			}
		}
		return out, nil

	case *ast.Comprehension:
		return in.evalComprehension(env, n)

	case *ast.LambdaExpr:
		return value.NewFunction(&value.Function{Name: "<lambda>", Params: n.Params, Body: []ast.Stmt{&ast.ReturnStmt{Base: ast.Sp(n.Span()), Value: n.Body}}, Env: env}), nil

	case *ast.UnaryExpr:
		return in.evalUnary(env, n)

	case *ast.BinaryExpr:
		return in.evalBinary(env, n)

	case *ast.BoolOp:
		return in.evalBoolOp(env, n)

	case *ast.CompareExpr:
		return in.evalCompare(env, n)

	case *ast.CallExpr:
		return in.evalCall(env, n)

	case *ast.AttrExpr:
		recv, err := in.evalExpr(env, n.X)
		if err != nil {
			return value.None, err
		}
		return in.getAttr(recv, n.Attr, n.Span())

	case *ast.IndexExpr:
		recv, err := in.evalExpr(env, n.X)
		if err != nil {
			return value.None, err
		}
		idx, err := in.evalExpr(env, n.Idx)
		if err != nil {
			return value.None, err
		}
		return in.getIndex(recv, idx, n.Span())

	case *ast.SliceExpr:
		return in.evalSlice(env, n)
	}
	return value.None, diag.New(diag.RuntimeError, e.Span(), "unhandled expression")
}

func (in *Interp) evalExprs(env *value.Env, exprs []ast.Expr) ([]value.Value, error) {
	out := make([]value.Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := in.evalExpr(env, e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (in *Interp) evalFString(env *value.Env, n *ast.FStringExpr) (value.Value, error) {
	var b []byte
	for _, p := range n.Parts {
		if p.Expr == nil {
			b = append(b, p.Literal...)
			continue
		}
		v, err := in.evalExpr(env, p.Expr)
		if err != nil {
			return value.None, err
		}
		b = append(b, value.Display(v)...)
	}
	return value.String(string(b)), nil
}

func (in *Interp) evalUnary(env *value.Env, n *ast.UnaryExpr) (value.Value, error) {
	x, err := in.evalExpr(env, n.X)
	if err != nil {
		return value.None, err
	}
	switch n.Op {
	case token.MINUS:
		switch x.Kind() {
		case value.KindInt:
			return value.Int(-x.AsInt()), nil
		case value.KindFloat:
			return value.Float(-x.AsFloat()), nil
		}
		return value.None, diag.New(diag.TypeError, n.Span(), "bad operand type for unary -: '"+x.Kind().String()+"'")
	case token.PLUS:
		return x, nil
	case token.TILDE:
		v, err := value.BitNot(x)
		if err != nil {
			return value.None, diag.New(diag.TypeError, n.Span(), err.Error())
		}
		return v, nil
	case token.NOT:
		return value.Bool(!value.IsTruthy(x)), nil
	}
	return value.None, diag.New(diag.RuntimeError, n.Span(), "unknown unary operator")
}

func (in *Interp) evalBinary(env *value.Env, n *ast.BinaryExpr) (value.Value, error) {
	x, err := in.evalExpr(env, n.X)
	if err != nil {
		return value.None, err
	}
	y, err := in.evalExpr(env, n.Y)
	if err != nil {
		return value.None, err
	}
	var v value.Value
	switch n.Op {
	case token.PLUS:
		v, err = value.Add(x, y)
	case token.MINUS:
		v, err = value.Sub(x, y)
	case token.STAR:
		v, err = value.Mul(x, y)
	case token.SLASH:
		v, err = value.Div(x, y)
	case token.DSLASH:
		v, err = value.FloorDiv(x, y)
	case token.PERCENT:
		if x.Kind() == value.KindString {
			s, e := value.PercentFormat(x.AsString(), y)
			return value.String(s), wrapType(n.Span(), e)
		}
		v, err = value.Mod(x, y)
	case token.DSTAR:
		v, err = value.Pow(x, y)
	case token.AMP:
		v, err = value.BitAnd(x, y)
	case token.PIPE:
		v, err = value.BitOr(x, y)
	case token.CARET:
		v, err = value.BitXor(x, y)
	case token.LSHIFT:
		v, err = value.Lshift(x, y)
	case token.RSHIFT:
		v, err = value.Rshift(x, y)
	default:
		return value.None, diag.New(diag.RuntimeError, n.Span(), "unknown binary operator")
	}
	return v, wrapType(n.Span(), err)
}

func wrapType(span token.Span, err error) error {
	if err == nil {
		return nil
	}
	return diag.New(diag.TypeError, span, err.Error())
}

func (in *Interp) evalBoolOp(env *value.Env, n *ast.BoolOp) (value.Value, error) {
	x, err := in.evalExpr(env, n.X)
	if err != nil {
		return value.None, err
	}
	if n.Op == token.AND {
		if !value.IsTruthy(x) {
			return x, nil
		}
		return in.evalExpr(env, n.Y)
	}
	if value.IsTruthy(x) {
		return x, nil
	}
	return in.evalExpr(env, n.Y)
}

// evalCompare desugars a chained comparison `a < b < c` into a conjunction,
// short-circuiting on the first false step (§4.4).
func (in *Interp) evalCompare(env *value.Env, n *ast.CompareExpr) (value.Value, error) {
	left, err := in.evalExpr(env, n.First)
	if err != nil {
		return value.None, err
	}
	for i, op := range n.Ops {
		right, err := in.evalExpr(env, n.Rest[i])
		if err != nil {
			return value.None, err
		}
		result, err := value.Compare(op.String(), left, right)
		if err != nil {
			return value.None, diag.New(diag.TypeError, n.Span(), err.Error())
		}
		if !value.IsTruthy(result) {
			return value.Bool(false), nil
		}
		left = right
	}
	return value.Bool(true), nil
}

func (in *Interp) evalSlice(env *value.Env, n *ast.SliceExpr) (value.Value, error) {
	recv, err := in.evalExpr(env, n.X)
	if err != nil {
		return value.None, err
	}
	start, err := in.optInt(env, n.Start)
	if err != nil {
		return value.None, err
	}
	stop, err := in.optInt(env, n.Stop)
	if err != nil {
		return value.None, err
	}
	step, err := in.optInt(env, n.Step)
	if err != nil {
		return value.None, err
	}
	switch recv.Kind() {
	case value.KindString:
		return value.String(value.SliceString(recv.AsString(), start, stop, step)), nil
	case value.KindBytes:
		return value.Bytes(value.SliceBytes(recv.AsBytes(), start, stop, step)), nil
	case value.KindList:
		return value.NewList(value.SliceValues(recv.List().Snapshot(), start, stop, step)), nil
	case value.KindTuple:
		return value.NewTuple(value.SliceValues(recv.Tuple(), start, stop, step)), nil
	}
	return value.None, diag.New(diag.TypeError, n.Span(), "'"+recv.Kind().String()+"' object is not subscriptable")
}

func (in *Interp) optInt(env *value.Env, e ast.Expr) (*int64, error) {
	if e == nil {
		return nil, nil
	}
	v, err := in.evalExpr(env, e)
	if err != nil {
		return nil, err
	}
	if v.Kind() != value.KindInt {
		return nil, diag.New(diag.TypeError, e.Span(), "slice indices must be integers")
	}
	i := v.AsInt()
	return &i, nil
}

func (in *Interp) getIndex(recv, idx value.Value, span token.Span) (value.Value, error) {
	switch recv.Kind() {
	case value.KindList:
		if idx.Kind() != value.KindInt {
			return value.None, diag.New(diag.TypeError, span, "list indices must be integers")
		}
		i := int(idx.AsInt())
		if i < 0 {
			i += recv.List().Len()
		}
		v, ok := recv.List().Get(i)
		if !ok {
			return value.None, diag.New(diag.IndexError, span, "list index out of range")
		}
		return v, nil
	case value.KindTuple:
		if idx.Kind() != value.KindInt {
			return value.None, diag.New(diag.TypeError, span, "tuple indices must be integers")
		}
		i := int(idx.AsInt())
		if i < 0 {
			i += len(recv.Tuple())
		}
		if i < 0 || i >= len(recv.Tuple()) {
			return value.None, diag.New(diag.IndexError, span, "tuple index out of range")
		}
		return recv.Tuple()[i], nil
	case value.KindString:
		runes := []rune(recv.AsString())
		if idx.Kind() != value.KindInt {
			return value.None, diag.New(diag.TypeError, span, "string indices must be integers")
		}
		i := int(idx.AsInt())
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return value.None, diag.New(diag.IndexError, span, "string index out of range")
		}
		return value.String(string(runes[i])), nil
	case value.KindBytes:
		b := recv.AsBytes()
		if idx.Kind() != value.KindInt {
			return value.None, diag.New(diag.TypeError, span, "bytes indices must be integers")
		}
		i := int(idx.AsInt())
		if i < 0 {
			i += len(b)
		}
		if i < 0 || i >= len(b) {
			return value.None, diag.New(diag.IndexError, span, "index out of range")
		}
		return value.Int(int64(b[i])), nil
	case value.KindDict:
		v, ok, err := recv.Dict().Get(idx)
		if err != nil {
			return value.None, diag.New(diag.TypeError, span, err.Error())
		}
		if !ok {
			return value.None, diag.New(diag.KeyError, span, "'"+value.Repr(idx)+"'")
		}
		return v, nil
	}
	return value.None, diag.New(diag.TypeError, span, "'"+recv.Kind().String()+"' object is not subscriptable")
}

// getAttr resolves `recv.attr`: for Foreign receivers this is either a
// published constant or a BoundMethod (§4.6); no other Value kind carries
// user attributes.
func (in *Interp) getAttr(recv value.Value, attr string, span token.Span) (value.Value, error) {
	if recv.Kind() == value.KindForeign {
		fgn := recv.Foreign()
		if c, ok := fgn.Impl.Members()[attr]; ok {
			return c, nil
		}
		return value.NewBoundMethod(&value.BoundMethod{Receiver: fgn, Method: attr}), nil
	}
	if m, ok := typeMethod(recv, attr, span); ok {
		return m, nil
	}
	return value.None, diag.New(diag.AttributeError, span, "'"+recv.Kind().String()+"' object has no attribute '"+attr+"'")
}
