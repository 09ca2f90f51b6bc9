// Package ast defines the statement/expression tree produced by the parser.
// Every node carries a token.Span so diagnostics can point at exact source
// ranges (§3, "Span").
package ast

import "github.com/spellshift/eldritch/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Span() token.Span
}

// Program is the root node: a sequence of top-level statements.
type Program struct {
	Stmts []Stmt
}

func (p *Program) Span() token.Span {
	if len(p.Stmts) == 0 {
		return token.Span{}
	}
	return token.Span{Start: p.Stmts[0].Span().Start, End: p.Stmts[len(p.Stmts)-1].Span().End, Line: p.Stmts[0].Span().Line}
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Base is embedded by every concrete node and carries its source span.
type Base struct{ Sp token.Span }

func (b Base) Span() token.Span { return b.Sp }

// Sp is a convenience constructor for Base from a token.Span.
func Sp(s token.Span) Base { return Base{Sp: s} }

// ---- Statements ----

type ExprStmt struct {
	Base
	X Expr
}

type AssignStmt struct {
	Base
	Targets []Expr     // len > 1 only for chained assigns a = b = expr; normally len == 1
	Op      token.Type // ASSIGN for plain, *_ASSIGN for augmented
	Value   Expr
}

type TupleUnpackStmt struct {
	Base
	Targets []Expr // may contain a *StarTarget for the surplus-capturing element
	Value   Expr
}

type StarTarget struct {
	Base
	Target Expr
}

func (s *StarTarget) exprNode() {}

type FuncDef struct {
	Base
	Name   string
	Params Params
	Body   []Stmt
}

type Params struct {
	Positional []Param // may carry defaults, must trail non-default params
	StarArgs   string  // "" if absent
	KwArgs     string  // "" if absent
}

type Param struct {
	Name    string
	Default Expr // nil if no default
}

type IfStmt struct {
	Base
	Cond Expr
	Then []Stmt
	// Else holds either the final `else` body, or a single *IfStmt
	// representing a chained `elif`.
	Else []Stmt
}

type ForStmt struct {
	Base
	Target Expr // identifier or tuple-unpack target
	Iter   Expr
	Body   []Stmt
}

type WhileStmt struct {
	Base
	Cond Expr
	Body []Stmt
}

type ReturnStmt struct {
	Base
	Value Expr // nil for bare `return`
}

type BreakStmt struct{ Base }
type ContinueStmt struct{ Base }
type PassStmt struct{ Base }

func (*ExprStmt) stmtNode()        {}
func (*AssignStmt) stmtNode()      {}
func (*TupleUnpackStmt) stmtNode() {}
func (*FuncDef) stmtNode()         {}
func (*IfStmt) stmtNode()          {}
func (*ForStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()       {}
func (*ReturnStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()       {}
func (*ContinueStmt) stmtNode()    {}
func (*PassStmt) stmtNode()        {}

// ---- Expressions ----

type Ident struct {
	Base
	Name string
}

type IntLit struct {
	Base
	Value int64
}

type FloatLit struct {
	Base
	Value float64
}

type StringLit struct {
	Base
	Value string
}

type BytesLit struct {
	Base
	Value []byte
}

type BoolLit struct {
	Base
	Value bool
}

type NoneLit struct{ Base }

// FStringExpr holds the alternating literal/expression parts of an
// f-string; expressions are evaluated in the enclosing scope at runtime.
type FStringExpr struct {
	Base
	Parts []FStringPart
}

type FStringPart struct {
	Literal string
	Expr    Expr // nil when this part is a literal chunk
}

type TupleExpr struct {
	Base
	Elts []Expr
}

type ListExpr struct {
	Base
	Elts []Expr
}

type SetExpr struct {
	Base
	Elts []Expr
}

type DictExpr struct {
	Base
	Keys   []Expr
	Values []Expr
}

// Comprehension covers list/set/dict comprehensions; DictValue is set only
// for dict comprehensions.
type Comprehension struct {
	Base
	Kind      ComprehensionKind
	Element   Expr
	DictValue Expr
	Target    Expr
	Iter      Expr
	Cond      Expr // nil if no `if` clause
}

type ComprehensionKind int

const (
	ListComp ComprehensionKind = iota
	SetComp
	DictComp
)

type LambdaExpr struct {
	Base
	Params Params
	Body   Expr
}

type UnaryExpr struct {
	Base
	Op token.Type
	X  Expr
}

type BinaryExpr struct {
	Base
	Op   token.Type
	X, Y Expr
}

// BoolOp is `and`/`or`, kept distinct from BinaryExpr for short-circuit
// evaluation.
type BoolOp struct {
	Base
	Op   token.Type // AND or OR
	X, Y Expr
}

// CompareExpr models a chained comparison `a < b < c`, desugared at
// evaluation time to a conjunction per §4.2.
type CompareExpr struct {
	Base
	First Expr
	Ops   []token.Type
	Rest  []Expr
}

type CallArg struct {
	Name  string // "" for positional
	Value Expr
	Star  bool // *args unpack
	DStar bool // **kwargs unpack
}

type CallExpr struct {
	Base
	Func Expr
	Args []CallArg
}

type AttrExpr struct {
	Base
	X    Expr
	Attr string
}

type IndexExpr struct {
	Base
	X   Expr
	Idx Expr
}

// SliceExpr represents seq[start:stop:step]; any of the three may be nil.
type SliceExpr struct {
	Base
	X                 Expr
	Start, Stop, Step Expr
}

func (*Ident) exprNode()         {}
func (*IntLit) exprNode()        {}
func (*FloatLit) exprNode()      {}
func (*StringLit) exprNode()     {}
func (*BytesLit) exprNode()      {}
func (*BoolLit) exprNode()       {}
func (*NoneLit) exprNode()       {}
func (*FStringExpr) exprNode()   {}
func (*TupleExpr) exprNode()     {}
func (*ListExpr) exprNode()      {}
func (*SetExpr) exprNode()       {}
func (*DictExpr) exprNode()      {}
func (*Comprehension) exprNode() {}
func (*LambdaExpr) exprNode()    {}
func (*UnaryExpr) exprNode()     {}
func (*BinaryExpr) exprNode()    {}
func (*BoolOp) exprNode()        {}
func (*CompareExpr) exprNode()   {}
func (*CallExpr) exprNode()      {}
func (*AttrExpr) exprNode()      {}
func (*IndexExpr) exprNode()     {}
func (*SliceExpr) exprNode()     {}

// NewIdent, NewIntLit, NewStringLit: small constructors mirroring the
// teacher's pkgs/ast/builder.go convenience constructors, for building
// trees by hand.
func NewIdent(sp token.Span, name string) *Ident     { return &Ident{Base{sp}, name} }
func NewIntLit(sp token.Span, v int64) *IntLit        { return &IntLit{Base{sp}, v} }
func NewStringLit(sp token.Span, v string) *StringLit { return &StringLit{Base{sp}, v} }
