package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sandrolain/gosheet/pkg/functions"
	"github.com/sandrolain/gosheet/pkg/types"
)

// RefFunc reads a dependency as a scalar. isMeta is true when the calling
// function wants the reference itself (its coordinates) rather than its
// value. fnName and paramIndex identify the call site and are meant for
// error messages; paramIndex is 1-based and 0 for operator operands.
type RefFunc func(dep any, isMeta bool, fnName string, paramIndex int) (any, error)

// RangeFunc reads a dependency as a range, even when it is a single cell.
type RangeFunc func(dep any) (any, error)

// env is the state of one plan invocation.
type env struct {
	consts *types.ConstantValues
	deps   []any
	ref    RefFunc
	rng    RangeFunc
	ctx    *functions.Context
	temps  []any
}

// expr is an expression of the plan: how to render it and how to evaluate it.
type expr struct {
	text string
	eval func(e *env) (any, error)
}

// stmt is a statement of the plan.
type stmt struct {
	text string
	exec func(e *env) error
}

// fragment is the compiled form of one AST node: statements to run, then an
// expression yielding the node's value.
type fragment struct {
	stmts []stmt
	ret   expr
}

func returning(text string, eval func(e *env) (any, error)) fragment {
	return fragment{ret: expr{text: text, eval: eval}}
}

// prepend returns f with s run before its own statements.
func (f fragment) prepend(s ...stmt) fragment {
	stmts := make([]stmt, 0, len(s)+len(f.stmts))
	stmts = append(stmts, s...)
	stmts = append(stmts, f.stmts...)
	return fragment{stmts: stmts, ret: f.ret}
}

// assignTo stores the value of f in a fresh temporary and returns a fragment
// whose expression reads that temporary. The value is computed once however
// many times the returned expression is read.
func (f fragment) assignTo(scope *Scope) fragment {
	slot, name := scope.nextVariable()
	ret := f.ret
	assign := stmt{
		text: fmt.Sprintf("let %s = %s;", name, ret.text),
		exec: func(e *env) error {
			v, err := ret.eval(e)
			if err != nil {
				return err
			}
			e.temps[slot] = v
			return nil
		},
	}
	stmts := make([]stmt, 0, len(f.stmts)+1)
	stmts = append(stmts, f.stmts...)
	stmts = append(stmts, assign)
	return fragment{
		stmts: stmts,
		ret: expr{
			text: name,
			eval: func(e *env) (any, error) { return e.temps[slot], nil },
		},
	}
}

// wrapInClosure turns f into a fragment yielding a types.Lazy that runs f
// when forced. Nothing of f runs until then.
func (f fragment) wrapInClosure() fragment {
	stmts, ret := f.stmts, f.ret
	var sb strings.Builder
	sb.WriteString("() => {")
	for _, s := range stmts {
		sb.WriteString(" ")
		sb.WriteString(s.text)
	}
	sb.WriteString(" return ")
	sb.WriteString(ret.text)
	sb.WriteString("; }")
	return returning(sb.String(), func(e *env) (any, error) {
		return types.Lazy(func() (any, error) {
			if err := run(stmts, e); err != nil {
				return nil, err
			}
			return ret.eval(e)
		}), nil
	})
}

func run(stmts []stmt, e *env) error {
	for _, s := range stmts {
		if err := s.exec(e); err != nil {
			return err
		}
	}
	return nil
}

// Scope hands out the temporaries of one compilation. Each temporary is
// assigned exactly once.
type Scope struct {
	count int
}

// nextVariable returns the slot of a new temporary and its name (_1, _2...).
func (s *Scope) nextVariable() (int, string) {
	slot := s.count
	s.count++
	return slot, fmt.Sprintf("_%d", s.count)
}

// Len returns the number of temporaries handed out.
func (s *Scope) Len() int {
	return s.count
}

// Plan is the executable form of one formula structure. It holds no data
// between invocations and is shared by every formula with the same cache
// key; the literals and dependencies of a particular formula are supplied
// on each call.
type Plan struct {
	key    string
	body   fragment
	temps  int
	logger *slog.Logger
}

// Key returns the structural cache key the plan was compiled for.
func (p *Plan) Key() string {
	return p.key
}

// Execute runs the plan. deps are the live dependency bindings, aligned
// with the dependency list of the compiled formula; consts is its constant
// pool. Errors returned by runtime functions or by the dereference
// callbacks are returned unchanged, and ctx.LastFnCalled names the function
// that was about to run.
func (p *Plan) Execute(consts *types.ConstantValues, deps []any, ref RefFunc, rng RangeFunc, ctx *functions.Context) (any, error) {
	if ctx == nil {
		ctx = functions.NewContext(nil)
	}
	e := &env{
		consts: consts,
		deps:   deps,
		ref:    ref,
		rng:    rng,
		ctx:    ctx,
		temps:  make([]any, p.temps),
	}
	if err := run(p.body.stmts, e); err != nil {
		return nil, err
	}
	return p.body.ret.eval(e)
}

// String renders the plan as pseudo-code, headed by its cache key.
func (p *Plan) String() string {
	var sb strings.Builder
	sb.WriteString("// ")
	sb.WriteString(p.key)
	sb.WriteString("\n")
	for _, s := range p.body.stmts {
		sb.WriteString(s.text)
		sb.WriteString("\n")
	}
	sb.WriteString("return ")
	sb.WriteString(p.body.ret.text)
	sb.WriteString(";")
	return sb.String()
}
