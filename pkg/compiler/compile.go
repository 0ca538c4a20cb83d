package compiler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sandrolain/gosheet/pkg/functions"
	"github.com/sandrolain/gosheet/pkg/messages"
	"github.com/sandrolain/gosheet/pkg/types"
)

// operators maps binary operator symbols to runtime function names.
var operators = map[string]string{
	"=":  "EQ",
	"+":  "ADD",
	"-":  "MINUS",
	"*":  "MULTIPLY",
	"/":  "DIVIDE",
	">=": "GTE",
	"<>": "NE",
	">":  "GT",
	"<=": "LTE",
	"<":  "LT",
	"^":  "POWER",
	"&":  "CONCATENATE",
}

// unaryOperators maps unary operator symbols to runtime function names.
var unaryOperators = map[string]string{
	"-": "UMINUS",
	"+": "UPLUS",
	"%": "UNARY.PERCENT",
}

// argContext is what the enclosing call tells the compilation of one of its
// arguments.
type argContext struct {
	isMeta       bool
	hasRange     bool
	functionName string
	paramIndex   int
}

// astCompiler lowers an AST into a plan. One astCompiler serves a single
// compilation.
type astCompiler struct {
	scope    Scope
	registry *functions.Registry
	consts   *types.ConstantValues
	logger   *slog.Logger
}

// compilePlan validates root and compiles it into a plan for key.
func (c *astCompiler) compilePlan(key string, root types.Node) (*Plan, error) {
	if types.IsRangeExpression(root) || root.Kind() == types.NodeUnknown {
		return nil, messages.New(types.ErrBadExpression, messages.InvalidFormula, nil)
	}
	body, err := c.compile(root, argContext{})
	if err != nil {
		return nil, err
	}
	return &Plan{key: key, body: body, temps: c.scope.Len(), logger: c.logger}, nil
}

func (c *astCompiler) compile(node types.Node, ac argContext) (fragment, error) {
	if ac.isMeta && node.Kind() != types.NodeReference && !types.IsRangeExpression(node) {
		return fragment{}, messages.New(types.ErrMetaArgument, messages.MetaArgument, nil)
	}
	f, err := c.lower(node, ac)
	if err != nil {
		return fragment{}, err
	}
	if node.Debug() {
		f = f.prepend(c.breakpoint(node))
	}
	return f, nil
}

func (c *astCompiler) lower(node types.Node, ac argContext) (fragment, error) {
	switch n := node.(type) {
	case *types.Boolean:
		v := n.Value
		return returning(n.String(), func(*env) (any, error) { return v, nil }), nil

	case *types.Number:
		i := c.consts.NumberIndex(n.Value)
		if i < 0 {
			return fragment{}, fmt.Errorf("number %v is missing from the constant pool", n.Value)
		}
		return returning(fmt.Sprintf("numbers[%d]", i), func(e *env) (any, error) {
			return e.consts.Numbers[i], nil
		}), nil

	case *types.String:
		i := c.consts.StringIndex(n.Value)
		if i < 0 {
			return fragment{}, fmt.Errorf("string %q is missing from the constant pool", n.Value)
		}
		return returning(fmt.Sprintf("strings[%d]", i), func(e *env) (any, error) {
			return e.consts.Strings[i], nil
		}), nil

	case *types.Reference:
		return c.lowerReference(n, ac), nil

	case *types.Funcall:
		args, err := c.compileFunctionArgs(n)
		if err != nil {
			return fragment{}, err
		}
		return c.call(strings.ToUpper(n.Name), args), nil

	case *types.UnaryOperation:
		name, ok := unaryOperators[n.Op]
		if !ok {
			return fragment{}, messages.New(types.ErrInvalidOperator, messages.InvalidOperator, map[string]any{"Operator": n.Op})
		}
		operand, err := c.compile(n.Operand, argContext{functionName: name})
		if err != nil {
			return fragment{}, err
		}
		return c.call(name, []fragment{operand}), nil

	case *types.BinaryOperation:
		name, ok := operators[n.Op]
		if !ok {
			return fragment{}, messages.New(types.ErrInvalidOperator, messages.InvalidOperator, map[string]any{"Operator": n.Op})
		}
		left, err := c.compile(n.Left, argContext{functionName: name})
		if err != nil {
			return fragment{}, err
		}
		right, err := c.compile(n.Right, argContext{functionName: name})
		if err != nil {
			return fragment{}, err
		}
		return c.call(name, []fragment{left, right}), nil

	case *types.Unknown:
		return returning("undefined", func(*env) (any, error) { return nil, nil }), nil

	default:
		return fragment{}, fmt.Errorf("unsupported node kind %s", node.Kind())
	}
}

// lowerReference reads the dependency at the reference's own position. A
// reference in a range-accepting position is always read as a range, so a
// callee can tell a cell used as a value from a 1x1 range.
func (c *astCompiler) lowerReference(n *types.Reference, ac argContext) fragment {
	i := n.Index
	if ac.hasRange {
		return returning(fmt.Sprintf("range(deps[%d])", i), func(e *env) (any, error) {
			dep, err := e.dep(i)
			if err != nil {
				return nil, err
			}
			return e.rng(dep)
		})
	}
	fnName := ac.functionName
	if fnName == "" {
		fnName = operators["="]
	}
	isMeta, paramIndex := ac.isMeta, ac.paramIndex
	text := fmt.Sprintf("ref(deps[%d], %t, %s, %d)", i, isMeta, strconv.Quote(fnName), paramIndex)
	return returning(text, func(e *env) (any, error) {
		dep, err := e.dep(i)
		if err != nil {
			return nil, err
		}
		return e.ref(dep, isMeta, fnName, paramIndex)
	})
}

func (e *env) dep(i int) (any, error) {
	if i < 0 || i >= len(e.deps) {
		return nil, &functions.EvalError{
			Value:   functions.ErrorRef,
			Message: fmt.Sprintf("Dependency %d is not bound (%d bindings).", i, len(e.deps)),
		}
	}
	return e.deps[i], nil
}

// call materializes every argument into a temporary, records name as the
// last function called, then invokes it with the temporaries in order.
func (c *astCompiler) call(name string, args []fragment) fragment {
	var stmts []stmt
	rets := make([]expr, len(args))
	texts := make([]string, len(args))
	for i, arg := range args {
		assigned := arg.assignTo(&c.scope)
		stmts = append(stmts, assigned.stmts...)
		rets[i] = assigned.ret
		texts[i] = assigned.ret.text
	}
	stmts = append(stmts, stmt{
		text: fmt.Sprintf("ctx.lastFnCalled = %s;", strconv.Quote(name)),
		exec: func(e *env) error {
			e.ctx.LastFnCalled = name
			return nil
		},
	})
	text := fmt.Sprintf("ctx[%s](%s)", strconv.Quote(name), strings.Join(texts, ", "))
	return fragment{
		stmts: stmts,
		ret: expr{
			text: text,
			eval: func(e *env) (any, error) {
				values := make([]any, len(rets))
				for i, r := range rets {
					v, err := r.eval(e)
					if err != nil {
						return nil, err
					}
					values[i] = v
				}
				return e.ctx.Call(name, values...)
			},
		},
	}
}

func (c *astCompiler) breakpoint(node types.Node) stmt {
	rendered := node.String()
	logger := c.logger
	return stmt{
		text: "debugger;",
		exec: func(e *env) error {
			logger.Debug("formula breakpoint", "node", rendered)
			if e.ctx.Breakpoint != nil {
				e.ctx.Breakpoint(rendered)
			}
			return nil
		},
	}
}
