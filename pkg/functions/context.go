package functions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrolain/gosheet/pkg/types"
)

// Context is the runtime context of one plan invocation: the functions a
// plan may call by uppercase name and the name of the function most
// recently called, which lets the caller attribute a runtime error to its
// call site.
//
// A Context is not safe for concurrent use; give each evaluating goroutine
// its own.
type Context struct {
	registry *Registry

	// LastFnCalled is updated by executing plans just before each call.
	LastFnCalled string

	// Breakpoint, when set, is called by plans compiled from formulas that
	// carry a debugger marker. node is the rendering of the marked node.
	Breakpoint func(node string)
}

// NewContext creates a runtime context backed by reg. A nil reg means the
// builtin registry.
func NewContext(reg *Registry) *Context {
	if reg == nil {
		reg = Default()
	}
	return &Context{registry: reg}
}

// Call invokes the function registered under name.
func (c *Context) Call(name string, args ...any) (any, error) {
	def, ok := c.registry.Get(name)
	if !ok {
		return nil, &EvalError{Value: ErrorName, Message: fmt.Sprintf("Unknown function: %q", name)}
	}
	return def.Compute(c, args...)
}

// Spreadsheet error values.
const (
	ErrorGeneric = "#ERROR"
	ErrorDivZero = "#DIV/0!"
	ErrorValue   = "#VALUE!"
	ErrorRef     = "#REF!"
	ErrorName    = "#NAME?"
	ErrorNA      = "#N/A"
)

// EvalError is a runtime error raised by a function.
type EvalError struct {
	Value   string
	Message string
}

func (e *EvalError) Error() string {
	if e.Message == "" {
		return e.Value
	}
	return e.Value + ": " + e.Message
}

func valueError(format string, a ...any) error {
	return &EvalError{Value: ErrorValue, Message: fmt.Sprintf(format, a...)}
}

// ToNumber coerces a scalar argument to a number. Lazy arguments are forced.
func ToNumber(v any) (float64, error) {
	v, err := types.Force(v)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, valueError("The value %q cannot be interpreted as a number.", x)
		}
		return f, nil
	case types.Range:
		if x.Rows() == 1 && x.Cols() == 1 {
			return ToNumber(x[0][0])
		}
	}
	return 0, valueError("Expected a number but got %T.", v)
}

// ToString coerces a scalar argument to a string.
func ToString(v any) (string, error) {
	v, err := types.Force(v)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case bool:
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	case types.Range:
		if x.Rows() == 1 && x.Cols() == 1 {
			return ToString(x[0][0])
		}
	}
	return "", valueError("Expected a string but got %T.", v)
}

// ToBoolean coerces a scalar argument to a boolean.
func ToBoolean(v any) (bool, error) {
	v, err := types.Force(v)
	if err != nil {
		return false, err
	}
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string:
		switch strings.ToUpper(strings.TrimSpace(x)) {
		case "TRUE":
			return true, nil
		case "FALSE", "":
			return false, nil
		}
		return false, valueError("The value %q cannot be interpreted as a boolean.", x)
	case types.Range:
		if x.Rows() == 1 && x.Cols() == 1 {
			return ToBoolean(x[0][0])
		}
	}
	return false, valueError("Expected a boolean but got %T.", v)
}

// Position is what a dereference callback is expected to return for meta
// arguments: the zero-based coordinates of the referenced zone.
type Position struct {
	Sheet  string
	Left   int
	Top    int
	Right  int
	Bottom int
}
