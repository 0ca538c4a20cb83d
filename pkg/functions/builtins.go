package functions

import (
	"errors"
	"math"
	"strings"

	"github.com/sandrolain/gosheet/pkg/types"
)

// builtins returns the builtin function table: one function per operator
// plus a core set of spreadsheet functions.
func builtins() []Definition {
	return []Definition{
		// Binary operators
		{Name: "EQ", Args: Args("value1 (any)", "value2 (any)"), Compute: comparison(func(c int) bool { return c == 0 })},
		{Name: "NE", Args: Args("value1 (any)", "value2 (any)"), Compute: comparison(func(c int) bool { return c != 0 })},
		{Name: "GT", Args: Args("value1 (any)", "value2 (any)"), Compute: comparison(func(c int) bool { return c > 0 })},
		{Name: "GTE", Args: Args("value1 (any)", "value2 (any)"), Compute: comparison(func(c int) bool { return c >= 0 })},
		{Name: "LT", Args: Args("value1 (any)", "value2 (any)"), Compute: comparison(func(c int) bool { return c < 0 })},
		{Name: "LTE", Args: Args("value1 (any)", "value2 (any)"), Compute: comparison(func(c int) bool { return c <= 0 })},
		{Name: "ADD", Args: Args("value1 (number)", "value2 (number)"), Compute: arithmetic(func(a, b float64) (float64, error) { return a + b, nil })},
		{Name: "MINUS", Args: Args("value1 (number)", "value2 (number)"), Compute: arithmetic(func(a, b float64) (float64, error) { return a - b, nil })},
		{Name: "MULTIPLY", Args: Args("factor1 (number)", "factor2 (number)"), Compute: arithmetic(func(a, b float64) (float64, error) { return a * b, nil })},
		{Name: "DIVIDE", Args: Args("dividend (number)", "divisor (number)"), Compute: arithmetic(divide)},
		{Name: "POWER", Args: Args("base (number)", "exponent (number)"), Compute: arithmetic(power)},
		{Name: "CONCATENATE", Args: Args("string1 (string, range<string>)", "string2 (string, range<string>, repeating)"), Compute: fnConcat},

		// Unary operators
		{Name: "UMINUS", Args: Args("value (number)"), Compute: fnUMinus},
		{Name: "UPLUS", Args: Args("value (any)"), Compute: fnUPlus},
		{Name: "UNARY.PERCENT", Args: Args("percentage (number)"), Compute: fnPercent},

		// Math
		{Name: "SUM", Description: "Sum of a series of numbers and/or cells.", Args: Args("value1 (number, range<number>)", "value2 (number, range<number>, repeating)"), Compute: fnSum},

		// Logical
		{Name: "IF", Description: "Returns value depending on logical expression.", Args: Args("logical_expression (boolean)", "value_if_true (any, lazy)", "value_if_false (any, lazy, default=FALSE)"), Compute: fnIf},
		{Name: "IFS", Description: "Returns the value of the first true condition.", Args: Args("condition1 (boolean, lazy)", "value1 (any, lazy)", "condition2 (boolean, lazy, repeating)", "value2 (any, lazy, repeating)"), Compute: fnIfs},
		{Name: "IFERROR", Description: "Value if it is not an error, otherwise 2nd argument.", Args: Args("value (any, lazy)", "value_if_error (any, lazy, default=\"\")"), Compute: fnIfError},
		{Name: "ISERROR", Description: "Whether a value is an error.", Args: Args("value (any, lazy)"), Compute: fnIsError},
		{Name: "AND", Description: "Logical `and` operator.", Args: Args("logical_expression1 (boolean, range<boolean>)", "logical_expression2 (boolean, range<boolean>, repeating)"), Compute: logical(true)},
		{Name: "OR", Description: "Logical `or` operator.", Args: Args("logical_expression1 (boolean, range<boolean>)", "logical_expression2 (boolean, range<boolean>, repeating)"), Compute: logical(false)},
		{Name: "NOT", Description: "Returns opposite of provided logical value.", Args: Args("logical_expression (boolean)"), Compute: fnNot},

		// Lookup
		{Name: "CHOOSE", Description: "An element from a list of choices based on index.", Args: Args("index (number)", "choice1 (any, lazy)", "choice2 (any, lazy, repeating)"), Compute: fnChoose},
		{Name: "COLUMN", Description: "Column number of a specified cell.", Args: Args("cell_reference (meta)"), Compute: position(func(p Position) int { return p.Left })},
		{Name: "ROW", Description: "Row number of a specified cell.", Args: Args("cell_reference (meta)"), Compute: position(func(p Position) int { return p.Top })},
		{Name: "COLUMNS", Description: "Number of columns in a specified array or range.", Args: Args("range (range)"), Compute: dimension(types.Range.Cols)},
		{Name: "ROWS", Description: "Number of rows in a specified array or range.", Args: Args("range (range)"), Compute: dimension(types.Range.Rows)},
	}
}

func comparison(test func(int) bool) Impl {
	return func(_ *Context, args ...any) (any, error) {
		c, err := compare(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return test(c), nil
	}
}

// typeRank orders values of different types: numbers < strings < booleans.
func typeRank(v any) int {
	switch v.(type) {
	case string:
		return 1
	case bool:
		return 2
	}
	return 0
}

func compare(a, b any) (int, error) {
	a, err := scalar(a)
	if err != nil {
		return 0, err
	}
	b, err = scalar(b)
	if err != nil {
		return 0, err
	}
	// An empty cell compares like the zero value of the other side.
	if a == nil {
		a = zeroLike(b)
	}
	if b == nil {
		b = zeroLike(a)
	}
	if ra, rb := typeRank(a), typeRank(b); ra != rb {
		return ra - rb, nil
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(strings.ToUpper(x), strings.ToUpper(b.(string))), nil
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0, nil
		case y:
			return -1, nil
		}
		return 1, nil
	}
	na, err := ToNumber(a)
	if err != nil {
		return 0, err
	}
	nb, err := ToNumber(b)
	if err != nil {
		return 0, err
	}
	switch {
	case na < nb:
		return -1, nil
	case na > nb:
		return 1, nil
	}
	return 0, nil
}

func zeroLike(v any) any {
	switch v.(type) {
	case string:
		return ""
	case bool:
		return false
	}
	return 0.0
}

// scalar forces a and unwraps a 1x1 range.
func scalar(v any) (any, error) {
	v, err := types.Force(v)
	if err != nil {
		return nil, err
	}
	if r, ok := v.(types.Range); ok {
		if r.Rows() == 1 && r.Cols() == 1 {
			return r[0][0], nil
		}
		return nil, valueError("Expected a single value but got a range.")
	}
	return v, nil
}

func arithmetic(op func(a, b float64) (float64, error)) Impl {
	return func(_ *Context, args ...any) (any, error) {
		a, err := ToNumber(args[0])
		if err != nil {
			return nil, err
		}
		b, err := ToNumber(args[1])
		if err != nil {
			return nil, err
		}
		return op(a, b)
	}
}

func divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, &EvalError{Value: ErrorDivZero, Message: "The divisor must be different from zero."}
	}
	return a / b, nil
}

func power(a, b float64) (float64, error) {
	r := math.Pow(a, b)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, &EvalError{Value: ErrorNA, Message: "The result of POWER is not a finite number."}
	}
	return r, nil
}

func fnUMinus(_ *Context, args ...any) (any, error) {
	n, err := ToNumber(args[0])
	if err != nil {
		return nil, err
	}
	return -n, nil
}

func fnUPlus(_ *Context, args ...any) (any, error) {
	return scalar(args[0])
}

func fnPercent(_ *Context, args ...any) (any, error) {
	n, err := ToNumber(args[0])
	if err != nil {
		return nil, err
	}
	return n / 100, nil
}

// visit calls fn for every scalar in args, flattening ranges.
func visit(args []any, fn func(v any, fromRange bool) error) error {
	for _, arg := range args {
		arg, err := types.Force(arg)
		if err != nil {
			return err
		}
		r, ok := arg.(types.Range)
		if !ok {
			if err := fn(arg, false); err != nil {
				return err
			}
			continue
		}
		for _, row := range r {
			for _, v := range row {
				if err := fn(v, true); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func fnSum(_ *Context, args ...any) (any, error) {
	total := 0.0
	err := visit(args, func(v any, fromRange bool) error {
		if fromRange {
			// Text and booleans inside ranges are ignored.
			if n, ok := v.(float64); ok {
				total += n
			}
			return nil
		}
		n, err := ToNumber(v)
		total += n
		return err
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

func fnConcat(_ *Context, args ...any) (any, error) {
	var sb strings.Builder
	err := visit(args, func(v any, _ bool) error {
		s, err := ToString(v)
		sb.WriteString(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sb.String(), nil
}

func fnIf(_ *Context, args ...any) (any, error) {
	cond, err := ToBoolean(args[0])
	if err != nil {
		return nil, err
	}
	if cond {
		return scalar(args[1])
	}
	if len(args) < 3 {
		return false, nil
	}
	return scalar(args[2])
}

func fnIfs(_ *Context, args ...any) (any, error) {
	for i := 0; i+1 < len(args); i += 2 {
		cond, err := ToBoolean(args[i])
		if err != nil {
			return nil, err
		}
		if cond {
			return scalar(args[i+1])
		}
	}
	return nil, &EvalError{Value: ErrorNA, Message: "No conditions were true."}
}

func fnIfError(_ *Context, args ...any) (any, error) {
	v, err := scalar(args[0])
	if err == nil {
		return v, nil
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		return nil, err
	}
	if len(args) < 2 {
		return "", nil
	}
	return scalar(args[1])
}

func fnIsError(_ *Context, args ...any) (any, error) {
	_, err := scalar(args[0])
	if err == nil {
		return false, nil
	}
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return true, nil
	}
	return nil, err
}

func logical(isAnd bool) Impl {
	return func(_ *Context, args ...any) (any, error) {
		result, found := isAnd, false
		err := visit(args, func(v any, fromRange bool) error {
			if fromRange {
				if _, ok := v.(string); ok || v == nil {
					return nil
				}
			}
			b, err := ToBoolean(v)
			if err != nil {
				return err
			}
			found = true
			if isAnd {
				result = result && b
			} else {
				result = result || b
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, valueError("No valid input found.")
		}
		return result, nil
	}
}

func fnNot(_ *Context, args ...any) (any, error) {
	b, err := ToBoolean(args[0])
	if err != nil {
		return nil, err
	}
	return !b, nil
}

func fnChoose(_ *Context, args ...any) (any, error) {
	n, err := ToNumber(args[0])
	if err != nil {
		return nil, err
	}
	index := int(math.Trunc(n))
	if index < 1 || index >= len(args) {
		return nil, valueError("Index for CHOOSE is out of range: %d.", index)
	}
	return scalar(args[index])
}

func position(coord func(Position) int) Impl {
	return func(_ *Context, args ...any) (any, error) {
		p, ok := args[0].(Position)
		if !ok {
			return nil, &EvalError{Value: ErrorRef, Message: "Expected a reference."}
		}
		return float64(coord(p) + 1), nil
	}
}

func dimension(size func(types.Range) int) Impl {
	return func(_ *Context, args ...any) (any, error) {
		r, ok := args[0].(types.Range)
		if !ok {
			return nil, &EvalError{Value: ErrorRef, Message: "Expected a range."}
		}
		return float64(size(r)), nil
	}
}
