package compiler

import (
	"strconv"
	"strings"

	"github.com/sandrolain/gosheet/pkg/messages"
	"github.com/sandrolain/gosheet/pkg/types"
)

// compileFunctionArgs checks the argument count of call against the callee's
// signature and compiles each argument for the parameter it binds to.
//
// A reference bound to a parameter that accepts ranges is read as a range,
// even when it names a single cell. Lazy parameters receive a closure.
func (c *astCompiler) compileFunctionArgs(call *types.Funcall) ([]fragment, error) {
	name := strings.ToUpper(call.Name)
	def, ok := c.registry.Get(name)
	if !ok {
		return nil, messages.New(types.ErrUnknownFunction, messages.UnknownFunction, map[string]any{"Function": name})
	}

	n := len(call.Args)
	if n < def.MinArgRequired {
		return nil, messages.New(types.ErrTooFewArguments, messages.TooFewArguments, map[string]any{
			"Function": name,
			"Expected": strconv.Itoa(def.MinArgRequired),
			"Actual":   strconv.Itoa(n),
		})
	}
	if n > def.MaxArgPossible {
		return nil, messages.New(types.ErrTooManyArguments, messages.TooManyArguments, map[string]any{
			"Function": name,
			"Expected": strconv.Itoa(def.MaxArgPossible),
			"Actual":   strconv.Itoa(n),
		})
	}
	if repeating := def.NbrArgRepeating; repeating > 1 {
		beforeRepeat := len(def.Args) - repeating
		if (n-beforeRepeat)%repeating != 0 {
			return nil, messages.New(types.ErrRepeatingGroup, messages.RepeatingGroup, map[string]any{
				"Function": name,
				"Position": strconv.Itoa(beforeRepeat),
				"Group":    strconv.Itoa(repeating),
			})
		}
	}

	compiled := make([]fragment, 0, n)
	for i, arg := range call.Args {
		slot := def.GetArgToFocus(i+1) - 1
		if slot < 0 || slot >= len(def.Args) {
			continue
		}
		argDef := def.Args[slot]
		if argDef.IsRangeOnly() && arg.Kind() != types.NodeReference {
			return nil, messages.New(types.ErrExpectedReference, messages.ExpectedReference, map[string]any{
				"Function": name,
				"Param":    strconv.Itoa(i + 1),
				"Kind":     strings.ToLower(string(arg.Kind())),
			})
		}
		f, err := c.compile(arg, argContext{
			isMeta:       argDef.IsMeta(),
			hasRange:     argDef.HasRange(),
			functionName: name,
			paramIndex:   i + 1,
		})
		if err != nil {
			return nil, err
		}
		if argDef.Lazy {
			f = f.wrapInClosure()
		}
		compiled = append(compiled, f)
	}
	return compiled, nil
}
