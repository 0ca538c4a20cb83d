package compiler_test

import (
	"reflect"
	"testing"

	"github.com/sandrolain/gosheet/pkg/compiler"
	"github.com/sandrolain/gosheet/pkg/tokenizer"
	"github.com/sandrolain/gosheet/pkg/types"
)

func TestFormulaArgumentsAndKey(t *testing.T) {
	tests := []struct {
		formula string
		deps    []string
		consts  types.ConstantValues
		key     string
	}{
		{
			formula: `=A1+1+"2"`,
			deps:    []string{"A1"},
			consts:  types.ConstantValues{Numbers: []float64{1}, Strings: []string{"2"}},
			key:     "=|0|+|N0|+|S0|",
		},
		{
			formula: `=A2 + 2 + "3"`,
			deps:    []string{"A2"},
			consts:  types.ConstantValues{Numbers: []float64{2}, Strings: []string{"3"}},
			key:     "=|0|+|N0|+|S0|",
		},
		{
			formula: `=B1*1.0+A1+B1-1e0&"x"&"x"`,
			deps:    []string{"B1", "A1", "B1"},
			consts:  types.ConstantValues{Numbers: []float64{1}, Strings: []string{"x"}},
			key:     `=|0|*|N0|+|1|+|0|-|N0|&|S0|&|S0|`,
		},
		{
			formula: "=IF(TRUE, #REF, 0)",
			deps:    []string{"#REF"},
			consts:  types.ConstantValues{Numbers: []float64{0}},
			key:     "=IF(TRUE,|0|,|N0|)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			tokens := tokenizer.Tokenize(tt.formula)
			deps, consts := compiler.FormulaArguments(tokens)
			if !reflect.DeepEqual(deps, tt.deps) {
				t.Fatalf("deps: got %q, want %q", deps, tt.deps)
			}
			if !reflect.DeepEqual(consts, tt.consts) {
				t.Fatalf("consts: got %+v, want %+v", consts, tt.consts)
			}
			if key := compiler.CacheKey(tokens, deps, consts); key != tt.key {
				t.Fatalf("key: got %q, want %q", key, tt.key)
			}
		})
	}
}
