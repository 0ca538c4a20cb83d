// Package gosheet compiles spreadsheet formulas into reusable execution
// plans.
//
// A formula is tokenized, its references and literals are collected, and its
// AST is compiled into a plan that is cached by structure: "=A1+1" and
// "=B7+42" share one plan. The caller resolves the returned dependencies to
// live cells and runs the plan against them.
//
// # Quick Start
//
//	f, err := gosheet.Compile("=IF(A1>0, A1*2, 0)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// f.Dependencies == []string{"A1", "A1"}
//	v, err := f.Execute(bindings, ref, rng, functions.NewContext(nil))
//
// # More Information
//
//   - Compiler: github.com/sandrolain/gosheet/pkg/compiler
//   - Functions: github.com/sandrolain/gosheet/pkg/functions
//   - Parser: github.com/sandrolain/gosheet/pkg/parser
//   - Tokenizer: github.com/sandrolain/gosheet/pkg/tokenizer
package gosheet

import (
	"fmt"
	"sync"

	"github.com/sandrolain/gosheet/pkg/compiler"
)

// Version returns the current version of gosheet.
func Version() string {
	return "v0.1.0-dev"
}

var (
	defaultCompiler     *compiler.Compiler
	defaultCompilerOnce sync.Once
)

// Default returns the package-level compiler: builtin functions, native
// tokenizer and the process-wide plan cache.
func Default() *compiler.Compiler {
	defaultCompilerOnce.Do(func() {
		defaultCompiler = compiler.New()
	})
	return defaultCompiler
}

// Compile compiles a formula with the package-level compiler.
func Compile(formula string) (*compiler.CompiledFormula, error) {
	return Default().Compile(formula)
}

// CompileOrError compiles formula, returning an error formula that always
// fails with the compile error when compilation fails.
func CompileOrError(formula string) *compiler.CompiledFormula {
	f, err := Compile(formula)
	if err != nil {
		return compiler.ErrorFormula(formula, err)
	}
	return f
}

// MustCompile is like Compile but panics if the formula cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(formula string) *compiler.CompiledFormula {
	f, err := Compile(formula)
	if err != nil {
		panic(fmt.Sprintf("gosheet: Compile(%q): %v", formula, err))
	}
	return f
}
