// Command gosheet compiles formulas and reports their dependencies, literals,
// structural cache key and plan. With -set, it also evaluates them.
//
// Usage:
//
//	gosheet [-config gosheet.yaml] [-set A1=3 -set B2=hello] [-plan] [-ast] FORMULA...
//
// Output is one JSON object per formula, indented when stdout is a terminal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/term"

	"github.com/sandrolain/gosheet/pkg/compiler"
	"github.com/sandrolain/gosheet/pkg/config"
	"github.com/sandrolain/gosheet/pkg/functions"
	"github.com/sandrolain/gosheet/pkg/grid"
	"github.com/sandrolain/gosheet/pkg/messages"
	"github.com/sandrolain/gosheet/pkg/parser"
)

type report struct {
	Formula      string    `json:"formula"`
	Key          string    `json:"key,omitempty"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Numbers      []float64 `json:"numbers,omitempty"`
	Strings      []string  `json:"strings,omitempty"`
	Plan         string    `json:"plan,omitempty"`
	Value        any       `json:"value,omitempty"`
	Error        string    `json:"error,omitempty"`
	LastFnCalled string    `json:"last_function,omitempty"`
}

type cellFlags []string

func (c *cellFlags) String() string     { return strings.Join(*c, ",") }
func (c *cellFlags) Set(v string) error { *c = append(*c, v); return nil }

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (.yaml, .yml or .toml)")
		showPlan   = flag.Bool("plan", false, "Print the compiled plan")
		showAST    = flag.Bool("ast", false, "Dump the parsed AST to stderr")
		cells      cellFlags
	)
	flag.Var(&cells, "set", "Cell value as ADDR=VALUE (repeatable)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c := compiler.New(cfg.Options(logger)...)
	tokenize := cfg.Tokenize()

	g := grid.New("Sheet1")
	for _, cell := range cells {
		addr, raw, ok := strings.Cut(cell, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid -set %q, expected ADDR=VALUE\n", cell)
			os.Exit(2)
		}
		if err := g.Set(addr, parseValue(raw)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		enc.SetIndent("", "  ")
	}

	failed := false
	for _, formula := range flag.Args() {
		if *showAST {
			if ast, err := parser.Parse(tokenize(formula)); err == nil {
				spew.Fdump(os.Stderr, ast)
			}
		}
		r := run(c, g, formula, cfg.Locale, len(cells) > 0, *showPlan)
		failed = failed || r.Error != ""
		if err := enc.Encode(r); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func run(c *compiler.Compiler, g *grid.Grid, formula, locale string, evaluate, showPlan bool) report {
	r := report{Formula: formula}
	f, err := c.Compile(formula)
	if err != nil {
		r.Error = messages.Localize(err, locale)
		return r
	}
	r.Key = f.Plan().Key()
	r.Dependencies = f.Dependencies
	r.Numbers = f.ConstantValues.Numbers
	r.Strings = f.ConstantValues.Strings
	if showPlan {
		r.Plan = f.Plan().String()
	}
	if evaluate {
		ctx := functions.NewContext(c.Registry())
		v, err := g.Evaluate(f, ctx)
		if err != nil {
			r.Error = err.Error()
			r.LastFnCalled = ctx.LastFnCalled
			return r
		}
		r.Value = v
	}
	return r
}

// parseValue reads a -set value as a number, a boolean or a string.
func parseValue(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return raw
}
