// Package compiler turns formula text into reusable execution plans.
//
// Compilation extracts the formula's dependencies and literals from its
// tokens, computes a structural cache key in which literals and references
// are placeholders, and compiles the parsed AST into a Plan only when no plan
// is cached for that key yet. Formulas that differ only in their literals and
// references, such as "=A1+1" and "=B7+42", share one Plan.
//
// # Example
//
//	c := compiler.New()
//	f, err := c.Compile("=SUM(A1:A4)*2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// f.Dependencies == []string{"A1:A4"}
//	v, err := f.Execute(bindings, ref, rng, functions.NewContext(nil))
//
// # Concurrency
//
// A Compiler is safe for concurrent use. Plans are immutable and may be
// executed concurrently, each invocation with its own functions.Context.
package compiler

import (
	"log/slog"
	"strings"

	"github.com/sandrolain/gosheet/pkg/cache"
	"github.com/sandrolain/gosheet/pkg/functions"
	"github.com/sandrolain/gosheet/pkg/messages"
	"github.com/sandrolain/gosheet/pkg/parser"
	"github.com/sandrolain/gosheet/pkg/tokenizer"
	"github.com/sandrolain/gosheet/pkg/types"
)

// PlanCache stores compiled plans by structural key. GetOrCompile must store
// at most one plan per key and return the stored one to every caller.
//
// A plan depends on the registry it was bound against, so keys of plans
// compiled with any registry other than the unmodified default are prefixed
// with the registry's scope.
type PlanCache interface {
	GetOrCompile(key string, compile func() (*Plan, error)) (*Plan, error)
	Len() int
}

// sharedPlans is the process-wide plan cache used unless WithCache is given.
var sharedPlans = cache.New[*Plan]()

// SharedCache returns the process-wide plan cache.
func SharedCache() *cache.Cache[*Plan] {
	return sharedPlans
}

// Options configures a Compiler.
type Options struct {
	// Cache holds compiled plans. Defaults to the process-wide cache.
	Cache PlanCache
	// Registry resolves function signatures. Defaults to functions.Default().
	Registry *functions.Registry
	// Tokenizer splits formula text. Defaults to tokenizer.Tokenize.
	Tokenizer tokenizer.Func
	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures a Compiler.
type Option func(*Options)

// WithCache sets the plan cache. Tests use it to get an isolated cache.
func WithCache(c PlanCache) Option {
	return func(o *Options) {
		o.Cache = c
	}
}

// WithRegistry sets the function registry.
func WithRegistry(reg *functions.Registry) Option {
	return func(o *Options) {
		o.Registry = reg
	}
}

// WithTokenizer sets the tokenizer.
func WithTokenizer(fn tokenizer.Func) Option {
	return func(o *Options) {
		o.Tokenizer = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Compiler compiles formulas.
type Compiler struct {
	cache    PlanCache
	registry *functions.Registry
	tokenize tokenizer.Func
	logger   *slog.Logger
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Cache == nil {
		options.Cache = sharedPlans
	}
	if options.Registry == nil {
		options.Registry = functions.Default()
	}
	if options.Tokenizer == nil {
		options.Tokenizer = tokenizer.Tokenize
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Compiler{
		cache:    options.Cache,
		registry: options.Registry,
		tokenize: options.Tokenizer,
		logger:   options.Logger,
	}
}

// Registry returns the function registry the compiler binds calls against.
func (c *Compiler) Registry() *functions.Registry {
	return c.registry
}

// Compile compiles formula. Compile errors are *types.Error values and are
// never cached: compiling the same failing formula again fails again.
func (c *Compiler) Compile(formula string) (*CompiledFormula, error) {
	tokens := c.tokenize(formula)
	deps, consts := FormulaArguments(tokens)
	key := CacheKey(tokens, deps, consts)

	miss := false
	plan, err := c.cache.GetOrCompile(scopedKey(c.registry.Scope(), key), func() (*Plan, error) {
		miss = true
		root, err := parser.Parse(tokens)
		if err != nil {
			return nil, messages.New(types.ErrBadExpression, messages.InvalidFormula, nil).WithCause(err)
		}
		ac := &astCompiler{registry: c.registry, consts: &consts, logger: c.logger}
		return ac.compilePlan(key, root)
	})
	if err != nil {
		c.logger.Debug("formula compilation failed", "formula", formula, "error", err)
		return nil, err
	}
	if miss {
		c.logger.Debug("formula plan compiled", "key", key)
	} else {
		c.logger.Debug("formula plan reused", "key", key)
	}

	return &CompiledFormula{
		Dependencies:   deps,
		ConstantValues: consts,
		Tokens:         tokens,
		plan:           plan,
	}, nil
}

func scopedKey(scope, key string) string {
	if scope == "" {
		return key
	}
	return scope + "\x00" + key
}

// CompiledFormula is the result of compiling one formula text. Many compiled
// formulas may share one Plan.
type CompiledFormula struct {
	// Dependencies holds the text of every reference token, in order and
	// with duplicates. Execute expects one binding per entry.
	Dependencies   []string
	ConstantValues types.ConstantValues
	Tokens         []types.Token

	plan *Plan
	err  error
}

// ErrorFormula returns a compiled formula for content that failed to compile
// with err. Its Execute always returns err. Store it in place of a plan so
// the formula is not recompiled on every evaluation.
func ErrorFormula(content string, err error) *CompiledFormula {
	return &CompiledFormula{
		Tokens: tokenizer.Tokenize(content),
		err:    err,
	}
}

// Plan returns the shared plan, or nil for an error formula.
func (f *CompiledFormula) Plan() *Plan {
	return f.plan
}

// Err returns the compile error of an error formula.
func (f *CompiledFormula) Err() error {
	return f.err
}

// Execute runs the formula's plan with this formula's constants.
func (f *CompiledFormula) Execute(deps []any, ref RefFunc, rng RangeFunc, ctx *functions.Context) (any, error) {
	if f.plan == nil {
		return nil, f.err
	}
	return f.plan.Execute(&f.ConstantValues, deps, ref, rng, ctx)
}

// Content rebuilds the formula text from its tokens. render is called for
// every reference token with its dependency index and current text, and its
// result replaces the token; a nil render keeps the original text.
func (f *CompiledFormula) Content(render func(i int, dep string) string) string {
	var sb strings.Builder
	i := 0
	for _, tok := range f.Tokens {
		if tok.IsReference() && render != nil {
			sb.WriteString(render(i, tok.Text))
			i++
			continue
		}
		sb.WriteString(tok.Text)
	}
	return sb.String()
}
