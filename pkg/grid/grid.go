// Package grid is a minimal in-memory cell store that can run compiled
// formulas. It plays the caller's role for the compiler: it resolves a
// formula's dependencies to zones and answers the plan's dereference
// callbacks. Cells hold plain values; formulas stored in cells are not
// evaluated.
package grid

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sandrolain/gosheet/pkg/compiler"
	"github.com/sandrolain/gosheet/pkg/functions"
	"github.com/sandrolain/gosheet/pkg/types"
)

// Zone is a rectangular block of cells, zero-based and inclusive.
type Zone struct {
	Sheet  string
	Left   int
	Top    int
	Right  int
	Bottom int
}

// IsSingleCell reports whether z covers exactly one cell.
func (z Zone) IsSingleCell() bool {
	return z.Left == z.Right && z.Top == z.Bottom
}

type cellKey struct {
	sheet    string
	col, row int
}

// Grid stores cell values. Safe for concurrent use by multiple goroutines.
type Grid struct {
	mu    sync.RWMutex
	sheet string
	cells map[cellKey]any
}

// New creates an empty grid. References without a sheet name resolve to
// defaultSheet.
func New(defaultSheet string) *Grid {
	return &Grid{sheet: defaultSheet, cells: make(map[cellKey]any)}
}

// Set stores v in the cell at addr ("B3", "Sheet2!B3").
func (g *Grid) Set(addr string, v any) error {
	z, err := ParseZone(addr)
	if err != nil {
		return err
	}
	if !z.IsSingleCell() {
		return fmt.Errorf("grid: %q is not a single cell", addr)
	}
	g.mu.Lock()
	g.cells[g.key(z.Sheet, z.Left, z.Top)] = v
	g.mu.Unlock()
	return nil
}

// Get returns the value of the cell at addr, nil when empty.
func (g *Grid) Get(addr string) (any, error) {
	z, err := ParseZone(addr)
	if err != nil {
		return nil, err
	}
	return g.value(z.Sheet, z.Left, z.Top), nil
}

func (g *Grid) key(sheet string, col, row int) cellKey {
	if sheet == "" {
		sheet = g.sheet
	}
	return cellKey{sheet: strings.ToUpper(sheet), col: col, row: row}
}

func (g *Grid) value(sheet string, col, row int) any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[g.key(sheet, col, row)]
}

// Range returns the values of z, row by row.
func (g *Grid) Range(z Zone) types.Range {
	r := make(types.Range, 0, z.Bottom-z.Top+1)
	for row := z.Top; row <= z.Bottom; row++ {
		line := make([]any, 0, z.Right-z.Left+1)
		for col := z.Left; col <= z.Right; col++ {
			line = append(line, g.value(z.Sheet, col, row))
		}
		r = append(r, line)
	}
	return r
}

// Bind resolves the dependencies of f. A dependency that is not a valid
// address binds to its parse error, which the plan reports as #REF! when
// read.
func (g *Grid) Bind(f *compiler.CompiledFormula) []any {
	deps := make([]any, len(f.Dependencies))
	for i, d := range f.Dependencies {
		z, err := ParseZone(d)
		if err != nil {
			deps[i] = err
			continue
		}
		deps[i] = z
	}
	return deps
}

// Evaluate runs f against the grid. A nil ctx means a fresh context over the
// builtin functions.
func (g *Grid) Evaluate(f *compiler.CompiledFormula, ctx *functions.Context) (any, error) {
	return f.Execute(g.Bind(f), g.ref, g.rng, ctx)
}

func (g *Grid) ref(dep any, isMeta bool, fnName string, paramIndex int) (any, error) {
	z, err := zoneOf(dep)
	if err != nil {
		return nil, err
	}
	if isMeta {
		return functions.Position{Sheet: z.Sheet, Left: z.Left, Top: z.Top, Right: z.Right, Bottom: z.Bottom}, nil
	}
	if !z.IsSingleCell() {
		return nil, &functions.EvalError{
			Value:   functions.ErrorValue,
			Message: fmt.Sprintf("Function %s expects the parameter %d to be a single value or a single cell reference, not a range.", fnName, paramIndex),
		}
	}
	return g.value(z.Sheet, z.Left, z.Top), nil
}

func (g *Grid) rng(dep any) (any, error) {
	z, err := zoneOf(dep)
	if err != nil {
		return nil, err
	}
	return g.Range(z), nil
}

func zoneOf(dep any) (Zone, error) {
	z, ok := dep.(Zone)
	if !ok {
		return Zone{}, &functions.EvalError{Value: functions.ErrorRef, Message: "Invalid reference"}
	}
	return z, nil
}

// ParseZone parses "A1", "$B$2", "A1:C9", "Sheet2!B3" or "'My sheet'!A1:B2".
func ParseZone(ref string) (Zone, error) {
	var z Zone
	if i := strings.LastIndexByte(ref, '!'); i >= 0 {
		z.Sheet = ref[:i]
		if len(z.Sheet) >= 2 && strings.HasPrefix(z.Sheet, "'") && strings.HasSuffix(z.Sheet, "'") {
			z.Sheet = strings.ReplaceAll(z.Sheet[1:len(z.Sheet)-1], "''", "'")
		}
		ref = ref[i+1:]
	}
	start, end, isRange := strings.Cut(ref, ":")
	col, row, err := parseCell(start)
	if err != nil {
		return Zone{}, err
	}
	z.Left, z.Top, z.Right, z.Bottom = col, row, col, row
	if isRange {
		col2, row2, err := parseCell(end)
		if err != nil {
			return Zone{}, err
		}
		z.Left, z.Right = min(col, col2), max(col, col2)
		z.Top, z.Bottom = min(row, row2), max(row, row2)
	}
	return z, nil
}

// parseCell parses a cell address into zero-based column and row.
func parseCell(s string) (col, row int, err error) {
	s = strings.ReplaceAll(strings.ToUpper(s), "$", "")
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		col = col*26 + int(s[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, fmt.Errorf("grid: invalid cell address %q", s)
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("grid: invalid cell address %q", s)
	}
	return col - 1, n - 1, nil
}

// ColumnName returns the letters of a zero-based column index.
func ColumnName(col int) string {
	var b []byte
	for col++; col > 0; col = (col - 1) / 26 {
		b = append([]byte{byte('A' + (col-1)%26)}, b...)
	}
	return string(b)
}
