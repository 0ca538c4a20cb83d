package grid_test

import (
	"errors"
	"testing"

	"github.com/sandrolain/gosheet/pkg/cache"
	"github.com/sandrolain/gosheet/pkg/compiler"
	"github.com/sandrolain/gosheet/pkg/functions"
	"github.com/sandrolain/gosheet/pkg/grid"
)

func TestParseZone(t *testing.T) {
	tests := []struct {
		ref  string
		want grid.Zone
	}{
		{"A1", grid.Zone{}},
		{"$B$2", grid.Zone{Left: 1, Top: 1, Right: 1, Bottom: 1}},
		{"c3:a1", grid.Zone{Left: 0, Top: 0, Right: 2, Bottom: 2}},
		{"Sheet2!AA10", grid.Zone{Sheet: "Sheet2", Left: 26, Top: 9, Right: 26, Bottom: 9}},
		{"'My ''big'' sheet'!A1:B2", grid.Zone{Sheet: "My 'big' sheet", Right: 1, Bottom: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := grid.ParseZone(tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
	for _, bad := range []string{"", "A", "1A", "A0", "#REF", "A1:B"} {
		if _, err := grid.ParseZone(bad); err == nil {
			t.Fatalf("%q: expected an error", bad)
		}
	}
}

func TestColumnName(t *testing.T) {
	tests := map[int]string{0: "A", 25: "Z", 26: "AA", 701: "ZZ", 702: "AAA"}
	for col, want := range tests {
		if got := grid.ColumnName(col); got != want {
			t.Fatalf("ColumnName(%d): got %q, want %q", col, got, want)
		}
	}
}

func TestSetGet(t *testing.T) {
	g := grid.New("Sheet1")
	if err := g.Set("b2", 3.0); err != nil {
		t.Fatal(err)
	}
	for _, addr := range []string{"B2", "$B$2", "sheet1!B2"} {
		v, err := g.Get(addr)
		if err != nil || v != 3.0 {
			t.Fatalf("Get(%q): got %v, %v", addr, v, err)
		}
	}
	if v, _ := g.Get("Sheet2!B2"); v != nil {
		t.Fatalf("expected an empty cell on another sheet, got %v", v)
	}
	if err := g.Set("A1:B2", 1.0); err == nil {
		t.Fatal("expected an error when setting a range")
	}
}

func TestEvaluate(t *testing.T) {
	g := grid.New("Sheet1")
	cells := map[string]any{
		"A1":        1.0,
		"A2":        2.0,
		"A3":        "x",
		"B1":        "hello",
		"Sheet2!A1": 5.0,
	}
	for addr, v := range cells {
		if err := g.Set(addr, v); err != nil {
			t.Fatal(err)
		}
	}
	c := compiler.New(compiler.WithCache(cache.New[*compiler.Plan]()))

	tests := []struct {
		formula string
		want    any
	}{
		{"=A1*2", 2.0},
		{"=SUM(A1:A3)", 3.0},
		{"=SUM(A1, A2) + A1", 4.0},
		{"=ROWS(A1:B3)", 3.0},
		{"=COLUMNS(A1:B3)", 2.0},
		{"=COLUMN(C5)", 3.0},
		{"=ROW(Sheet2!C5:D9)", 5.0},
		{"=Sheet2!A1*2", 10.0},
		{`=B1&" "&A2`, "hello 2"},
		{"=IF(Z99, 1, 2)", 2.0},
		{"=IFERROR(1/Z99, \"none\")", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			f, err := c.Compile(tt.formula)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := g.Evaluate(f, nil)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	g := grid.New("Sheet1")
	c := compiler.New(compiler.WithCache(cache.New[*compiler.Plan]()))
	tests := []struct {
		formula string
		want    string
		lastFn  string
	}{
		// Dereferencing runs before the function is recorded.
		{"=A1:B2+1", functions.ErrorValue, ""},
		{"=#REF+1", functions.ErrorRef, ""},
		{"=1/A1", functions.ErrorDivZero, "DIVIDE"},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			f, err := c.Compile(tt.formula)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			ctx := functions.NewContext(nil)
			_, err = g.Evaluate(f, ctx)
			var evalErr *functions.EvalError
			if !errors.As(err, &evalErr) || evalErr.Value != tt.want {
				t.Fatalf("got %v, want %s", err, tt.want)
			}
			if ctx.LastFnCalled != tt.lastFn {
				t.Fatalf("last function: got %q, want %q", ctx.LastFnCalled, tt.lastFn)
			}
		})
	}
}
