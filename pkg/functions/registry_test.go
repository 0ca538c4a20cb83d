package functions_test

import (
	"math"
	"testing"

	"github.com/sandrolain/gosheet/pkg/functions"
)

func noop(_ *functions.Context, _ ...any) (any, error) { return nil, nil }

func TestRegistryMetaInfo(t *testing.T) {
	tests := []struct {
		name      string
		min, max  int
		repeating int
	}{
		{"NOT", 1, 1, 0},
		{"IF", 2, 3, 0},
		{"SUM", 1, math.MaxInt, 1},
		{"IFS", 2, math.MaxInt, 2},
		{"IFERROR", 1, 2, 0},
	}
	reg := functions.Default()
	for _, tt := range tests {
		def, ok := reg.Get(tt.name)
		if !ok {
			t.Fatalf("%s is not registered", tt.name)
		}
		if def.MinArgRequired != tt.min || def.MaxArgPossible != tt.max || def.NbrArgRepeating != tt.repeating {
			t.Fatalf("%s: got min=%d max=%d repeating=%d", tt.name, def.MinArgRequired, def.MaxArgPossible, def.NbrArgRepeating)
		}
	}
}

func TestGetArgToFocus(t *testing.T) {
	reg := functions.Default()
	tests := []struct {
		name     string
		position int
		want     int
	}{
		{"IF", 1, 1},
		{"IF", 3, 3},
		{"SUM", 1, 1},
		{"SUM", 2, 2},
		{"SUM", 9, 2},
		{"IFS", 1, 1},
		{"IFS", 2, 2},
		{"IFS", 3, 3},
		{"IFS", 4, 4},
		{"IFS", 5, 3},
		{"IFS", 6, 4},
		{"IFS", 7, 3},
	}
	for _, tt := range tests {
		def, _ := reg.Get(tt.name)
		if got := def.GetArgToFocus(tt.position); got != tt.want {
			t.Fatalf("%s(%d): got %d, want %d", tt.name, tt.position, got, tt.want)
		}
	}
}

func TestRegistryAdd(t *testing.T) {
	reg := functions.NewRegistry()
	if err := reg.Add(functions.Definition{Name: "nocompute"}); err == nil {
		t.Fatal("expected an error for a missing implementation")
	}
	if err := reg.Add(functions.Definition{Compute: noop}); err == nil {
		t.Fatal("expected an error for an empty name")
	}
	err := reg.Add(functions.Definition{
		Name:    "BAD",
		Args:    functions.Args("a (any, repeating)", "b (any)"),
		Compute: noop,
	})
	if err == nil {
		t.Fatal("expected an error for repeating arguments before required ones")
	}
	if err := reg.Add(functions.Definition{Name: "myFn", Args: functions.Args("a (any)"), Compute: noop}); err != nil {
		t.Fatal(err)
	}
	def, ok := reg.Get("MYFN")
	if !ok || def.Name != "MYFN" {
		t.Fatalf("expected MYFN to be registered, got %+v", def)
	}
	if _, ok := reg.Get("myfn"); !ok {
		t.Fatal("lookup must be case-insensitive")
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "MYFN" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegistryClone(t *testing.T) {
	clone := functions.Default().Clone()
	if err := clone.Add(functions.Definition{Name: "EXTRA", Compute: noop}); err != nil {
		t.Fatal(err)
	}
	if _, ok := functions.Default().Get("EXTRA"); ok {
		t.Fatal("adding to a clone must not change the default registry")
	}
	if _, ok := clone.Get("SUM"); !ok {
		t.Fatal("clone must keep the builtins")
	}
}
