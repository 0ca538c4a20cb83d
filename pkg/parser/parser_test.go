package parser_test

import (
	"errors"
	"testing"

	"github.com/sandrolain/gosheet/pkg/parser"
	"github.com/sandrolain/gosheet/pkg/types"
)

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"=1+2*3", "(1+(2*3))"},
		{"=(1+2)*3", "((1+2)*3)"},
		{"=-2^2", "(-2^2)"},
		{"=2^3^2", "((2^3)^2)"},
		{"=50%", "50%"},
		{"=-A1%", "-A1%"},
		{"=A1&B1=\"x\"", "((A1&B1)=\"x\")"},
		{"=1<2+3", "(1<(2+3))"},
		{"=SUM(A1, 2)", "SUM(A1,2)"},
		{"=sum()", "SUM()"},
		{"=IF(TRUE, FALSE, 1)", "IF(TRUE,FALSE,1)"},
		{"1 + 2", "(1+2)"},
		{"=A1:", "(A1:?)"},
		{"=", "?"},
		{"=1+", "(1+?)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := parser.ParseFormula(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := node.String(); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseNodeKinds(t *testing.T) {
	node, err := parser.ParseFormula(`=IF(A1, "yes", -2)`)
	if err != nil {
		t.Fatal(err)
	}
	call, ok := node.(*types.Funcall)
	if !ok {
		t.Fatalf("expected *types.Funcall, got %T", node)
	}
	kinds := []types.NodeKind{types.NodeReference, types.NodeString, types.NodeUnary}
	for i, k := range kinds {
		if got := call.Args[i].Kind(); got != k {
			t.Fatalf("arg %d: got %s, want %s", i, got, k)
		}
	}
	if s := call.Args[1].(*types.String).Value; s != "yes" {
		t.Fatalf("string literal: got %q", s)
	}
}

func TestParseReferenceIndexes(t *testing.T) {
	node, err := parser.ParseFormula("=A1+SUM(B2:B3, A1)")
	if err != nil {
		t.Fatal(err)
	}
	bin := node.(*types.BinaryOperation)
	first := bin.Left.(*types.Reference)
	call := bin.Right.(*types.Funcall)
	second := call.Args[0].(*types.Reference)
	third := call.Args[1].(*types.Reference)
	if first.Index != 0 || second.Index != 1 || third.Index != 2 {
		t.Fatalf("indexes: got %d %d %d", first.Index, second.Index, third.Index)
	}
	if third.Value != "A1" {
		t.Fatalf("got %q", third.Value)
	}
}

func TestParseBreakpoint(t *testing.T) {
	node, err := parser.ParseFormula("=?A1+1")
	if err != nil {
		t.Fatal(err)
	}
	bin := node.(*types.BinaryOperation)
	if !bin.Left.Debug() {
		t.Fatal("expected a breakpoint on A1")
	}
	if bin.Debug() || bin.Right.Debug() {
		t.Fatal("unexpected breakpoint")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"=(1",
		"=1 2",
		"=foo",
		"=SUM(1",
		"=SUM(1;2)",
		"=*2",
		"=)",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := parser.ParseFormula(input)
			if err == nil {
				t.Fatal("expected an error")
			}
			var fe *types.Error
			if !errors.As(err, &fe) {
				t.Fatalf("expected *types.Error, got %T", err)
			}
			if fe.Code != types.ErrSyntax {
				t.Fatalf("expected %s, got %s", types.ErrSyntax, fe.Code)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parser.ParseFormula("=1 + foo")
	var fe *types.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *types.Error, got %v", err)
	}
	if fe.Position != 5 {
		t.Fatalf("position: got %d, want 5", fe.Position)
	}
}
