package types

import (
	"strconv"
	"strings"
)

// NodeKind names the grammatical kind of an AST node.
type NodeKind string

// AST node kinds.
const (
	NodeBoolean   NodeKind = "BOOLEAN"
	NodeNumber    NodeKind = "NUMBER"
	NodeString    NodeKind = "STRING"
	NodeReference NodeKind = "REFERENCE"
	NodeFuncall   NodeKind = "FUNCALL"
	NodeUnary     NodeKind = "UNARY_OPERATION"
	NodeBinary    NodeKind = "BIN_OPERATION"
	NodeUnknown   NodeKind = "UNKNOWN"
)

// Node is a formula AST node. The set of implementations is closed: only the
// types declared in this file satisfy it.
type Node interface {
	Kind() NodeKind
	// Debug reports whether a breakpoint marker precedes this node.
	Debug() bool
	String() string
	meta() *Meta
}

// Meta carries the attributes shared by every node kind.
type Meta struct {
	Breakpoint bool
}

// Debug implements Node.
func (m Meta) Debug() bool { return m.Breakpoint }

func (m *Meta) meta() *Meta { return m }

// SetBreakpoint marks n so that a breakpoint marker is emitted before it is
// compiled.
func SetBreakpoint(n Node) {
	n.meta().Breakpoint = true
}

// Boolean is a TRUE or FALSE literal.
type Boolean struct {
	Meta
	Value bool
}

// Number is a numeric literal.
type Number struct {
	Meta
	Value float64
}

// String is a string literal with its enclosing quotes removed.
type String struct {
	Meta
	Value string
}

// Reference is a cell or range reference. Index is the position of the
// reference token among all reference tokens of the formula, which is also
// its slot in the dependency list.
type Reference struct {
	Meta
	Value string
	Index int
}

// Funcall is a function call. Name keeps the casing of the source text.
type Funcall struct {
	Meta
	Name string
	Args []Node
}

// UnaryOperation is a prefix (-, +) or postfix (%) operation.
type UnaryOperation struct {
	Meta
	Op      string
	Operand Node
}

// BinaryOperation is an infix operation.
type BinaryOperation struct {
	Meta
	Op    string
	Left  Node
	Right Node
}

// Unknown stands for an expression the parser could not complete.
type Unknown struct {
	Meta
}

func (*Boolean) Kind() NodeKind         { return NodeBoolean }
func (*Number) Kind() NodeKind          { return NodeNumber }
func (*String) Kind() NodeKind          { return NodeString }
func (*Reference) Kind() NodeKind       { return NodeReference }
func (*Funcall) Kind() NodeKind         { return NodeFuncall }
func (*UnaryOperation) Kind() NodeKind  { return NodeUnary }
func (*BinaryOperation) Kind() NodeKind { return NodeBinary }
func (*Unknown) Kind() NodeKind         { return NodeUnknown }

func (n *Boolean) String() string {
	if n.Value {
		return "TRUE"
	}
	return "FALSE"
}

func (n *Number) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

func (n *String) String() string { return strconv.Quote(n.Value) }

func (n *Reference) String() string { return n.Value }

func (n *Funcall) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return strings.ToUpper(n.Name) + "(" + strings.Join(args, ",") + ")"
}

func (n *UnaryOperation) String() string {
	if n.Op == "%" {
		return n.Operand.String() + "%"
	}
	return n.Op + n.Operand.String()
}

func (n *BinaryOperation) String() string {
	return "(" + n.Left.String() + n.Op + n.Right.String() + ")"
}

func (*Unknown) String() string { return "?" }

// IsRangeExpression reports whether n is a bare range literal (a ":"
// operation).
func IsRangeExpression(n Node) bool {
	b, ok := n.(*BinaryOperation)
	return ok && b.Op == ":"
}
