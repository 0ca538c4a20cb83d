package functions

import (
	"fmt"
	"strings"
)

// ArgType is a type tag of a function parameter.
type ArgType string

const (
	TypeAny          ArgType = "ANY"
	TypeBoolean      ArgType = "BOOLEAN"
	TypeNumber       ArgType = "NUMBER"
	TypeString       ArgType = "STRING"
	TypeDate         ArgType = "DATE"
	TypeRange        ArgType = "RANGE"
	TypeRangeBoolean ArgType = "RANGE<BOOLEAN>"
	TypeRangeDate    ArgType = "RANGE<DATE>"
	TypeRangeNumber  ArgType = "RANGE<NUMBER>"
	TypeRangeString  ArgType = "RANGE<STRING>"
	TypeMeta         ArgType = "META"
)

var argTypes = map[string]ArgType{
	"any":            TypeAny,
	"boolean":        TypeBoolean,
	"number":         TypeNumber,
	"string":         TypeString,
	"date":           TypeDate,
	"range":          TypeRange,
	"range<boolean>": TypeRangeBoolean,
	"range<date>":    TypeRangeDate,
	"range<number>":  TypeRangeNumber,
	"range<string>":  TypeRangeString,
	"meta":           TypeMeta,
}

// IsRange reports whether t is one of the range-flavored types.
func (t ArgType) IsRange() bool {
	switch t {
	case TypeRange, TypeRangeBoolean, TypeRangeDate, TypeRangeNumber, TypeRangeString:
		return true
	}
	return false
}

// ArgDefinition describes one declared parameter.
type ArgDefinition struct {
	Name         string
	Types        []ArgType
	Lazy         bool
	Optional     bool
	Repeating    bool
	Default      bool
	DefaultValue string
}

// HasRange reports whether at least one declared type is range-flavored.
func (a ArgDefinition) HasRange() bool {
	for _, t := range a.Types {
		if t.IsRange() {
			return true
		}
	}
	return false
}

// IsRangeOnly reports whether every declared type is range-flavored. A
// parameter without types is not range-only.
func (a ArgDefinition) IsRangeOnly() bool {
	if len(a.Types) == 0 {
		return false
	}
	for _, t := range a.Types {
		if !t.IsRange() {
			return false
		}
	}
	return true
}

// IsMeta reports whether the parameter wants a reference rather than a value.
func (a ArgDefinition) IsMeta() bool {
	for _, t := range a.Types {
		if t == TypeMeta {
			return true
		}
	}
	return false
}

// ParseArg parses an argument description such as
//
//	value2 (number, range<number>, repeating)
//	value_if_true (any, lazy)
//	cell_reference (meta, optional)
//	significance (number, default=1)
//
// Type names and modifiers are case-insensitive.
func ParseArg(desc string) (ArgDefinition, error) {
	desc = strings.TrimSpace(desc)
	open := strings.IndexByte(desc, '(')
	if open < 0 || !strings.HasSuffix(desc, ")") {
		return ArgDefinition{}, fmt.Errorf("invalid argument description %q: missing type list", desc)
	}
	arg := ArgDefinition{Name: strings.TrimSpace(desc[:open])}
	if arg.Name == "" {
		return ArgDefinition{}, fmt.Errorf("invalid argument description %q: missing name", desc)
	}
	for _, part := range strings.Split(desc[open+1:len(desc)-1], ",") {
		item := strings.ToLower(strings.TrimSpace(part))
		switch {
		case item == "":
			continue
		case item == "lazy":
			arg.Lazy = true
		case item == "optional":
			arg.Optional = true
		case item == "repeating":
			arg.Repeating = true
		case strings.HasPrefix(item, "default="):
			arg.Default = true
			arg.DefaultValue = strings.TrimSpace(part)[len("default="):]
		default:
			t, ok := argTypes[item]
			if !ok {
				return ArgDefinition{}, fmt.Errorf("invalid argument description %q: unknown type %q", desc, item)
			}
			arg.Types = append(arg.Types, t)
		}
	}
	return arg, nil
}

// Args parses argument descriptions, panicking on an invalid one. It is
// meant for static function tables.
func Args(descs ...string) []ArgDefinition {
	args := make([]ArgDefinition, len(descs))
	for i, d := range descs {
		a, err := ParseArg(d)
		if err != nil {
			panic(err)
		}
		args[i] = a
	}
	return args
}
