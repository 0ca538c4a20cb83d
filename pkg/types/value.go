package types

// ConstantValues holds the distinct literals of one formula. The position of
// a literal in its slice is its constant-pool index.
type ConstantValues struct {
	Numbers []float64
	Strings []string
}

// NumberIndex returns the pool index of v, or -1.
func (c *ConstantValues) NumberIndex(v float64) int {
	for i, n := range c.Numbers {
		if n == v {
			return i
		}
	}
	return -1
}

// StringIndex returns the pool index of s, or -1.
func (c *ConstantValues) StringIndex(s string) int {
	for i, v := range c.Strings {
		if v == s {
			return i
		}
	}
	return -1
}

// Range is a rectangular block of values, row-major. A single cell read in a
// range position is a 1x1 Range.
type Range [][]any

// Rows returns the number of rows.
func (r Range) Rows() int { return len(r) }

// Cols returns the number of columns.
func (r Range) Cols() int {
	if len(r) == 0 {
		return 0
	}
	return len(r[0])
}

// Lazy is a deferred argument. Calling it evaluates the wrapped expression.
type Lazy func() (any, error)

// Force evaluates v if it is a Lazy argument and returns it unchanged
// otherwise.
func Force(v any) (any, error) {
	if l, ok := v.(Lazy); ok {
		return l()
	}
	return v, nil
}
