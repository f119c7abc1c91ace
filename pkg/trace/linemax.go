//go:build !small

package trace

// LineMax is the capacity of the line buffer, terminator included.
const LineMax = 8192
