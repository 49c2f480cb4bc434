// Package gcode provides tokenizing and line I/O for G-code command streams.
package gcode

import "errors"

var (
	// ErrMalformedField is returned when an X or Y word does not carry a number.
	ErrMalformedField = errors.New("malformed axis field")

	// ErrMalformedMarker is returned when a layer marker payload is not an integer.
	ErrMalformedMarker = errors.New("malformed layer marker")
)

// Command is a single parsed G-code directive.
type Command struct {
	// Raw is the trimmed source line, comment included.
	Raw string

	// Name is the upper-cased leading token, e.g. "G1".
	Name string

	// X and Y hold axis targets. They are only meaningful when HasX/HasY is set.
	X    float64
	Y    float64
	HasX bool
	HasY bool
}

// MovesXY reports whether the command carries an X or Y target.
func (c Command) MovesXY() bool {
	return c.HasX || c.HasY
}

// motionNames are the linear-move commands that contribute to layer time.
var motionNames = map[string]bool{
	"G0":  true,
	"G00": true,
	"G1":  true,
	"G01": true,
}

// IsMotion reports whether the command is a linear move.
func IsMotion(c Command) bool {
	return motionNames[c.Name]
}
