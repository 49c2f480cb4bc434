// Package layers splits a G-code stream into layers and estimates layer print times.
package layers

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/layerdwell/pkg/gcode"
)

// ErrDuplicateLayer is returned when a layer marker repeats an id and the
// duplicate policy is DuplicateError.
var ErrDuplicateLayer = errors.New("duplicate layer marker")

// Layer is one slice of the print and the motion commands that belong to it.
type Layer struct {
	ID       int
	Commands []gcode.Command
}

// DuplicatePolicy decides what happens when a marker reuses a layer id.
type DuplicatePolicy string

const (
	// DuplicateContinue reopens the existing layer and keeps appending to it.
	DuplicateContinue DuplicatePolicy = "continue"
	// DuplicateError fails extraction.
	DuplicateError DuplicatePolicy = "error"
)

// Valid reports whether p is a known policy.
func (p DuplicatePolicy) Valid() bool {
	return p == DuplicateContinue || p == DuplicateError
}

type extractOptions struct {
	policy DuplicatePolicy
	log    *logrus.Entry
}

// ExtractOption configures Extract.
type ExtractOption func(*extractOptions)

// WithDuplicatePolicy sets the duplicate marker policy (default DuplicateContinue).
func WithDuplicatePolicy(p DuplicatePolicy) ExtractOption {
	return func(o *extractOptions) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithLogger sets the logger used for extraction warnings.
func WithLogger(log *logrus.Entry) ExtractOption {
	return func(o *extractOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// Extract splits lines into layers in order of first appearance. Motion lines
// before the first marker are ignored.
func Extract(lines []string, matcher *gcode.MarkerMatcher, opts ...ExtractOption) ([]Layer, error) {
	o := &extractOptions{
		policy: DuplicateContinue,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(o)
	}

	var layers []Layer
	index := make(map[int]int) // layer id -> position in layers
	current := -1

	for i, line := range lines {
		id, isMarker, err := matcher.Match(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if isMarker {
			if pos, seen := index[id]; seen {
				if o.policy == DuplicateError {
					return nil, fmt.Errorf("line %d: %w: layer %d", i+1, ErrDuplicateLayer, id)
				}
				o.log.WithFields(logrus.Fields{"layer": id, "line": i + 1}).
					Warn("layer marker repeated; continuing existing layer")
				current = pos
				continue
			}
			index[id] = len(layers)
			layers = append(layers, Layer{ID: id})
			current = len(layers) - 1
			continue
		}

		if current < 0 || !gcode.IsMotionLine(line) {
			continue
		}
		cmd, err := gcode.ParseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		layers[current].Commands = append(layers[current].Commands, cmd)
	}

	o.log.WithField("layers", len(layers)).Debug("extracted layers")
	return layers, nil
}

// Lines reconstructs the raw text of a layer's commands.
func (l Layer) Lines() []string {
	out := make([]string, len(l.Commands))
	for i, c := range l.Commands {
		out[i] = c.Raw
	}
	return out
}
