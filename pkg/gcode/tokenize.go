package gcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// reWord matches a single G-code word: an axis letter immediately followed by a number.
var reWord = regexp.MustCompile(`^([A-Za-z])([-+]?(?:\d+\.?\d*|\.\d+))$`)

// Word is one letter/value pair from a command line.
type Word struct {
	Letter byte
	Value  float64
}

// ParseWord tokenizes a single field such as "X10.5".
func ParseWord(field string) (Word, error) {
	m := reWord.FindStringSubmatch(field)
	if m == nil {
		return Word{}, fmt.Errorf("%w: %q", ErrMalformedField, field)
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Word{}, fmt.Errorf("%w: %q: %v", ErrMalformedField, field, err)
	}
	return Word{Letter: strings.ToUpper(m[1])[0], Value: v}, nil
}

// ParseCommand parses one line into a Command.
// Only X and Y words are validated; malformed words on other axes are skipped.
func ParseCommand(line string) (Command, error) {
	raw := strings.TrimSpace(line)
	cmd := Command{Raw: raw}

	body := raw
	if idx := strings.IndexByte(body, ';'); idx >= 0 {
		body = body[:idx]
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return cmd, nil
	}
	cmd.Name = strings.ToUpper(fields[0])

	for _, f := range fields[1:] {
		letter := strings.ToUpper(f[:1])
		if letter != "X" && letter != "Y" {
			continue
		}
		w, err := ParseWord(f)
		if err != nil {
			return Command{}, err
		}
		switch w.Letter {
		case 'X':
			cmd.X, cmd.HasX = w.Value, true
		case 'Y':
			cmd.Y, cmd.HasY = w.Value, true
		}
	}
	return cmd, nil
}

// LeadingToken returns the upper-cased first token of a line with comments removed.
func LeadingToken(line string) string {
	body := line
	if idx := strings.IndexByte(body, ';'); idx >= 0 {
		body = body[:idx]
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// IsMotionLine reports whether a raw line starts with a linear-move command.
func IsMotionLine(line string) bool {
	return motionNames[LeadingToken(line)]
}
