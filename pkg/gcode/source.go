package gcode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single G-code line. Thumbnail blocks in sliced files
// are split into short lines, so 1MB is generous.
const maxLineSize = 1024 * 1024

// ReadLines reads every line from r. Line terminators are stripped.
func ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	lines, _, err := ReadLinesLimit(ctx, r, 0)
	return lines, err
}

// ReadLinesLimit reads at most limit lines from r; a limit of zero or less
// reads everything. truncated reports whether lines remained unread.
func ReadLinesLimit(ctx context.Context, r io.Reader, limit int) (lines []string, truncated bool, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if limit > 0 && len(lines) >= limit {
			return lines, true, nil
		}
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, false, err
	}
	return lines, false, nil
}

// ReadFile reads a G-code file into lines.
func ReadFile(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided input path is expected
	if err != nil {
		return nil, fmt.Errorf("opening gcode file %s: %w", path, err)
	}
	defer f.Close()

	lines, err := ReadLines(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// WriteLines writes lines to w, each terminated by a newline.
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes lines to path, replacing any existing file.
func WriteFile(path string, lines []string) error {
	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteLines(f, lines); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
