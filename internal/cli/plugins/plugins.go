// Package plugins runs external layerdwell-<command> binaries for commands
// the CLI does not implement itself, the way git and kubectl do. A typical
// plugin uploads a cleaned file to a printer host.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "layerdwell-"

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// Finder locates plugin binaries. Dirs are searched in order before PATH.
type Finder struct {
	Dirs     []string
	LookPath func(file string) (string, error)
}

// DefaultFinder searches the directory holding the running binary, then
// ~/.layerdwell/plugins, then PATH.
func DefaultFinder() *Finder {
	f := &Finder{LookPath: exec.LookPath}
	if execPath, err := os.Executable(); err == nil {
		f.Dirs = append(f.Dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		f.Dirs = append(f.Dirs, filepath.Join(homeDir, ".layerdwell", "plugins"))
	}
	return f
}

// Find returns the full path of the plugin binary for command.
func (f *Finder) Find(command string) (string, error) {
	if command == "" || strings.ContainsAny(command, `/\`) {
		return "", ErrPluginNotFound
	}
	name := Prefix + command

	for _, dir := range f.Dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if f.LookPath != nil {
		if path, err := f.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrPluginNotFound
}

// Invocation describes one plugin run.
type Invocation struct {
	Path   string
	Args   []string
	Env    []string // extra KEY=VALUE pairs appended to the environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the plugin and returns its exit code.
func Run(ctx context.Context, inv Invocation) int {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	cmd.Env = append(os.Environ(), inv.Env...)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		if inv.Stderr != nil {
			fmt.Fprintf(inv.Stderr, "Error executing plugin: %v\n", err)
		}
		return 1
	}
	return 0
}

// NotFoundMessage explains where a plugin for command would be looked up.
func (f *Finder) NotFoundMessage(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"layerdwell\"\n", command)
	sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	for _, dir := range f.Dirs {
		fmt.Fprintf(&sb, "  - %s\n", filepath.Join(dir, Prefix+command))
	}
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)
	sb.WriteString("\nRun 'layerdwell --help' for usage.")

	return sb.String()
}

// isExecutable checks if a regular file exists with any execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
