package process

import (
	"strconv"
	"strings"

	"github.com/ygrebnov/errorc"
)

// Stdio configures one standard stream of a child process.
type Stdio int

const (
	// Inherit connects the stream to the parent's corresponding stream (the zero value).
	Inherit Stdio = iota
	// Piped creates a pipe the caller reads from or writes to through the Process.
	Piped
	// Null connects the stream to the null device.
	Null
)

func (s Stdio) String() string {
	switch s {
	case Inherit:
		return "inherit"
	case Piped:
		return "piped"
	case Null:
		return "null"
	}
	return "unknown"
}

// Command describes an external process to launch.
type Command struct {
	// Name is looked up in PATH unless it contains a path separator.
	Name string
	Args []string

	// Dir is the working directory; empty means the caller's.
	Dir string
	// Env replaces the environment when non-nil.
	Env []string

	Stdin  Stdio
	Stdout Stdio
	Stderr Stdio
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

func (c Command) validate() error {
	if c.Name == "" {
		return errorc.With(ErrInvalidConfig, errorc.String("", "command name is empty"))
	}
	for _, s := range []Stdio{c.Stdin, c.Stdout, c.Stderr} {
		if s < Inherit || s > Null {
			return errorc.With(ErrInvalidConfig, errorc.String("stdio", "unknown mode "+strconv.Itoa(int(s))))
		}
	}
	return nil
}
