package process

import (
	"errors"

	"golang.org/x/sync/errgroup"
)

// Result is the captured outcome of a finished process.
type Result struct {
	Stdout []byte
	Stderr []byte
	Status ExitStatus
}

// Report returns stdout when the process succeeded and stderr otherwise.
func (r Result) Report() string {
	if r.Status.Success {
		return string(r.Stdout)
	}
	return string(r.Stderr)
}

// Run spawns cmd with its configured streams and waits for it to exit.
// A piped stdin is closed immediately; piped outputs are drained concurrently and captured.
// The returned error joins every stream failure with the wait failure, if any; the Result
// holds whatever was captured.
func Run(cmd Command, opts ...Option) (Result, error) {
	return execute(cmd, nil, opts...)
}

// Output runs cmd with stdout and stderr captured.
func Output(cmd Command, opts ...Option) (Result, error) {
	cmd.Stdout, cmd.Stderr = Piped, Piped
	return execute(cmd, nil, opts...)
}

// VersionQuery runs "name --version" with captured output. Result.Report selects the stream
// to show depending on the exit status.
func VersionQuery(name string, opts ...Option) (Result, error) {
	return Output(Command{Name: name, Args: []string{"--version"}, Stdin: Null}, opts...)
}

// Pipe runs cmd with stdin and stdout piped: input is written to stdin, stdin is closed and
// stdout is read to EOF. The write happens on its own goroutine while stdout is drained, so an
// input larger than the pipe buffer cannot deadlock against the child's output.
func Pipe(cmd Command, input []byte, opts ...Option) (Result, error) {
	cmd.Stdin, cmd.Stdout = Piped, Piped
	return execute(cmd, input, opts...)
}

func execute(cmd Command, input []byte, opts ...Option) (Result, error) {
	p, err := SpawnWith(cmd, opts...)
	if err != nil {
		return Result{}, err
	}

	var (
		res Result
		g   errgroup.Group
	)
	if cmd.Stdin == Piped {
		g.Go(func() error { return p.WriteAndClose(input) })
	}
	if cmd.Stdout == Piped {
		g.Go(func() error {
			b, err := p.ReadAllOutput()
			res.Stdout = b
			return err
		})
	}
	if cmd.Stderr == Piped {
		g.Go(func() error {
			b, err := p.ReadAllError()
			res.Stderr = b
			return err
		})
	}
	ioErr := g.Wait()

	// The process is reaped even when a stream failed.
	status, waitErr := p.Wait()
	res.Status = status
	return res, errors.Join(ioErr, waitErr)
}
