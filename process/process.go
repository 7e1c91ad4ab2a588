// Package process launches external commands and exchanges data with them over pipes.
//
// Spawn starts a process with each standard stream configured as Inherit, Piped or Null and
// returns a Process. A piped stream is taken at most once:
//   - WriteAndClose writes all bytes to stdin and then closes it on every exit path, so the
//     child observes end-of-input.
//   - ReadAllOutput and ReadAllError read stdout and stderr to EOF.
//
// Wait reaps the process and reports its ExitStatus; a non-zero exit is a status, not an error.
// The read side of a piped output belongs to the Process, not to the exec machinery: Wait never
// closes it, so draining may happen before, after or concurrently with Wait, and ReadAllOutput
// or ReadAllError closes the stream once it reaches EOF. A child writing more than the OS pipe
// buffer into an undrained pipe does not exit, so when Wait is called first the outputs must be
// drained on their own goroutines. Output, Pipe and Run do that for every piped stream.
//
// A piped stdin nobody has taken when Wait starts is closed by Wait. WriteAndClose must therefore
// take stdin before Wait is called; a later call returns ErrStreamTaken.
//
// Nothing in this package cancels a running process; retries are the caller's decision.
package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ygrebnov/threadkit/metrics"
)

// ExitStatus is the terminal state of a process.
// Code is -1 when the process was terminated by a signal.
type ExitStatus struct {
	Code    int
	Success bool
}

// Process is a live child process. Its methods are safe for concurrent use.
type Process struct {
	id      uuid.UUID
	command Command
	cmd     *exec.Cmd
	started time.Time

	logger   *zap.Logger
	failed   metrics.Counter
	duration metrics.Histogram

	mu             sync.Mutex
	stdin          io.WriteCloser
	stdout, stderr io.ReadCloser

	// write ends handed to the child; closed in the parent once it has started
	childOut, childErr *os.File

	stdinTaken     bool
	stdoutTaken    bool
	stderrTaken    bool

	waitOnce sync.Once
	status   ExitStatus
	waitErr  error
}

// Spawn launches cmd with default options.
func Spawn(cmd Command) (*Process, error) {
	return SpawnWith(cmd)
}

// SpawnWith launches cmd. On failure it returns an *Error matching ErrSpawn and
// leaves no pipe open and no process behind.
func SpawnWith(cmd Command, opts ...Option) (*Process, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	p := &Process{
		id:      uuid.New(),
		command: cmd,
		logger:  cfg.Logger,
		failed: cfg.Metrics.Counter(metricFailed,
			metrics.WithDescription("failed process operations"), metrics.WithUnit("1")),
		duration: cfg.Metrics.Histogram(metricDuration,
			metrics.WithDescription("process lifetime from spawn to exit"), metrics.WithUnit("seconds")),
	}

	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	p.cmd = c

	if err := p.wire(); err != nil {
		p.closePipes()
		return nil, p.fail(StageSpawn, err)
	}
	if err := c.Start(); err != nil {
		p.closePipes()
		return nil, p.fail(StageSpawn, err)
	}
	p.closeChildEnds()

	p.started = time.Now()
	cfg.Metrics.Counter(metricSpawned,
		metrics.WithDescription("processes spawned"), metrics.WithUnit("1")).Add(1)
	p.logger.Debug("process spawned",
		zap.String("command", cmd.String()),
		zap.Int("pid", c.Process.Pid),
		zap.Stringer("process_id", p.id),
	)
	return p, nil
}

// wire connects the configured standard streams to p.cmd.
func (p *Process) wire() error {
	var err error
	switch p.command.Stdin {
	case Inherit:
		p.cmd.Stdin = os.Stdin
	case Piped:
		if p.stdin, err = p.cmd.StdinPipe(); err != nil {
			return err
		}
	case Null:
	}

	switch p.command.Stdout {
	case Inherit:
		p.cmd.Stdout = os.Stdout
	case Piped:
		if p.stdout, p.childOut, err = os.Pipe(); err != nil {
			return err
		}
		p.cmd.Stdout = p.childOut
	case Null:
	}

	switch p.command.Stderr {
	case Inherit:
		p.cmd.Stderr = os.Stderr
	case Piped:
		if p.stderr, p.childErr, err = os.Pipe(); err != nil {
			return err
		}
		p.cmd.Stderr = p.childErr
	case Null:
	}
	return nil
}

func (p *Process) closePipes() {
	p.closeChildEnds()
	for _, c := range []io.Closer{p.stdin, p.stdout, p.stderr} {
		if c != nil {
			_ = c.Close()
		}
	}
}

// closeChildEnds drops the parent's copies of the output write ends, so readers see EOF
// once the child exits.
func (p *Process) closeChildEnds() {
	for _, f := range []*os.File{p.childOut, p.childErr} {
		if f != nil {
			_ = f.Close()
		}
	}
}

// fail builds the *Error for stage, counts it and logs it.
func (p *Process) fail(stage Stage, err error) error {
	p.failed.Add(1)
	p.logger.Warn("process operation failed",
		zap.String("command", p.command.String()),
		zap.String("stage", string(stage)),
		zap.Stringer("process_id", p.id),
		zap.Error(err),
	)
	return &Error{Command: p.command.String(), Stage: stage, Err: err}
}

// ID returns the correlation identifier assigned at spawn time.
func (p *Process) ID() uuid.UUID { return p.id }

// PID returns the operating system process id.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Command returns the command the process was spawned from.
func (p *Process) Command() Command { return p.command }

func (p *Process) takeStdin() (io.WriteCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.command.Stdin != Piped:
		return nil, ErrNotPiped
	case p.stdinTaken:
		return nil, ErrStreamTaken
	}
	p.stdinTaken = true
	return p.stdin, nil
}

func (p *Process) takeOutput(mode Stdio, r io.ReadCloser, taken *bool) (io.ReadCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case mode != Piped:
		return nil, ErrNotPiped
	case *taken:
		return nil, ErrStreamTaken
	}
	*taken = true
	return r, nil
}

// WriteAndClose writes all of data to the process's stdin and then closes stdin,
// whether or not the write succeeded. Write failures match ErrIO with StageWrite;
// a failed close is reported with StageCloseInput.
func (p *Process) WriteAndClose(data []byte) (err error) {
	w, err := p.takeStdin()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = p.fail(StageCloseInput, cerr)
		}
	}()

	if _, werr := w.Write(data); werr != nil {
		return p.fail(StageWrite, werr)
	}
	return nil
}

// ReadAllOutput reads the process's stdout until EOF and closes it.
// It may run before, after or concurrently with Wait.
func (p *Process) ReadAllOutput() ([]byte, error) {
	r, err := p.takeOutput(p.command.Stdout, p.stdout, &p.stdoutTaken)
	if err != nil {
		return nil, err
	}
	return p.readAll(r)
}

// ReadAllError reads the process's stderr until EOF and closes it.
// It may run before, after or concurrently with Wait.
func (p *Process) ReadAllError() ([]byte, error) {
	r, err := p.takeOutput(p.command.Stderr, p.stderr, &p.stderrTaken)
	if err != nil {
		return nil, err
	}
	return p.readAll(r)
}

func (p *Process) readAll(r io.ReadCloser) ([]byte, error) {
	b, err := io.ReadAll(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return b, p.fail(StageRead, err)
	}
	return b, nil
}

// releaseStdin closes a piped stdin nobody took, so a child reading until EOF can finish.
func (p *Process) releaseStdin() error {
	w, err := p.takeStdin()
	if err != nil {
		// not piped, or already owned by a writer
		return nil
	}
	if err := w.Close(); err != nil {
		return p.fail(StageCloseInput, err)
	}
	return nil
}

// Wait blocks until the process exits and returns its status. Later calls return the same
// result. A non-zero exit code is reported through ExitStatus with a nil error; only a failure
// to wait returns an *Error matching ErrWait.
//
// Wait leaves piped outputs open for the caller to drain. It closes a piped stdin that no
// WriteAndClose has taken yet, so a writer must take stdin before Wait starts: start
// WriteAndClose first, or run it to completion, before calling Wait.
func (p *Process) Wait() (ExitStatus, error) {
	p.waitOnce.Do(func() {
		releaseErr := p.releaseStdin()

		err := p.cmd.Wait()
		p.duration.Record(time.Since(p.started).Seconds())

		var exitErr *exec.ExitError
		switch {
		case err == nil:
			p.status = ExitStatus{Code: 0, Success: true}
		case errors.As(err, &exitErr):
			p.status = ExitStatus{Code: exitErr.ExitCode(), Success: false}
		default:
			p.waitErr = p.fail(StageWait, err)
		}
		if p.waitErr == nil {
			p.waitErr = releaseErr
		}

		p.logger.Debug("process exited",
			zap.String("command", p.command.String()),
			zap.Int("pid", p.cmd.Process.Pid),
			zap.Int("code", p.status.Code),
			zap.Bool("success", p.status.Success),
		)
	})
	return p.status, p.waitErr
}

// Kill forcibly terminates the process. It is meant for cleanup of abandoned processes;
// the process must still be reaped with Wait.
func (p *Process) Kill() error {
	return p.cmd.Process.Kill()
}
