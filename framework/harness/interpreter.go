package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"time"

	"github.com/lxsc/irp-harness/framework"
)

// ErrNotStarted means the interpreter process could not be launched at all. That is a
// harness configuration problem, not a test failure.
var ErrNotStarted = errors.New("interpreter could not be started")

const processWaitDelay = time.Second

// Mode selects how a document is run.
type Mode int

const (
	// ModeRun executes the document and reports its outcome through the exit status.
	ModeRun Mode = iota
	// ModeTrace executes the document with tracing so a person can judge the result.
	ModeTrace
)

func (m Mode) String() string {
	if m == ModeTrace {
		return "trace"
	}
	return "run"
}

// Result describes one finished interpreter run.
type Result struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
	Output   framework.CapturedOutput
}

// Passed reports whether the run ended with exit status zero.
func (r Result) Passed() bool { return r.ExitCode == 0 && !r.TimedOut }

// Interpreter executes one SCXML document.
type Interpreter interface {
	Run(ctx context.Context, path string, mode Mode) (Result, error)
}

// ProcessInterpreter runs an external command with the document path appended.
type ProcessInterpreter struct {
	Command   []string
	TraceFlag string
	// Timeout bounds each run; zero means no limit.
	Timeout time.Duration
	// TraceOutput, if set, also receives the live output of trace runs.
	TraceOutput io.Writer
	// Quiet lines are dropped from the captured output.
	Quiet  []*regexp.Regexp
	Logger framework.Logger
}

// Args returns the full argv used for path in the given mode.
func (p *ProcessInterpreter) Args(path string, mode Mode) []string {
	args := append(append([]string(nil), p.Command...), path)
	if mode == ModeTrace && p.TraceFlag != "" {
		args = append(args, p.TraceFlag)
	}
	return args
}

func (p *ProcessInterpreter) Run(ctx context.Context, path string, mode Mode) (Result, error) {
	if len(p.Command) == 0 {
		return Result{}, fmt.Errorf("%w: no command configured", ErrNotStarted)
	}
	logger := p.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}

	runCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	args := p.Args(path, mode)
	capture := &framework.CapturingLogger{}
	filtered := newFilteredWriter(capture, p.Quiet)
	out := filtered
	if mode == ModeTrace && p.TraceOutput != nil {
		out = io.MultiWriter(out, p.TraceOutput)
	}

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...) //nolint:gosec
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = processWaitDelay

	logger.Printf("Running %v", args)
	start := time.Now()
	err := cmd.Run()
	if c, ok := filtered.(io.Closer); ok {
		_ = c.Close()
	}
	capture.Flush()
	result := Result{Duration: time.Since(start), Output: capture.Output()}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if err == nil {
		return result, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return result, fmt.Errorf("%w: %s", ErrNotStarted, err)
	}
	result.ExitCode = exitErr.ExitCode()
	if runCtx.Err() != nil {
		result.TimedOut = true
		logger.Printf("Interpreter timed out after %s", p.Timeout)
	}
	logger.Printf("Interpreter exited with status %d", result.ExitCode)
	return result, nil
}
