package conformance

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var consoleTestFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleTestPassedColor = color.New(color.FgGreen)              //nolint:gochecknoglobals
var consoleTestSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleTestTracedColor = color.New(color.FgCyan)               //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)               //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen)                 //nolint:gochecknoglobals

type TestLogger interface {
	TestStarted(t TestInfo)
	// TestTracing is called just before a manual test is run in trace mode, whose output
	// goes straight to the terminal.
	TestTracing(t TestInfo)
	TestFinished(r TestResult)
	EndLog(results Results) error
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestInfo)    {}
func (n nullTestLogger) TestTracing(TestInfo)    {}
func (n nullTestLogger) TestFinished(TestResult) {}
func (n nullTestLogger) EndLog(Results) error    { return nil }

func NullTestLogger() TestLogger { return nullTestLogger{} }

// ConsoleTestLogger writes one progress line per test:
//
//	Test #3/180 txml/test147.txml (auto): pass
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// TestStarted prints nothing. The progress line is written in one piece by TestFinished,
// or by TestTracing for manual tests.
func (c ConsoleTestLogger) TestStarted(TestInfo) {}

func (c ConsoleTestLogger) progress(t TestInfo) {
	fmt.Fprintf(c.out(), "Test #%d/%d %s (%s): ", t.Index, t.Total, t.URI, t.Mode())
}

func (c ConsoleTestLogger) TestTracing(t TestInfo) {
	c.progress(t)
	_, _ = consoleTestTracedColor.Fprintln(c.out(), Traced.String())
}

func (c ConsoleTestLogger) TestFinished(r TestResult) {
	if r.Outcome != Traced {
		c.progress(r.Test)
	}
	switch r.Outcome {
	case Passed:
		_, _ = consoleTestPassedColor.Fprintln(c.out(), r.Disposition())
	case Failed:
		_, _ = consoleTestFailedColor.Fprintln(c.out(), r.Disposition())
	case Overridden:
		_, _ = consoleTestSkippedColor.Fprintln(c.out(), r.Disposition())
	case Traced:
		return
	}
	failed := r.Outcome == Failed
	if len(r.Output) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Fprintln(c.out(), r.Output.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) EndLog(results Results) error {
	fmt.Fprintln(c.out())
	fmt.Fprintf(c.out(), "%d passed, %d failed, %d overridden, %d traced\n",
		results.Count(Passed), results.Count(Failed), results.Count(Overridden), results.Count(Traced))
	return nil
}

// MultiTestLogger forwards every event to each of Loggers.
type MultiTestLogger struct {
	Loggers []TestLogger
}

func (m *MultiTestLogger) TestStarted(t TestInfo) {
	for _, l := range m.Loggers {
		l.TestStarted(t)
	}
}

func (m *MultiTestLogger) TestTracing(t TestInfo) {
	for _, l := range m.Loggers {
		l.TestTracing(t)
	}
}

func (m *MultiTestLogger) TestFinished(r TestResult) {
	for _, l := range m.Loggers {
		l.TestFinished(r)
	}
}

func (m *MultiTestLogger) EndLog(results Results) error {
	var firstErr error
	for _, l := range m.Loggers {
		if err := l.EndLog(results); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func PrintResults(results Results) {
	if results.OK() {
		_, _ = allTestsPassedColor.Println("All tests passed")
	} else {
		_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "FAILED TESTS (%d):\n", len(results.Failures))
		for _, f := range results.Failures {
			_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "  * %s (%s)\n", f.Test.ID, f.Test.URI)
		}
	}
}
