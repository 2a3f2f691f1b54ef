package conformance

import (
	"fmt"
	"time"

	"github.com/lxsc/irp-harness/framework"
)

// Outcome is what happened to a test in this run.
type Outcome int

const (
	// Passed means the interpreter exited with status zero.
	Passed Outcome = iota
	// Failed means the interpreter exited with a non-zero status.
	Failed
	// Overridden means a hand-recorded verdict was used instead of running the test.
	Overridden
	// Traced means a manual test was run in trace mode; nothing was recorded.
	Traced
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "pass"
	case Failed:
		return "fail"
	case Overridden:
		return "skip"
	case Traced:
		return "trace"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// TestInfo identifies a test and its position in the run.
type TestInfo struct {
	ID     string
	URI    string
	Manual bool
	Index  int // 1-based
	Total  int
}

// Mode is "auto" or "manual".
func (t TestInfo) Mode() string {
	if t.Manual {
		return "manual"
	}
	return "auto"
}

type TestResult struct {
	Test     TestInfo
	Outcome  Outcome
	Verdict  string // the override verdict for Overridden
	Duration time.Duration
	Output   framework.CapturedOutput
}

// Disposition is the word shown on the progress line: "skip <verdict>", "pass", "fail" or
// "trace".
func (r TestResult) Disposition() string {
	if r.Outcome == Overridden {
		return "skip " + r.Verdict
	}
	return r.Outcome.String()
}

type Results struct {
	RunID    string
	Tests    []TestResult
	Failures []TestResult
}

// Add records a finished test.
func (r *Results) Add(result TestResult) {
	r.Tests = append(r.Tests, result)
	if result.Outcome == Failed {
		r.Failures = append(r.Failures, result)
	}
}

// OK is true when no executed test failed.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Count returns how many tests had the given outcome.
func (r Results) Count(o Outcome) int {
	n := 0
	for _, t := range r.Tests {
		if t.Outcome == o {
			n++
		}
	}
	return n
}
