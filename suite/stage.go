package suite

import "fmt"

// Stage is a step in the life of one test within a run. A test moves from Selected to
// Prepared, then to exactly one of Skipped, Traced or Executed, then to Reported and
// finally Cleaned.
type Stage int

const (
	Selected Stage = iota
	Prepared
	Skipped
	Traced
	Executed
	Reported
	Cleaned
)

func (s Stage) String() string {
	switch s {
	case Selected:
		return "selected"
	case Prepared:
		return "prepared"
	case Skipped:
		return "skipped"
	case Traced:
		return "traced"
	case Executed:
		return "executed"
	case Reported:
		return "reported"
	case Cleaned:
		return "cleaned"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// FetchError means a suite resource could not be retrieved. It ends the run.
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cannot retrieve %s: %s", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
