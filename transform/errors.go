package transform

import "fmt"

// ResidualError means a node or attribute from the abstract vocabulary survived every rule
// pass. The rule table is incomplete for the test corpus; the run must stop.
type ResidualError struct {
	Name      string // local name of the abstract construct
	Attribute bool   // true for an attribute, false for an element
	Node      string // serialized offending element
}

func (e *ResidualError) Error() string {
	kind := "element"
	if e.Attribute {
		kind = "attribute"
	}
	return fmt.Sprintf("no transformation rule for abstract %s %q in %s", kind, e.Name, e.Node)
}

// RuleError means a rule recognized its construct but could not interpret the argument.
type RuleError struct {
	Name string
	Arg  string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q cannot handle argument %q: %s", e.Name, e.Arg, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
