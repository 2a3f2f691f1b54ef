package conformance

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter decides whether the test with a given id should run.
type Filter func(id string) bool

type RegexFilters struct {
	MustMatch    IDPatternList
	MustNotMatch IDPatternList
}

// Match is true if id matches some MustMatch pattern (or there are none) and no
// MustNotMatch pattern.
func (r RegexFilters) Match(id string) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id)) &&
		!r.MustNotMatch.AnyMatch(id)
}

// IDPatternList is a list of regular expressions matched against test ids. It implements
// the flag value interface, so a flag can be repeated to add patterns.
type IDPatternList []*regexp.Regexp

func (l IDPatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (l *IDPatternList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	*l = append(*l, rx)
	return nil
}

func (l *IDPatternList) Type() string { return "regex" }

func (l IDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l IDPatternList) AnyMatch(id string) bool {
	for _, p := range l {
		if p.MatchString(id) {
			return true
		}
	}
	return false
}

// AddExact adds a pattern matching exactly id.
func (l *IDPatternList) AddExact(id string) error {
	return l.Set("^" + regexp.QuoteMeta(id) + "$")
}

func PrintFilterDescription(filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Println("Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Printf("  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Printf("  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Println()
	}
}
