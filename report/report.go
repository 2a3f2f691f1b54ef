// Package report maintains the implementation report: a document with one
// <assert id="..." res="..."/> record per test, updated in place across runs.
package report

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/beevik/etree"

	"github.com/lxsc/irp-harness/framework/document"
)

const (
	VerdictPass = "pass"
	VerdictFail = "fail"

	// DefaultRootTag is used when no report file exists yet.
	DefaultRootTag = "system-report"

	recordTag = "assert"
)

// Record is the id and verdict of one report entry.
type Record struct {
	ID      string
	Verdict string
}

// Report is the in-memory report document.
type Report struct {
	doc *etree.Document
}

// New returns an empty report.
func New(rootTag string) *Report {
	if rootTag == "" {
		rootTag = DefaultRootTag
	}
	return &Report{doc: document.New(rootTag)}
}

// Load reads the report at path. If there is no such file, it returns an empty report
// with the given root tag.
func Load(path, rootTag string) (*Report, error) {
	doc, err := document.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(rootTag), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read report: %w", err)
	}
	return &Report{doc: doc}, nil
}

// RemoveRecords deletes every record whose id is in ids and returns how many were removed.
func (r *Report) RemoveRecords(ids []string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	n := 0
	for _, e := range r.doc.Root().FindElements("//" + recordTag) {
		if drop[e.SelectAttrValue("id", "")] {
			e.Parent().RemoveChild(e)
			n++
		}
	}
	return n
}

// Append adds a copy of record to the end of the report, attributes and children intact.
func (r *Report) Append(record *etree.Element) {
	r.doc.Root().AddChild(record.Copy())
}

// AppendVerdict adds a bare <assert id="id" res="verdict"/> record.
func (r *Report) AppendVerdict(id, verdict string) {
	e := r.doc.Root().CreateElement(recordTag)
	e.CreateAttr("id", id)
	e.CreateAttr("res", verdict)
}

// Records lists the report entries in document order.
func (r *Report) Records() []Record {
	var ret []Record
	for _, e := range r.doc.Root().FindElements("//" + recordTag) {
		ret = append(ret, Record{ID: e.SelectAttrValue("id", ""), Verdict: e.SelectAttrValue("res", "")})
	}
	return ret
}

// Lookup returns the record for id, if any.
func (r *Report) Lookup(id string) (Record, bool) {
	for _, rec := range r.Records() {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// Element returns the record element for id, or nil.
func (r *Report) Element(id string) *etree.Element {
	for _, e := range r.doc.Root().FindElements("//" + recordTag) {
		if e.SelectAttrValue("id", "") == id {
			return e
		}
	}
	return nil
}

// Save writes the report to path, replacing the previous file atomically.
func (r *Report) Save(path string) error {
	if err := document.WriteFile(r.doc, path); err != nil {
		return fmt.Errorf("cannot write report %s: %w", path, err)
	}
	return nil
}
