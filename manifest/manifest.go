// Package manifest reads the IRP test catalog and the locally maintained override table.
package manifest

import (
	"fmt"
	"sort"

	"github.com/lxsc/irp-harness/framework/document"
)

const (
	ConformanceMandatory = "mandatory"
	ConformanceOptional  = "optional"
)

// Descriptor is one test entry of the manifest.
type Descriptor struct {
	ID          string
	Conformance string
	Manual      bool
	Start       string   // entry template URI, relative to the suite base
	Deps        []string // additional resources the entry template refers to
}

// Automatic reports whether the test decides its own verdict through the interpreter's
// exit status.
func (d Descriptor) Automatic() bool { return !d.Manual }

// Mode is "auto" or "manual", as shown in progress output.
func (d Descriptor) Mode() string {
	if d.Manual {
		return "manual"
	}
	return "auto"
}

// Manifest is the catalog of all tests, in document order.
type Manifest struct {
	Tests []Descriptor
}

// Parse reads a manifest document. Every <test> element anywhere in the document is a
// descriptor; it must have an id and a <start uri="..."/> child.
func Parse(data []byte) (*Manifest, error) {
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("malformed manifest: %w", err)
	}
	m := &Manifest{}
	for _, t := range doc.Root().FindElements("//test") {
		d := Descriptor{
			ID:          t.SelectAttrValue("id", ""),
			Conformance: t.SelectAttrValue("conformance", ConformanceMandatory),
			Manual:      t.SelectAttrValue("manual", "") != "false",
		}
		if d.ID == "" {
			return nil, fmt.Errorf("manifest test without id: %s", document.String(t))
		}
		start := t.SelectElement("start")
		if start == nil || start.SelectAttrValue("uri", "") == "" {
			return nil, fmt.Errorf("manifest test %s has no start uri", d.ID)
		}
		d.Start = start.SelectAttrValue("uri", "")
		for _, dep := range t.SelectElements("dep") {
			if uri := dep.SelectAttrValue("uri", ""); uri != "" {
				d.Deps = append(d.Deps, uri)
			}
		}
		m.Tests = append(m.Tests, d)
	}
	return m, nil
}

// Has reports whether the manifest lists a test with this id.
func (m *Manifest) Has(id string) bool {
	for _, t := range m.Tests {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Select returns the tests to run, in run order: optional tests and tests rejected by
// match are dropped, automatic tests come before manual ones, and each group is ordered by
// id. A nil match accepts everything.
func (m *Manifest) Select(match func(id string) bool) []Descriptor {
	var ret []Descriptor
	for _, t := range m.Tests {
		if t.Conformance == ConformanceOptional {
			continue
		}
		if match != nil && !match(t.ID) {
			continue
		}
		ret = append(ret, t)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Manual != ret[j].Manual {
			return !ret[i].Manual
		}
		return ret[i].ID < ret[j].ID
	})
	return ret
}
