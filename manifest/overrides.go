package manifest

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/beevik/etree"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/lxsc/irp-harness/framework/document"
)

// Override is a verdict recorded by hand for one test. When present it replaces execution.
type Override struct {
	ID      string
	Verdict string
	Record  *etree.Element // the <assert> element, copied into the report as is
}

// Overrides maps test ids to their overrides.
type Overrides map[string]Override

// LoadOverrides reads the override table at path. A missing file is an empty table.
func LoadOverrides(path string) (Overrides, error) {
	doc, err := document.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Overrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read override table: %w", err)
	}
	return overridesFrom(doc)
}

// ParseOverrides reads an override table from memory.
func ParseOverrides(data []byte) (Overrides, error) {
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("malformed override table: %w", err)
	}
	return overridesFrom(doc)
}

// overridesFrom collects every <assert id="..."> element. The first record for an id wins.
func overridesFrom(doc *etree.Document) (Overrides, error) {
	ret := make(Overrides)
	for _, a := range doc.Root().FindElements("//assert") {
		id := a.SelectAttrValue("id", "")
		if id == "" {
			return nil, fmt.Errorf("override without id: %s", document.String(a))
		}
		if _, seen := ret[id]; seen {
			continue
		}
		ret[id] = Override{
			ID:      id,
			Verdict: a.SelectAttrValue("res", ""),
			Record:  a.Copy(),
		}
	}
	return ret, nil
}

// Lookup returns the override for id, if there is one.
func (o Overrides) Lookup(id string) (Override, bool) {
	ov, ok := o[id]
	return ov, ok
}

// Orphans lists, sorted, the ids that have an override but no manifest entry. Such entries
// are usually typos; they never take effect.
func (o Overrides) Orphans(m *Manifest) []string {
	known := make(map[string]bool, len(m.Tests))
	for _, t := range m.Tests {
		known[t.ID] = true
	}
	ids := maps.Keys(o)
	slices.Sort(ids)
	var ret []string
	for _, id := range ids {
		if !known[id] {
			ret = append(ret, id)
		}
	}
	return ret
}
