// Package document holds the XML tree helpers shared by the manifest, override, report and
// template code. Trees are github.com/beevik/etree documents; this package only adds the few
// operations the harness needs on top: charset-aware parsing, stable traversal while the tree
// is being rewritten, node replacement, namespace stripping and consistent serialization.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

const (
	// ConformanceNamespace is the namespace of the abstract IRP test-authoring vocabulary.
	ConformanceNamespace = "http://www.w3.org/2005/scxml-conformance"

	// SCXMLNamespace is the namespace of concrete SCXML documents.
	SCXMLNamespace = "http://www.w3.org/2005/07/scxml"

	indentSpaces = 2
	xmlDecl      = `version="1.0" encoding="UTF-8"`
)

var errNoParent = errors.New("element has no parent")

// Parse reads an XML document. Non-UTF-8 encodings named in the XML declaration are
// converted on the fly.
func Parse(data []byte) (*etree.Document, error) {
	doc := newDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}

// ReadFile parses the XML document stored at path.
func ReadFile(path string) (*etree.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("malformed XML in %s: %w", path, err)
	}
	return doc, nil
}

// New returns an empty document whose root element has the given tag.
func New(rootTag string) *etree.Document {
	doc := newDocument()
	doc.CreateElement(rootTag)
	return doc
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.WriteSettings.CanonicalAttrVal = true
	return doc
}

// Bytes serializes the document as indented UTF-8 with a fresh XML declaration.
func Bytes(doc *etree.Document) ([]byte, error) {
	for _, t := range append([]etree.Token(nil), doc.Child...) {
		if pi, ok := t.(*etree.ProcInst); ok && pi.Target == "xml" {
			doc.RemoveChild(pi)
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", xmlDecl))
	doc.WriteSettings.CanonicalAttrVal = true
	doc.Indent(indentSpaces)
	return doc.WriteToBytes()
}

// WriteFile serializes the document to path. The file is written to a temporary name in
// the same directory and then renamed, so a reader never sees a partial document.
func WriteFile(doc *etree.Document, path string) error {
	data, err := Bytes(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// String renders a single element (and its subtree) for diagnostics.
func String(e *etree.Element) string {
	doc := newDocument()
	doc.SetRoot(e.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "<" + e.FullTag() + ">"
	}
	return s
}

// Elements returns root and all of its descendant elements in document order. The result
// is a snapshot, so callers may replace or remove elements while iterating over it.
func Elements(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		out = append(out, e)
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return out
}

// InNamespace reports whether the element's resolved namespace URI is ns.
func InNamespace(e *etree.Element, ns string) bool {
	return e.NamespaceURI() == ns
}

// AttrInNamespace reports whether the attribute is prefixed and its prefix resolves to ns.
func AttrInNamespace(a *etree.Attr, ns string) bool {
	return a.Space != "" && a.Space != "xmlns" && a.NamespaceURI() == ns
}

// Replace puts t at old's position in old's parent. old is detached afterward.
func Replace(old *etree.Element, t etree.Token) error {
	parent := old.Parent()
	if parent == nil {
		return fmt.Errorf("cannot replace <%s>: %w", old.FullTag(), errNoParent)
	}
	i := old.Index()
	parent.RemoveChildAt(i)
	parent.InsertChildAt(i, t)
	return nil
}

// StripNamespaces removes every namespace prefix and declaration below root, then declares
// defaultNS as the default namespace on root.
func StripNamespaces(root *etree.Element, defaultNS string) {
	for _, e := range Elements(root) {
		e.Space = ""
		attrs := make([]etree.Attr, 0, len(e.Attr))
		for _, a := range e.Attr {
			if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
				continue
			}
			if a.Space != "xml" {
				a.Space = ""
			}
			attrs = append(attrs, a)
		}
		e.Attr = attrs
	}
	if defaultNS != "" {
		root.Attr = append([]etree.Attr{{Key: "xmlns", Value: defaultNS}}, root.Attr...)
	}
}
