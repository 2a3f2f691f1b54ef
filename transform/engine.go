// Package transform rewrites abstract IRP test templates into concrete SCXML documents for
// the Lua datamodel.
//
// A template mixes SCXML with constructs from the conformance namespace. Each construct is
// handled by exactly one rule, looked up by its local name:
//
//   - conf:pass and conf:fail become <final id="pass"/> and <final id="fail"/>.
//   - Attributes such as conf:idVal="1=5" become concrete attributes such as
//     cond="testvar1 == 5".
//   - Elements such as <conf:incrementID id="1"/> become concrete subtrees. These run after
//     every attribute rule.
//
// Anything from the conformance namespace left after these passes is a *ResidualError.
package transform

import (
	"errors"
	"fmt"
	"sort"

	"github.com/beevik/etree"

	"github.com/lxsc/irp-harness/framework/document"
)

// Engine applies the rule registry to template documents. It holds no per-document state.
type Engine struct {
	attributes map[string]attributeRule
	terminals  map[string]elementRule
	structural map[string]elementRule
}

// New builds an engine from the built-in registry after checking that the registry and the
// declared abstract vocabulary cover each other exactly.
func New() (*Engine, error) {
	e := &Engine{
		attributes: attributeRules,
		terminals:  terminalRules,
		structural: structuralRules,
	}
	if err := e.checkCoverage(abstractAttributes, abstractElements); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) checkCoverage(attrNames, elemNames []string) error {
	var problems []string
	known := make(map[string]bool)
	for _, name := range attrNames {
		known["@"+name] = true
		if _, ok := e.attributes[name]; !ok {
			problems = append(problems, "no rule for attribute "+name)
		}
	}
	for _, name := range elemNames {
		known[name] = true
		_, t := e.terminals[name]
		_, s := e.structural[name]
		switch {
		case !t && !s:
			problems = append(problems, "no rule for element "+name)
		case t && s:
			problems = append(problems, "two rules for element "+name)
		}
	}
	for name := range e.attributes {
		if !known["@"+name] {
			problems = append(problems, "attribute rule outside vocabulary: "+name)
		}
	}
	for _, rules := range []map[string]elementRule{e.terminals, e.structural} {
		for name := range rules {
			if !known[name] {
				problems = append(problems, "element rule outside vocabulary: "+name)
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("transformation registry does not match vocabulary: %v", problems)
	}
	return nil
}

// Transform rewrites doc in place and returns it. On error the document may be partially
// rewritten and must not be used.
func (e *Engine) Transform(doc *etree.Document) (*etree.Document, error) {
	root := doc.Root()
	if root == nil {
		return nil, errors.New("template has no root element")
	}
	if err := e.replaceElements(root, e.terminals); err != nil {
		return nil, err
	}
	if err := e.applyAttributeRules(root); err != nil {
		return nil, err
	}
	if err := e.replaceElements(root, e.structural); err != nil {
		return nil, err
	}
	if err := checkResidue(root); err != nil {
		return nil, err
	}
	document.StripNamespaces(root, document.SCXMLNamespace)
	return doc, nil
}

func (e *Engine) applyAttributeRules(root *etree.Element) error {
	for _, el := range document.Elements(root) {
		for _, a := range append([]etree.Attr(nil), el.Attr...) {
			if !document.AttrInNamespace(&a, document.ConformanceNamespace) {
				continue
			}
			rule, ok := e.attributes[a.Key]
			if !ok {
				continue
			}
			name, value, err := rule.apply(a.Value)
			if err != nil {
				return &RuleError{Name: a.Key, Arg: a.Value, Err: err}
			}
			el.RemoveAttr(a.FullKey())
			el.CreateAttr(name, value)
		}
	}
	return nil
}

func (e *Engine) replaceElements(root *etree.Element, rules map[string]elementRule) error {
	for _, el := range document.Elements(root) {
		if !document.InNamespace(el, document.ConformanceNamespace) {
			continue
		}
		rule, ok := rules[el.Tag]
		if !ok {
			continue
		}
		replacement, err := rule(el)
		if err != nil {
			return err
		}
		if err := document.Replace(el, replacement); err != nil {
			return err
		}
	}
	return nil
}

// checkResidue reports the first abstract attribute, or failing that the first abstract
// element, still present under root.
func checkResidue(root *etree.Element) error {
	elements := document.Elements(root)
	for _, el := range elements {
		for i := range el.Attr {
			if document.AttrInNamespace(&el.Attr[i], document.ConformanceNamespace) {
				return &ResidualError{Name: el.Attr[i].Key, Attribute: true, Node: document.String(el)}
			}
		}
	}
	for _, el := range elements {
		if document.InNamespace(el, document.ConformanceNamespace) {
			return &ResidualError{Name: el.Tag, Node: document.String(el)}
		}
	}
	return nil
}
