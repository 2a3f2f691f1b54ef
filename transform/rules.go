package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// The concrete dialect is SCXML with the Lua datamodel. Test variables named by number in
// the templates live in globals called testvarN.
const (
	varPrefix  = "testvar"
	delayScale = 100 // milliseconds per unit of conf:delay
)

type ruleKind int

const (
	constantRule ruleKind = iota
	parameterRule
	operatorRule
	splitRule
	unitRule
)

func (k ruleKind) String() string {
	switch k {
	case constantRule:
		return "constant"
	case parameterRule:
		return "parameter"
	case operatorRule:
		return "operator"
	case splitRule:
		return "split"
	case unitRule:
		return "unit"
	default:
		return "unknown"
	}
}

// attributeRule maps the literal argument of one abstract attribute to a concrete attribute.
type attributeRule struct {
	kind   ruleKind
	attr   string
	expand func(arg string) (string, error)
}

func (r attributeRule) apply(arg string) (string, string, error) {
	v, err := r.expand(arg)
	return r.attr, v, err
}

func constant(attr, value string) attributeRule {
	return attributeRule{constantRule, attr, func(string) (string, error) { return value, nil }}
}

// param interpolates the argument into format wherever %[1]s appears.
func param(attr, format string) attributeRule {
	return attributeRule{parameterRule, attr, func(arg string) (string, error) {
		return fmt.Sprintf(format, arg), nil
	}}
}

type operand func(string) string

func variable(s string) string  { return varPrefix + s }
func literal(s string) string   { return s }
func quoted(s string) string    { return "'" + s + "'" }
func eventData(s string) string { return "_event.data['" + varPrefix + s + "']" }

var (
	operatorToken       = regexp.MustCompile(`[=<>]+`)
	quotedOperatorToken = regexp.MustCompile(`[=<>]=?`)
	whitespace          = regexp.MustCompile(`\s+`)
	nonDigits           = regexp.MustCompile(`\D+`)

	errNoOperator   = errors.New("no comparison operator")
	errBadOperator  = errors.New("unsupported comparison operator")
	errOperandCount = errors.New("expected exactly two operands")
)

// comparisonOperator maps an abstract operator to the Lua one.
func comparisonOperator(op string) (string, error) {
	switch op {
	case "=":
		return "==", nil
	case "<", ">", "<=", ">=":
		return op, nil
	default:
		return "", fmt.Errorf("%w %q", errBadOperator, op)
	}
}

// compare splits "left OP right" at the first operator token.
func compare(attr string, token *regexp.Regexp, left, right operand) attributeRule {
	return attributeRule{operatorRule, attr, func(arg string) (string, error) {
		loc := token.FindStringIndex(arg)
		if loc == nil {
			return "", errNoOperator
		}
		op, err := comparisonOperator(arg[loc[0]:loc[1]])
		if err != nil {
			return "", err
		}
		return left(arg[:loc[0]]) + " " + op + " " + right(arg[loc[1]:]), nil
	}}
}

// split takes two identifiers separated by sep; format refers to them as %[1]s and %[2]s.
func split(attr string, sep *regexp.Regexp, format string) attributeRule {
	return attributeRule{splitRule, attr, func(arg string) (string, error) {
		var ids []string
		for _, s := range sep.Split(strings.TrimSpace(arg), -1) {
			if s != "" {
				ids = append(ids, s)
			}
		}
		if len(ids) != 2 {
			return "", errOperandCount
		}
		return fmt.Sprintf(format, ids[0], ids[1]), nil
	}}
}

func delayUnits(attr string) attributeRule {
	return attributeRule{unitRule, attr, func(arg string) (string, error) {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%dms", delayScale*n), nil
	}}
}

var attributeRules = map[string]attributeRule{
	// conditions
	"true":                 constant("cond", "true"),
	"false":                constant("cond", "false"),
	"emptyEventData":       constant("cond", "_event.data == nil"),
	"nonBoolean":           constant("cond", "@@@@@@@@@@@@@@@@"),
	"eventFieldsAreBound":  constant("cond", "_event.name~=nil and _event.type~=nil and _event.sendid~=nil and _event.origin~=nil and _event.invokeid~=nil"),
	"eventdataVal":         param("cond", "_event.data == %[1]s"),
	"eventNameVal":         param("cond", "_event.name == '%[1]s'"),
	"originTypeEq":         param("cond", "_event.origintype == '%[1]s'"),
	"eventFieldHasNoValue": param("cond", "_event.%[1]s == ''"),
	"isBound":              param("cond", "testvar%[1]s ~= nil"),
	"inState":              param("cond", "In('%[1]s')"),
	"unboundVar":           param("cond", "testvar%[1]s==nil"),
	"noValue":              param("cond", "testvar%[1]s==nil or testvar%[1]s==''"),
	"nameVarVal":           param("cond", "_name == '%[1]s'"),
	"systemVarIsBound":     param("cond", "%[1]s ~= nil"),
	"idQuoteVal":           compare("cond", quotedOperatorToken, variable, quoted),
	"idVal":                compare("cond", operatorToken, variable, literal),
	"namelistIdVal":        compare("cond", operatorToken, variable, literal),
	"idSystemVarVal":       compare("cond", operatorToken, variable, literal),
	"compareIDVal":         compare("cond", operatorToken, variable, variable),
	"eventvarVal":          compare("cond", operatorToken, eventData, literal),
	"varPrefix":            split("cond", whitespace, "string.sub(testvar%[2]s,1,string.len(testvar%[1]s))==testvar%[1]s"),
	"VarEqVar":             split("cond", whitespace, "testvar%[1]s==testvar%[2]s"),
	"VarEqVarStruct":       split("cond", nonDigits, "testvar%[1]s == testvar%[2]s"),

	// document and timing
	"datamodel":    constant("datamodel", "lua"),
	"delay":        delayUnits("delay"),
	"delayExpr":    param("delayexpr", "testvar%[1]s"),
	"delayFromVar": param("delayexpr", "testvar%[1]s"),

	// value expressions
	"arrayVar":               param("array", "testvar%[1]s"),
	"arrayTextVar":           param("array", "testvar%[1]s"),
	"eventExpr":              param("eventexpr", "testvar%[1]s"),
	"eventDataFieldValue":    param("expr", "_event.data.%[1]s"),
	"eventDataNamelistValue": param("expr", "_event.data.testvar%[1]s"),
	"eventDataParamValue":    param("expr", "_event.data.%[1]s"),
	"eventField":             param("expr", "_event.%[1]s"),
	"eventName":              constant("expr", "_event.name"),
	"eventSendid":            constant("expr", "_event.sendid"),
	"eventType":              constant("expr", "_event.type"),
	"eventRaw":               constant("expr", "_event:inspect(true)"),
	"expr":                   param("expr", "%[1]s"),
	"illegalArray":           constant("expr", "7"),
	"illegalExpr":            constant("expr", "!"),
	"invalidSendTypeExpr":    constant("expr", "27"),
	"invalidSessionID":       constant("expr", "-1"),
	"varExpr":                param("expr", "testvar%[1]s"),
	"varChildExpr":           param("expr", "testvar%[1]s"),
	"quoteExpr":              param("expr", "'%[1]s'"),
	"systemVarExpr":          param("expr", "%[1]s"),
	"scxmlEventIOLocation":   constant("expr", "FIXME"),
	"varNonexistentStruct":   param("expr", "testvar%[1]s.nonono"),

	// locations and names
	"id":                   param("id", "testvar%[1]s"),
	"idlocation":           param("idlocation", "'testvar%[1]s'"),
	"index":                param("index", "testvar%[1]s"),
	"item":                 param("item", "testvar%[1]s"),
	"illegalItem":          constant("item", "_no"),
	"location":             param("location", "testvar%[1]s"),
	"invalidLocation":      constant("location", ""),
	"invalidParamLocation": constant("location", ""),
	"systemVarLocation":    param("location", "%[1]s"),
	"name":                 param("name", "testvar%[1]s"),
	"invalidName":          constant("name", ""),
	"namelist":             param("namelist", "testvar%[1]s"),
	"invalidNamelist":      constant("namelist", ""),

	// send and invoke plumbing
	"sendIDExpr":               param("sendidexpr", "testvar%[1]s"),
	"srcExpr":                  param("srcexpr", "testvar%[1]s"),
	"scriptBadSrc":             constant("src", "-badfile-"),
	"targetpass":               constant("target", "pass"),
	"targetfail":               constant("target", "fail"),
	"illegalTarget":            constant("target", "xxxxxxxxx"),
	"unreachableTarget":        constant("target", "FIXME"),
	"targetVar":                param("targetexpr", "testvar%[1]s"),
	"targetExpr":               param("targetexpr", "testvar%[1]s"),
	"basicHTTPAccessURITarget": constant("targetexpr", "FIXME"),
	"invalidSendType":          constant("type", "27"),
	"typeExpr":                 param("typeexpr", "testvar%[1]s"),
}

// elementRule builds the concrete replacement for an abstract element.
type elementRule func(e *etree.Element) (etree.Token, error)

func final(id string) elementRule {
	return func(*etree.Element) (etree.Token, error) {
		f := etree.NewElement("final")
		f.CreateAttr("id", id)
		return f, nil
	}
}

func assign(location, expr string) *etree.Element {
	a := etree.NewElement("assign")
	a.CreateAttr("location", location)
	a.CreateAttr("expr", expr)
	return a
}

func requiredAttr(e *etree.Element, key string) (string, error) {
	a := e.SelectAttr(key)
	if a == nil {
		return "", &RuleError{Name: e.Tag, Err: fmt.Errorf("missing attribute %q", key)}
	}
	return a.Value, nil
}

// terminalRules run before every other pass.
var terminalRules = map[string]elementRule{
	"pass": final("pass"),
	"fail": final("fail"),
}

// structuralRules run after all attribute rules.
var structuralRules = map[string]elementRule{
	"incrementID": func(e *etree.Element) (etree.Token, error) {
		id, err := requiredAttr(e, "id")
		if err != nil {
			return nil, err
		}
		v := variable(id)
		return assign(v, v+"+1"), nil
	},
	"array123": func(*etree.Element) (etree.Token, error) {
		return etree.NewText("{1,2,3}"), nil
	},
	"extendArray": func(e *etree.Element) (etree.Token, error) {
		id, err := requiredAttr(e, "id")
		if err != nil {
			return nil, err
		}
		v := variable(id)
		return assign(v, fmt.Sprintf(
			"(function() local t2={}; for i=1,#%[1]s do t2[i]=%[1]s[i] end t2[#t2+1]=4 return t2 end)()", v)), nil
	},
	"sumVars":    binaryAssign("+"),
	"concatVars": binaryAssign(".."),
	"contentFoo": func(*etree.Element) (etree.Token, error) {
		c := etree.NewElement("content")
		c.CreateAttr("expr", "'foo'")
		return c, nil
	},
	"script": func(*etree.Element) (etree.Token, error) {
		s := etree.NewElement("script")
		s.SetText("testvar1 = 1")
		return s, nil
	},
	"sendToSender": func(e *etree.Element) (etree.Token, error) {
		name, err := requiredAttr(e, "name")
		if err != nil {
			return nil, err
		}
		s := etree.NewElement("send")
		s.CreateAttr("event", name)
		s.CreateAttr("targetexpr", "_event.origin")
		s.CreateAttr("typeexpr", "_event.origintype")
		return s, nil
	},
}

// binaryAssign stores id1 <op> id2 back into id1.
func binaryAssign(op string) elementRule {
	return func(e *etree.Element) (etree.Token, error) {
		id1, err := requiredAttr(e, "id1")
		if err != nil {
			return nil, err
		}
		id2, err := requiredAttr(e, "id2")
		if err != nil {
			return nil, err
		}
		return assign(variable(id1), variable(id1)+op+variable(id2)), nil
	}
}
