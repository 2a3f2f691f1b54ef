package transform

import "sort"

// The abstract IRP authoring vocabulary. Every name here must have exactly one rule in the
// registry and every rule must be named here; New refuses to build an engine otherwise.
var (
	abstractAttributes = []string{
		"VarEqVar", "VarEqVarStruct",
		"arrayTextVar", "arrayVar",
		"basicHTTPAccessURITarget",
		"compareIDVal",
		"datamodel", "delay", "delayExpr", "delayFromVar",
		"emptyEventData",
		"eventDataFieldValue", "eventDataNamelistValue", "eventDataParamValue",
		"eventExpr", "eventField", "eventFieldHasNoValue", "eventFieldsAreBound",
		"eventName", "eventNameVal", "eventRaw", "eventSendid", "eventType",
		"eventdataVal", "eventvarVal",
		"expr",
		"false",
		"id", "idQuoteVal", "idSystemVarVal", "idVal", "idlocation",
		"illegalArray", "illegalExpr", "illegalItem", "illegalTarget",
		"inState", "index",
		"invalidLocation", "invalidName", "invalidNamelist", "invalidParamLocation",
		"invalidSendType", "invalidSendTypeExpr", "invalidSessionID",
		"isBound", "item",
		"location",
		"name", "nameVarVal", "namelist", "namelistIdVal", "noValue", "nonBoolean",
		"originTypeEq",
		"quoteExpr",
		"scriptBadSrc", "scxmlEventIOLocation", "sendIDExpr", "srcExpr",
		"systemVarExpr", "systemVarIsBound", "systemVarLocation",
		"targetExpr", "targetVar", "targetfail", "targetpass",
		"true", "typeExpr",
		"unboundVar", "unreachableTarget",
		"varChildExpr", "varExpr", "varNonexistentStruct", "varPrefix",
	}

	abstractElements = []string{
		"array123", "concatVars", "contentFoo", "extendArray",
		"fail", "incrementID", "pass", "script", "sendToSender", "sumVars",
	}
)

// AttributeVocabulary returns the abstract attribute names, sorted.
func AttributeVocabulary() []string { return sortedCopy(abstractAttributes) }

// ElementVocabulary returns the abstract element names, sorted.
func ElementVocabulary() []string { return sortedCopy(abstractElements) }

func sortedCopy(names []string) []string {
	ret := append([]string(nil), names...)
	sort.Strings(ret)
	return ret
}
