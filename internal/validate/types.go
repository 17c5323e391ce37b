package validate

import "strings"

// builtinSynonyms maps an upstream declared type to the downstream spellings
// considered compatible with it. Keys and values are matched
// case-insensitively. The table is deliberately small: anything outside it is
// a mismatch, warning-level unless the pair is known dangerous.
var builtinSynonyms = map[string][]string{
	"uuid":      {"string", "uuid"},
	"varchar":   {"string", "text"},
	"text":      {"string", "text"},
	"integer":   {"integer", "number", "int"},
	"int":       {"integer", "number", "int"},
	"bigint":    {"integer", "number", "int"},
	"serial":    {"integer", "number", "int"},
	"boolean":   {"boolean", "bool"},
	"bool":      {"boolean", "bool"},
	"timestamp": {"string", "datetime", "date-time", "timestamp"},
	"date":      {"string", "date"},
	"json":      {"object", "json"},
	"jsonb":     {"object", "json"},
}

var textualTypes = map[string]bool{
	"uuid": true, "varchar": true, "text": true, "string": true, "char": true,
}

var numericTypes = map[string]bool{
	"int": true, "integer": true, "bigint": true, "serial": true,
	"number": true, "float": true, "decimal": true, "numeric": true,
}

// TypeTable answers compatibility questions for declared types across
// layers. Rule packs may extend the synonym table per project.
type TypeTable struct {
	synonyms map[string][]string
}

// NewTypeTable builds a table from the built-in synonyms merged with any
// project extensions. Extension entries append to built-in ones.
func NewTypeTable(extensions map[string][]string) *TypeTable {
	merged := make(map[string][]string, len(builtinSynonyms)+len(extensions))
	for key, values := range builtinSynonyms {
		merged[key] = append([]string(nil), values...)
	}
	for key, values := range extensions {
		lower := strings.ToLower(strings.TrimSpace(key))
		if lower == "" {
			continue
		}
		merged[lower] = append(merged[lower], values...)
	}
	return &TypeTable{synonyms: merged}
}

// Compatible reports whether a downstream type is an accepted rendering of
// an upstream declared type.
func (t *TypeTable) Compatible(upstream, downstream string) bool {
	up := strings.ToLower(strings.TrimSpace(upstream))
	down := strings.ToLower(strings.TrimSpace(downstream))
	if up == down {
		return true
	}
	for _, synonym := range t.synonyms[up] {
		if strings.ToLower(synonym) == down {
			return true
		}
	}
	return false
}

// Dangerous reports whether a type mismatch crosses the numeric/textual
// identifier boundary, the short list of mismatches escalated to errors.
func (t *TypeTable) Dangerous(upstream, downstream string) bool {
	up := strings.ToLower(strings.TrimSpace(upstream))
	down := strings.ToLower(strings.TrimSpace(downstream))
	return (textualTypes[up] && numericTypes[down]) || (numericTypes[up] && textualTypes[down])
}
