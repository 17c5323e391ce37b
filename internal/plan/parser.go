package plan

import (
	"regexp"
	"strings"

	"github.com/kingrea/stratum/internal/layer"
)

// Extractor distills raw plan text into facts. The store accepts any
// implementation so the heuristic parser can be swapped out in tests or when
// an authoring tool starts emitting structured plans.
type Extractor interface {
	Extract(kind layer.Kind, body string) FactSet
}

// heuristicExtractor is the default pattern-based extractor. The patterns
// mirror the conventions the plan-authoring tools actually emit: scope
// headings with bulleted field lists, `METHOD /path` endpoint lines, handler
// and client-call snippets, and file paths in backticks.
type heuristicExtractor struct{}

// NewHeuristicExtractor returns the default pattern-based extractor.
func NewHeuristicExtractor() Extractor {
	return heuristicExtractor{}
}

var (
	scopeHeadingPattern = regexp.MustCompile(`(?i)^#{2,4}\s+(?:table|schema|model|entity):\s+` + "`?" + `(\w+)` + "`?")
	scopeSuffixPattern  = regexp.MustCompile(`(?i)^#{2,4}\s+` + "`?" + `(\w+)` + "`?" + `\s+table\b`)
	scopeBlockPattern   = regexp.MustCompile(`^\s*(\w+(?:Schema|Request|Response)):`)

	fieldBulletPattern   = regexp.MustCompile(`^\s*[-*]\s+` + "`?" + `(\w+)` + "`?" + `:\s*([\w\[\]\-]+)`)
	fieldIndentedPattern = regexp.MustCompile(`^\s{2,}(\w+):\s*(?:type:\s*)?([\w\-]+)\s*$`)
	requiredPattern      = regexp.MustCompile(`(?i)\brequired\b`)

	endpointPattern = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE)\s+(/[\w/\-{}:]*)`)

	handlerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhandler:\s*` + "`?" + `(\w+)` + "`?"),
		regexp.MustCompile(`\bfunc\s+(\w+)`),
		regexp.MustCompile(`(?i)\bdef\s+(\w+)`),
		regexp.MustCompile(`(?i)\bfunction\s+(\w+)`),
	}

	callPatterns = []*regexp.Regexp{
		regexp.MustCompile(`fetch\s*\(['"]([^'"]+)['"]`),
		regexp.MustCompile(`(?:axios|api|client)\.(?:get|post|put|patch|delete)\s*\(['"]([^'"]+)['"]`),
	}

	filePattern = regexp.MustCompile("`" + `([\w./\-]+\.(?:go|ts|tsx|js|jsx|py|sql|yml|yaml|json|md|tf|css|html))` + "`")
)

// Extract walks the document line by line, tracking the current field scope
// and collecting every category it recognizes. Lines that match nothing are
// ignored.
func (heuristicExtractor) Extract(kind layer.Kind, body string) FactSet {
	var facts FactSet
	scope := ""
	seenEndpoints := map[string]bool{}
	seenHandlers := map[string]bool{}
	seenCalls := map[string]bool{}
	seenFiles := map[string]bool{}
	for _, line := range strings.Split(body, "\n") {
		if match := scopeHeadingPattern.FindStringSubmatch(line); match != nil {
			scope = match[1]
			continue
		}
		if match := scopeSuffixPattern.FindStringSubmatch(line); match != nil {
			scope = match[1]
			continue
		}
		if match := scopeBlockPattern.FindStringSubmatch(line); match != nil {
			scope = match[1]
			continue
		}
		if strings.HasPrefix(line, "#") {
			// Any other heading closes the current field scope.
			scope = ""
		}
		if scope != "" {
			if field, ok := matchField(scope, line); ok {
				facts.Fields = append(facts.Fields, field)
			}
		}
		for _, match := range endpointPattern.FindAllStringSubmatch(line, -1) {
			endpoint := Endpoint{Method: strings.ToUpper(match[1]), Path: match[2]}
			if key := endpoint.String(); !seenEndpoints[key] {
				seenEndpoints[key] = true
				facts.Endpoints = append(facts.Endpoints, endpoint)
			}
		}
		for _, pattern := range handlerPatterns {
			for _, match := range pattern.FindAllStringSubmatch(line, -1) {
				if !seenHandlers[match[1]] {
					seenHandlers[match[1]] = true
					facts.Handlers = append(facts.Handlers, match[1])
				}
			}
		}
		for _, pattern := range callPatterns {
			for _, match := range pattern.FindAllStringSubmatch(line, -1) {
				if !seenCalls[match[1]] {
					seenCalls[match[1]] = true
					facts.Calls = append(facts.Calls, match[1])
				}
			}
		}
		for _, match := range filePattern.FindAllStringSubmatch(line, -1) {
			if !seenFiles[match[1]] {
				seenFiles[match[1]] = true
				facts.ReferencedFiles = append(facts.ReferencedFiles, match[1])
			}
		}
	}
	return facts
}

func matchField(scope, line string) (Field, bool) {
	match := fieldBulletPattern.FindStringSubmatch(line)
	if match == nil {
		match = fieldIndentedPattern.FindStringSubmatch(line)
	}
	if match == nil {
		return Field{}, false
	}
	name, typ := match[1], match[2]
	if isFieldNoise(name) {
		return Field{}, false
	}
	return Field{
		Scope:    scope,
		Name:     name,
		Type:     typ,
		Required: requiredPattern.MatchString(line),
	}, true
}

// isFieldNoise filters bullet keys that look like fields but are document
// prose (e.g. "- Note: ..." or "- type: object" headers).
func isFieldNoise(name string) bool {
	switch strings.ToLower(name) {
	case "note", "notes", "todo", "type", "properties", "description":
		return true
	}
	return false
}
