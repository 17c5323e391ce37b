package validate

import (
	"fmt"
	"strings"

	"github.com/kingrea/stratum/internal/plan"
)

// pairContext carries one adjacent layer pair through the rule battery.
type pairContext struct {
	upstream   *plan.Plan
	downstream *plan.Plan
	threshold  float64
	types      *TypeTable
}

func (p pairContext) issue(severity Severity, category Category, message string) Issue {
	return Issue{
		Severity:    severity,
		Category:    category,
		Message:     message,
		SourceLayer: p.upstream.Kind,
		TargetLayer: p.downstream.Kind,
	}
}

// namingRule flags corresponding fields whose layers spell the same name in
// different casing conventions. Unrelated names are never forced into a
// match.
func namingRule(p pairContext) []Issue {
	var issues []Issue
	for _, up := range p.upstream.Facts.Fields {
		for _, down := range p.downstream.Facts.Fields {
			if normalize(up.Name) != normalize(down.Name) {
				continue
			}
			if sameSpelling(up.Name, down.Name) {
				continue
			}
			issues = append(issues, p.issue(SeverityWarning, CategoryNaming, fmt.Sprintf(
				"naming convention mismatch: %s declares '%s.%s', %s spells it '%s' (expected '%s')",
				p.upstream.Kind, up.Scope, up.Name, p.downstream.Kind, down.Name,
				suggestedSpelling(p.downstream.Facts.Fields, up.Name))))
		}
	}
	return issues
}

// typeRule checks declared types of corresponding fields against the synonym
// table. Mismatches are warnings unless the pair crosses the numeric/textual
// identifier boundary, which is an error.
func typeRule(p pairContext) []Issue {
	var issues []Issue
	for _, up := range p.upstream.Facts.Fields {
		for _, down := range p.downstream.Facts.Fields {
			if !correspond(up.Name, down.Name, p.threshold) {
				continue
			}
			if p.types.Compatible(up.Type, down.Type) {
				continue
			}
			severity := SeverityWarning
			if p.types.Dangerous(up.Type, down.Type) {
				severity = SeverityError
			}
			issues = append(issues, p.issue(severity, CategoryTypeMismatch, fmt.Sprintf(
				"type mismatch: %s field '%s.%s' (%s) vs %s field '%s.%s' (%s)",
				p.upstream.Kind, up.Scope, up.Name, up.Type,
				p.downstream.Kind, down.Scope, down.Name, down.Type)))
		}
	}
	return issues
}

// coverageRule checks that declared endpoints have downstream handler
// references (uncovered endpoint: error; orphaned handler: warning) and that
// downstream client calls target a declared endpoint (warning).
func coverageRule(p pairContext) []Issue {
	var issues []Issue
	endpoints := p.upstream.Facts.Endpoints
	if len(endpoints) > 0 {
		expected := make(map[string]plan.Endpoint, len(endpoints))
		for _, endpoint := range endpoints {
			expected[strings.ToLower(endpointHandlerName(endpoint))] = endpoint
		}
		for _, endpoint := range endpoints {
			if !handlerCovers(p.downstream.Facts.Handlers, endpointHandlerName(endpoint)) &&
				!declaresEndpoint(p.downstream.Facts.Endpoints, endpoint) {
				issues = append(issues, p.issue(SeverityError, CategoryCoverage, fmt.Sprintf(
					"missing %s handler for declared endpoint %s", p.downstream.Kind, endpoint)))
			}
		}
		for _, handler := range p.downstream.Facts.Handlers {
			if !isEndpointShapedHandler(handler) {
				continue
			}
			if _, ok := expected[strings.ToLower(handler)]; !ok {
				issues = append(issues, p.issue(SeverityWarning, CategoryCoverage, fmt.Sprintf(
					"orphaned handler '%s' has no declared endpoint in the %s layer", handler, p.upstream.Kind)))
			}
		}
	}
	for _, call := range p.downstream.Facts.Calls {
		if len(endpoints) == 0 {
			break
		}
		if !callCovered(endpoints, call) {
			issues = append(issues, p.issue(SeverityWarning, CategoryCoverage, fmt.Sprintf(
				"%s calls '%s' which matches no endpoint declared upstream in %s",
				p.downstream.Kind, call, p.upstream.Kind)))
		}
	}
	return issues
}

// requiredFieldRule demands that a field marked required upstream appears in
// the downstream structures, including when the downstream layer declares no
// fields at all. Degraded layers are exempt: their facts are empty because
// parsing failed, and the parse issue already covers that.
func requiredFieldRule(p pairContext) []Issue {
	if p.downstream.ParseErr != nil {
		return nil
	}
	var issues []Issue
	for _, up := range p.upstream.Facts.Fields {
		if !up.Required {
			continue
		}
		found := false
		for _, down := range p.downstream.Facts.Fields {
			if correspond(up.Name, down.Name, p.threshold) {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, p.issue(SeverityError, CategorySchemaConflict, fmt.Sprintf(
				"required field '%s.%s' from %s is missing in the %s layer",
				up.Scope, up.Name, p.upstream.Kind, p.downstream.Kind)))
		}
	}
	return issues
}

// suggestedSpelling renders a name in the convention the downstream layer
// predominantly uses for its own fields, so the suggestion follows that
// layer's style instead of assuming camelCase everywhere.
func suggestedSpelling(fields []plan.Field, name string) string {
	snake, camel := 0, 0
	for _, field := range fields {
		switch {
		case strings.Contains(field.Name, "_"):
			snake++
		case field.Name != strings.ToLower(field.Name):
			camel++
		}
	}
	if snake > camel {
		return normalize(name)
	}
	return camelCase(name)
}

// endpointHandlerName derives the conventional handler name for an endpoint:
// POST /auth/login → postAuthLogin.
func endpointHandlerName(endpoint plan.Endpoint) string {
	var out strings.Builder
	out.WriteString(strings.ToLower(endpoint.Method))
	for _, part := range strings.Split(strings.Trim(endpoint.Path, "/"), "/") {
		cleaned := strings.Map(func(r rune) rune {
			if r == '{' || r == '}' || r == ':' || r == '-' {
				return -1
			}
			return r
		}, part)
		if cleaned == "" {
			continue
		}
		out.WriteString(strings.ToUpper(cleaned[:1]))
		out.WriteString(cleaned[1:])
	}
	return out.String()
}

func handlerCovers(handlers []string, expected string) bool {
	needle := strings.ToLower(expected)
	for _, handler := range handlers {
		if strings.Contains(strings.ToLower(handler), needle) {
			return true
		}
	}
	return false
}

func declaresEndpoint(endpoints []plan.Endpoint, target plan.Endpoint) bool {
	for _, endpoint := range endpoints {
		if endpoint.Method == target.Method && endpoint.Path == target.Path {
			return true
		}
	}
	return false
}

// isEndpointShapedHandler limits the orphan check to handler names that
// follow the method-prefixed convention; helpers and internal functions are
// not treated as orphans.
func isEndpointShapedHandler(handler string) bool {
	lower := strings.ToLower(handler)
	for _, method := range []string{"get", "post", "put", "patch", "delete"} {
		if strings.HasPrefix(lower, method) && len(handler) > len(method) {
			return true
		}
	}
	return false
}

func callCovered(endpoints []plan.Endpoint, call string) bool {
	normalized := strings.TrimRight(call, "/")
	for _, endpoint := range endpoints {
		path := strings.TrimRight(endpoint.Path, "/")
		if path == normalized || strings.HasPrefix(normalized, path+"/") || strings.HasPrefix(path, normalized+"/") {
			return true
		}
	}
	return false
}
