// Package plan loads layer-plan documents and distills them into structured
// facts. Plans are semi-structured markdown produced by separate authoring
// tools, so extraction is heuristic and defensive: unrecognized sections are
// ignored and a malformed file degrades to empty facts instead of aborting
// the run.
package plan

import (
	"fmt"

	"github.com/kingrea/stratum/internal/layer"
)

// Plan is one loaded layer artifact. Immutable after Load returns.
type Plan struct {
	Kind     layer.Kind
	Source   string
	RawText  string
	Meta     *Metadata
	Facts    FactSet
	ParseErr *ParseError
}

// Metadata is the optional `stratum:` frontmatter envelope a plan document
// may carry to identify the tool that produced it.
type Metadata struct {
	Layer    string
	Tool     string
	Version  string
	Produced string
}

// FactSet groups the extracted facts by category. Order within each category
// follows document order so downstream output stays deterministic.
type FactSet struct {
	Fields          []Field
	Endpoints       []Endpoint
	Handlers        []string
	Calls           []string
	ReferencedFiles []string
}

// Empty reports whether extraction found nothing at all.
func (f FactSet) Empty() bool {
	return len(f.Fields) == 0 && len(f.Endpoints) == 0 && len(f.Handlers) == 0 &&
		len(f.Calls) == 0 && len(f.ReferencedFiles) == 0
}

// Field is a declared data field within a named scope (a table, schema or
// request/response block).
type Field struct {
	Scope    string
	Name     string
	Type     string
	Required bool
}

// Endpoint is a declared or referenced HTTP operation.
type Endpoint struct {
	Method string
	Path   string
}

// String renders the endpoint the way plan documents spell it.
func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// NotFoundError reports a mandatory layer with no artifact in the plans
// directory. It aborts the run before validation.
type NotFoundError struct {
	Kind layer.Kind
	Dir  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plan: mandatory layer %s has no artifact in %s", e.Kind, e.Dir)
}

// ParseError wraps a per-file parsing failure. It is attached to the layer's
// plan as a degraded result rather than returned, so downstream stages can
// proceed with partial information and surface it as a validation issue.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("plan: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
