// Package layer defines the closed set of architectural layer kinds and the
// static dependency graph between them. The graph is an explicit data
// structure (adjacency list plus priority ordering) so ordering stays
// deterministic and the cycle invariant can be checked in isolation.

package layer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies one architectural layer plan.
type Kind string

const (
	KindSchema         Kind = "schema"
	KindInterface      Kind = "interface"
	KindLogic          Kind = "logic"
	KindPresentation   Kind = "presentation"
	KindInfrastructure Kind = "infrastructure"
)

// KnownKinds returns every recognized kind in priority order.
func KnownKinds() []Kind {
	return []Kind{KindSchema, KindInterface, KindLogic, KindPresentation, KindInfrastructure}
}

// ParseKind validates a user-supplied kind name.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range KnownKinds() {
		if kind == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("layer: unknown kind %q", value)
}

// Info carries the human-facing metadata attached to a kind: the display
// name, what authoring that layer means, and the verification checkpoint
// appended to its execution step.
type Info struct {
	Kind        Kind
	Name        string
	Description string
	Checkpoint  string
}

var infos = map[Kind]Info{
	KindSchema: {
		Kind:        KindSchema,
		Name:        "Schema",
		Description: "Create the data schema and migrations",
		Checkpoint:  "Run migrations, verify schema with database inspection",
	},
	KindInterface: {
		Kind:        KindInterface,
		Name:        "Interface Contract",
		Description: "Define API contracts and request/response shapes",
		Checkpoint:  "Validate contract syntax, generate API documentation",
	},
	KindLogic: {
		Kind:        KindLogic,
		Name:        "Business Logic",
		Description: "Implement backend business logic and API handlers",
		Checkpoint:  "Run unit tests, verify API responses against the contract",
	},
	KindPresentation: {
		Kind:        KindPresentation,
		Name:        "Presentation",
		Description: "Implement frontend logic and API integration",
		Checkpoint:  "Run integration tests, verify API calls",
	},
	KindInfrastructure: {
		Kind:        KindInfrastructure,
		Name:        "Infrastructure",
		Description: "Provision deployment, environments and operational wiring",
		Checkpoint:  "Apply infrastructure changes in a staging environment and verify health",
	},
}

// InfoFor returns the metadata for a kind. Unknown kinds yield a zero Info.
func InfoFor(kind Kind) Info {
	return infos[kind]
}

// fileAliases maps legacy artifact filenames (without extension) to kinds.
// Earlier plan corpora used per-tool names instead of the kind itself.
var fileAliases = map[string]Kind{
	"database":     KindSchema,
	"api_contract": KindInterface,
	"backend":      KindLogic,
	"frontend":     KindPresentation,
	"infra":        KindInfrastructure,
}

// KindForFile resolves an artifact filename to its layer kind using the fixed
// filename table: `<kind>.<ext>` or a recognized legacy alias.
func KindForFile(name string) (Kind, bool) {
	base := strings.ToLower(filepath.Base(name))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if kind, err := ParseKind(stem); err == nil {
		return kind, true
	}
	if kind, ok := fileAliases[stem]; ok {
		return kind, true
	}
	return "", false
}
