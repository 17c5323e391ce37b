package layer

import (
	"errors"
	"testing"
)

func TestParseDefinitionYAML(t *testing.T) {
	payload := `version: 1
layers:
  - kind: schema
    priority: 1
  - kind: logic
    priority: 2
    depends_on: [schema]
    checkpoint: "diff the generated handlers against the contract"
`
	graph, checkpoints, err := ParseDefinitionYAML([]byte(payload))
	if err != nil {
		t.Fatalf("parse definition: %v", err)
	}
	order, err := graph.TopoOrder()
	if err != nil {
		t.Fatalf("topo order: %v", err)
	}
	if len(order) != 2 || order[0] != KindSchema || order[1] != KindLogic {
		t.Fatalf("unexpected order: %v", order)
	}
	if checkpoints[KindLogic] != "diff the generated handlers against the contract" {
		t.Fatalf("checkpoint override missing: %v", checkpoints)
	}
}

func TestParseDefinitionYAMLRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", "   \n"},
		{"bad-version", "version: 2\nlayers:\n  - kind: schema\n    priority: 1\n"},
		{"no-layers", "version: 1\nlayers: []\n"},
		{"unknown-kind", "version: 1\nlayers:\n  - kind: widgets\n    priority: 1\n"},
		{"duplicate", "version: 1\nlayers:\n  - kind: schema\n    priority: 1\n  - kind: schema\n    priority: 2\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, _, err := ParseDefinitionYAML([]byte(test.payload)); err == nil {
				t.Fatalf("expected error for %s", test.name)
			}
		})
	}
}

func TestParseDefinitionYAMLSurfacesCycles(t *testing.T) {
	payload := `version: 1
layers:
  - kind: schema
    priority: 1
    depends_on: [logic]
  - kind: logic
    priority: 2
    depends_on: [schema]
`
	_, _, err := ParseDefinitionYAML([]byte(payload))
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}
