// Package orchestrate turns the set of present layers into a deterministic
// linear execution order with per-step checkpoints. Ordering comes from the
// static layer graph induced on the present kinds; the validator's findings
// never influence it.

package orchestrate

import (
	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/plan"
)

// Step is one entry of the execution order. Order is 1-based.
type Step struct {
	Order        int          `json:"order" yaml:"order"`
	Kind         layer.Kind   `json:"layer" yaml:"layer"`
	Source       string       `json:"source" yaml:"source"`
	Description  string       `json:"description" yaml:"description"`
	Dependencies []layer.Kind `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Checkpoint   string       `json:"checkpoint" yaml:"checkpoint"`
}

// Config carries the orchestrator's inputs: the static graph and optional
// per-kind checkpoint overrides (from a custom graph definition).
type Config struct {
	Graph       *layer.Graph
	Checkpoints map[layer.Kind]string
}

// Orchestrator computes execution orders over the configured graph.
type Orchestrator struct {
	graph       *layer.Graph
	checkpoints map[layer.Kind]string
}

// New builds an orchestrator, defaulting to the built-in graph.
func New(cfg Config) *Orchestrator {
	graph := cfg.Graph
	if graph == nil {
		graph = layer.DefaultGraph()
	}
	return &Orchestrator{graph: graph, checkpoints: cfg.Checkpoints}
}

// Order produces the execution steps for the loaded plans. The graph is
// induced on the present kinds, topologically sorted with the declared
// priority as tie-break, and each step carries its direct predecessors
// within the induced subgraph. A plan whose kind the configured graph does
// not declare is skipped; it has no place in the ordering.
//
// The only error path is a cyclic graph, which is a configuration defect
// surfaced as layer.CycleError rather than truncated output.
func (o *Orchestrator) Order(plans map[layer.Kind]*plan.Plan) ([]Step, error) {
	present := make([]layer.Kind, 0, len(plans))
	for kind := range plans {
		present = append(present, kind)
	}
	induced := o.graph.Induce(present)
	ordered, err := induced.TopoOrder()
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, len(ordered))
	for idx, kind := range ordered {
		info := layer.InfoFor(kind)
		checkpoint := info.Checkpoint
		if override, ok := o.checkpoints[kind]; ok {
			checkpoint = override
		}
		steps = append(steps, Step{
			Order:        idx + 1,
			Kind:         kind,
			Source:       plans[kind].Source,
			Description:  info.Description,
			Dependencies: induced.Dependencies(kind),
			Checkpoint:   checkpoint,
		})
	}
	return steps, nil
}
