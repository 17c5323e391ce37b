// Package unified folds the loaded plans, the validation report and the
// execution order into a single unified plan artifact. Synthesis is a pure
// function of its inputs: the caller supplies the generation timestamp, and
// identical inputs produce a byte-identical rendering.
package unified

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/orchestrate"
	"github.com/kingrea/stratum/internal/plan"
	"github.com/kingrea/stratum/internal/validate"
)

// ManifestEntry is one referenced file with the layers that mention it.
type ManifestEntry struct {
	Path   string       `json:"path" yaml:"path"`
	Layers []layer.Kind `json:"layers" yaml:"layers"`
}

// Source pairs a layer kind with the plan file it was loaded from.
type Source struct {
	Kind layer.Kind `json:"layer" yaml:"layer"`
	File string     `json:"file" yaml:"file"`
}

// UnifiedPlan is the synthesized artifact.
type UnifiedPlan struct {
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
	Sources     []Source           `json:"sources" yaml:"sources"`
	Validation  validate.Report    `json:"validation" yaml:"validation"`
	Steps       []orchestrate.Step `json:"steps" yaml:"steps"`
	Files       []ManifestEntry    `json:"files" yaml:"files"`
}

// Synthesize combines the pipeline outputs into a unified plan. Inputs are
// not mutated; the file manifest is the deduplicated union of every layer's
// referenced files, sorted by path, each annotated with its contributing
// layers in kind order.
func Synthesize(plans map[layer.Kind]*plan.Plan, report validate.Report, steps []orchestrate.Step, generatedAt time.Time) *UnifiedPlan {
	sources := make([]Source, 0, len(plans))
	for kind, p := range plans {
		sources = append(sources, Source{Kind: kind, File: p.Source})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Kind < sources[j].Kind })

	byPath := make(map[string]map[layer.Kind]bool)
	for kind, p := range plans {
		for _, path := range p.Facts.ReferencedFiles {
			if byPath[path] == nil {
				byPath[path] = make(map[layer.Kind]bool)
			}
			byPath[path][kind] = true
		}
	}
	files := make([]ManifestEntry, 0, len(byPath))
	for path, kinds := range byPath {
		entry := ManifestEntry{Path: path}
		for kind := range kinds {
			entry.Layers = append(entry.Layers, kind)
		}
		sort.Slice(entry.Layers, func(i, j int) bool { return entry.Layers[i] < entry.Layers[j] })
		files = append(files, entry)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	clonedSteps := make([]orchestrate.Step, len(steps))
	copy(clonedSteps, steps)

	return &UnifiedPlan{
		GeneratedAt: generatedAt,
		Sources:     sources,
		Validation:  report,
		Steps:       clonedSteps,
		Files:       files,
	}
}

// RenderJSON renders the unified plan as indented JSON.
func (u *UnifiedPlan) RenderJSON() ([]byte, error) {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unified: encode plan: %w", err)
	}
	return append(data, '\n'), nil
}
