package plugins

import (
	"fmt"

	"github.com/kingrea/stratum/internal/config"
	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/pipeline"
	"github.com/kingrea/stratum/internal/validate"
)

// Discover loads every YAML and Go rule pack under .stratum/rules and rejects
// duplicate pack ids. Packs come back in deterministic path order.
func Discover(cfg *config.Config) ([]DefinitionFile, error) {
	if cfg == nil {
		return nil, nil
	}
	dir := cfg.RulesDir()
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	defs := append(yamlDefs, goDefs...)
	seen := make(map[string]string, len(defs))
	for _, file := range defs {
		id := file.Definition.ID
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("rulepack: duplicate pack id %s (%s and %s)", id, existing, file.Path)
		}
		seen[id] = file.Path
	}
	return defs, nil
}

// Apply merges the discovered packs into the pipeline options. Packs apply
// in the order Discover returned them: type synonyms accumulate, while
// threshold, severity and checkpoint overrides from a later pack win.
func Apply(opts *pipeline.Options, defs []DefinitionFile) {
	if opts == nil || len(defs) == 0 {
		return
	}
	for _, file := range defs {
		def := file.Definition
		if def.NamingThreshold > 0 {
			opts.NamingThreshold = def.NamingThreshold
		}
		for name, synonyms := range def.TypeSynonyms {
			if opts.TypeSynonyms == nil {
				opts.TypeSynonyms = map[string][]string{}
			}
			opts.TypeSynonyms[name] = append(opts.TypeSynonyms[name], synonyms...)
		}
		for category, severity := range def.Severities {
			if opts.SeverityOverrides == nil {
				opts.SeverityOverrides = map[validate.Category]validate.Severity{}
			}
			opts.SeverityOverrides[knownCategories[category]] = knownSeverities[severity]
		}
		for kindName, checkpoint := range def.Checkpoints {
			kind, err := layer.ParseKind(kindName)
			if err != nil {
				continue
			}
			if opts.Checkpoints == nil {
				opts.Checkpoints = map[layer.Kind]string{}
			}
			opts.Checkpoints[kind] = checkpoint
		}
	}
}
