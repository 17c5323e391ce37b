package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/validate"
)

// Definition describes one rule pack loaded from .stratum/rules/.
//
// The struct mirrors the on-disk schema and is intentionally narrow so the
// pipeline can validate pack metadata before merging it into a run's
// configuration.
type Definition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`

	// NamingThreshold overrides the similarity cutoff. Zero leaves the
	// project setting in place.
	NamingThreshold float64 `json:"naming_threshold,omitempty" yaml:"naming_threshold,omitempty"`
	// TypeSynonyms extends the built-in type compatibility table.
	TypeSynonyms map[string][]string `json:"type_synonyms,omitempty" yaml:"type_synonyms,omitempty"`
	// Severities remaps issue categories ("naming", "type-mismatch", ...)
	// to "error" or "warning".
	Severities map[string]string `json:"severities,omitempty" yaml:"severities,omitempty"`
	// Checkpoints replaces the per-layer checkpoint text in execution steps.
	Checkpoints map[string]string `json:"checkpoints,omitempty" yaml:"checkpoints,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def Definition) Normalized() Definition {
	clone := Definition{
		ID:              strings.TrimSpace(def.ID),
		Name:            strings.TrimSpace(def.Name),
		Description:     strings.TrimSpace(def.Description),
		Version:         strings.TrimSpace(def.Version),
		NamingThreshold: def.NamingThreshold,
	}
	if len(def.TypeSynonyms) > 0 {
		clone.TypeSynonyms = make(map[string][]string, len(def.TypeSynonyms))
		for key, values := range def.TypeSynonyms {
			trimmed := strings.ToLower(strings.TrimSpace(key))
			if trimmed == "" {
				continue
			}
			cleaned := make([]string, 0, len(values))
			for _, value := range values {
				if v := strings.ToLower(strings.TrimSpace(value)); v != "" {
					cleaned = append(cleaned, v)
				}
			}
			clone.TypeSynonyms[trimmed] = cleaned
		}
	}
	if len(def.Severities) > 0 {
		clone.Severities = make(map[string]string, len(def.Severities))
		for key, value := range def.Severities {
			trimmed := strings.ToLower(strings.TrimSpace(key))
			if trimmed == "" {
				continue
			}
			clone.Severities[trimmed] = strings.ToLower(strings.TrimSpace(value))
		}
	}
	if len(def.Checkpoints) > 0 {
		clone.Checkpoints = make(map[string]string, len(def.Checkpoints))
		for key, value := range def.Checkpoints {
			trimmed := strings.ToLower(strings.TrimSpace(key))
			if trimmed == "" {
				continue
			}
			clone.Checkpoints[trimmed] = strings.TrimSpace(value)
		}
	}
	return clone
}

var knownCategories = map[string]validate.Category{
	string(validate.CategoryNaming):         validate.CategoryNaming,
	string(validate.CategoryTypeMismatch):   validate.CategoryTypeMismatch,
	string(validate.CategoryCoverage):       validate.CategoryCoverage,
	string(validate.CategorySchemaConflict): validate.CategorySchemaConflict,
	string(validate.CategoryParse):          validate.CategoryParse,
}

var knownSeverities = map[string]validate.Severity{
	string(validate.SeverityError):   validate.SeverityError,
	string(validate.SeverityWarning): validate.SeverityWarning,
}

// Validate ensures the rule pack is well-formed and references known
// categories and layer kinds.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("rulepack: id is required")
	}
	if normalized.Version == "" {
		return fmt.Errorf("rulepack %s: version is required", normalized.ID)
	}
	// Zero means the pack leaves the project threshold alone.
	if t := normalized.NamingThreshold; t != 0 && (t <= 0 || t > 1) {
		return fmt.Errorf("rulepack %s: naming_threshold must be in (0, 1] when set", normalized.ID)
	}
	for category, severity := range normalized.Severities {
		if _, ok := knownCategories[category]; !ok {
			return fmt.Errorf("rulepack %s: unknown category %q", normalized.ID, category)
		}
		if _, ok := knownSeverities[severity]; !ok {
			return fmt.Errorf("rulepack %s: severity for %s must be error or warning", normalized.ID, category)
		}
	}
	for kind, checkpoint := range normalized.Checkpoints {
		if _, err := layer.ParseKind(kind); err != nil {
			return fmt.Errorf("rulepack %s: checkpoints: %w", normalized.ID, err)
		}
		if checkpoint == "" {
			return fmt.Errorf("rulepack %s: checkpoint for %s is empty", normalized.ID, kind)
		}
	}
	return nil
}
