package plan

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseFrontMatter splits an optional `stratum:` YAML envelope from a plan
// document. Documents without a leading fence are returned untouched with nil
// metadata; a fence that cannot be parsed is an error so the caller can
// degrade that layer.
func ParseFrontMatter(content []byte) (*Metadata, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, normalized, nil
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return nil, nil, fmt.Errorf("unterminated frontmatter fence")
	}
	var envelope stratumEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return nil, nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	if envelope.Stratum == nil {
		// A fenced block without a stratum key belongs to the authoring tool;
		// leave it with the body.
		return nil, normalized, nil
	}
	meta := &Metadata{
		Layer:    envelope.Stratum.Layer,
		Tool:     envelope.Stratum.Tool,
		Version:  envelope.Stratum.Version,
		Produced: envelope.Stratum.Produced,
	}
	return meta, parts[1], nil
}

type stratumEnvelope struct {
	Stratum *stratumMetadata `yaml:"stratum"`
}

type stratumMetadata struct {
	Layer    string `yaml:"layer"`
	Tool     string `yaml:"tool,omitempty"`
	Version  string `yaml:"version,omitempty"`
	Produced string `yaml:"produced,omitempty"`
}
