package plugins

import (
	"strings"
	"testing"
)

func validDefinition() Definition {
	return Definition{
		ID:      "strict-types",
		Version: "1.0.0",
		Severities: map[string]string{
			"type-mismatch": "error",
		},
		TypeSynonyms: map[string][]string{
			"money": {"decimal", "numeric"},
		},
		Checkpoints: map[string]string{
			"schema": "migrations dry-run clean",
		},
	}
}

func TestDefinitionValidate(t *testing.T) {
	if err := validDefinition().Validate(); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}
}

func TestDefinitionValidateAllowsUnsetThreshold(t *testing.T) {
	def := validDefinition()
	def.NamingThreshold = 0
	if err := def.Validate(); err != nil {
		t.Fatalf("zero threshold means unset and must pass: %v", err)
	}
}

func TestDefinitionValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Definition)
		want   string
	}{
		{"missing id", func(d *Definition) { d.ID = " " }, "id is required"},
		{"missing version", func(d *Definition) { d.Version = "" }, "version is required"},
		{"bad threshold", func(d *Definition) { d.NamingThreshold = 1.5 }, "naming_threshold"},
		{"negative threshold", func(d *Definition) { d.NamingThreshold = -0.2 }, "naming_threshold"},
		{"unknown category", func(d *Definition) { d.Severities = map[string]string{"vibes": "error"} }, "unknown category"},
		{"bad severity", func(d *Definition) { d.Severities = map[string]string{"naming": "fatal"} }, "must be error or warning"},
		{"unknown checkpoint kind", func(d *Definition) { d.Checkpoints = map[string]string{"warehouse": "x"} }, "unknown kind"},
		{"empty checkpoint", func(d *Definition) { d.Checkpoints = map[string]string{"schema": "  "} }, "is empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(&def)
			err := def.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestNormalizedTrimsAndLowers(t *testing.T) {
	def := Definition{
		ID:      "  pack ",
		Version: " 2.0 ",
		TypeSynonyms: map[string][]string{
			" Money ": {" Decimal ", ""},
		},
		Severities: map[string]string{
			" Naming ": " ERROR ",
		},
	}
	normalized := def.Normalized()
	if normalized.ID != "pack" || normalized.Version != "2.0" {
		t.Fatalf("metadata not trimmed: %+v", normalized)
	}
	if got := normalized.TypeSynonyms["money"]; len(got) != 1 || got[0] != "decimal" {
		t.Fatalf("synonyms not normalized: %v", normalized.TypeSynonyms)
	}
	if normalized.Severities["naming"] != "error" {
		t.Fatalf("severities not normalized: %v", normalized.Severities)
	}
}
