package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kingrea/stratum/internal/layer"
)

// Store loads layer-plan artifacts from a plans directory.
type Store struct {
	extractor Extractor
	parallel  bool
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithExtractor overrides the heuristic fact extractor.
func WithExtractor(extractor Extractor) StoreOption {
	return func(s *Store) {
		if extractor != nil {
			s.extractor = extractor
		}
	}
}

// WithParallelParse parses independent layer files concurrently. The results
// are fully joined and merged into the same deterministic map before Load
// returns, so downstream stages never observe the difference.
func WithParallelParse(enabled bool) StoreOption {
	return func(s *Store) {
		s.parallel = enabled
	}
}

// NewStore builds a store with the default heuristic extractor.
func NewStore(opts ...StoreOption) *Store {
	store := &Store{extractor: NewHeuristicExtractor()}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Options narrows and hardens a Load call.
type Options struct {
	// Expected limits which kinds the store looks for. Empty means every
	// known kind.
	Expected []layer.Kind
	// Mandatory lists kinds whose absence aborts the load with NotFoundError.
	Mandatory []layer.Kind
}

// Load scans dir for recognized layer artifacts and parses each one. Missing
// optional layers simply leave a gap in the returned map; a missing mandatory
// layer returns NotFoundError. Per-file parse failures degrade that layer to
// empty facts and are recorded on the plan itself.
func (s *Store) Load(dir string, opts Options) (map[layer.Kind]*Plan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("plan: read plans directory %s: %w", dir, err)
	}
	expected := opts.Expected
	if len(expected) == 0 {
		expected = layer.KnownKinds()
	}
	wanted := make(map[layer.Kind]bool, len(expected))
	for _, kind := range expected {
		wanted[kind] = true
	}
	sources := selectSources(dir, entries, wanted)
	plans := s.parseAll(sources)
	for _, kind := range opts.Mandatory {
		if _, ok := plans[kind]; !ok {
			return nil, &NotFoundError{Kind: kind, Dir: dir}
		}
	}
	return plans, nil
}

// selectSources picks at most one artifact per kind. Canonical names
// (`schema.md`) win over legacy aliases (`database.md`); remaining ties go to
// the lexicographically smaller filename so repeated loads agree.
func selectSources(dir string, entries []os.DirEntry, wanted map[layer.Kind]bool) map[layer.Kind]string {
	sources := map[layer.Kind]string{}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		kind, ok := layer.KindForFile(name)
		if !ok || !wanted[kind] {
			continue
		}
		existing, taken := sources[kind]
		if taken && !preferSource(name, existing, kind) {
			continue
		}
		sources[kind] = name
	}
	resolved := make(map[layer.Kind]string, len(sources))
	for kind, name := range sources {
		resolved[kind] = filepath.Join(dir, name)
	}
	return resolved
}

func preferSource(candidate, existing string, kind layer.Kind) bool {
	canonical := func(name string) bool {
		stem := name[:len(name)-len(filepath.Ext(name))]
		return stem == string(kind)
	}
	if canonical(candidate) != canonical(existing) {
		return canonical(candidate)
	}
	return candidate < existing
}

func (s *Store) parseAll(sources map[layer.Kind]string) map[layer.Kind]*Plan {
	kinds := make([]layer.Kind, 0, len(sources))
	for kind := range sources {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	results := make([]*Plan, len(kinds))
	if s.parallel {
		var wg sync.WaitGroup
		for i, kind := range kinds {
			wg.Add(1)
			go func(i int, kind layer.Kind) {
				defer wg.Done()
				results[i] = s.parseFile(kind, sources[kind])
			}(i, kind)
		}
		wg.Wait()
	} else {
		for i, kind := range kinds {
			results[i] = s.parseFile(kind, sources[kind])
		}
	}
	plans := make(map[layer.Kind]*Plan, len(results))
	for _, parsed := range results {
		plans[parsed.Kind] = parsed
	}
	return plans
}

func (s *Store) parseFile(kind layer.Kind, path string) *Plan {
	loaded := &Plan{Kind: kind, Source: path}
	content, err := os.ReadFile(path)
	if err != nil {
		loaded.ParseErr = &ParseError{Path: path, Err: err}
		return loaded
	}
	loaded.RawText = string(content)
	meta, body, err := ParseFrontMatter(content)
	if err != nil {
		loaded.ParseErr = &ParseError{Path: path, Err: err}
		return loaded
	}
	loaded.Meta = meta
	loaded.Facts = s.extractor.Extract(kind, string(body))
	return loaded
}
