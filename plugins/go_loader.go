package plugins

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

// goEntryPoint is the function a Go rule-pack file must export. Packs come
// back as generic maps and go through the same validation path as YAML ones.
const goEntryPoint = "RulePackDefinitions"

// LoadGoDefinitionDir evaluates the .go rule-pack files in dir with yaegi.
// A missing directory yields no packs.
func LoadGoDefinitionDir(dir string) ([]DefinitionFile, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("rulepack: read %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".go" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	var defs []DefinitionFile
	for _, path := range paths {
		fileDefs, err := evalRulePackFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}
	return defs, nil
}

func evalRulePackFile(path string) ([]DefinitionFile, error) {
	vm := interp.New(interp.Options{})
	vm.Use(stdlib.Symbols)
	if _, err := vm.EvalPath(path); err != nil {
		return nil, fmt.Errorf("rulepack: interpret %s: %w", path, err)
	}
	// yaegi registers a file's symbols under its package qualifier unless the
	// package is main, so resolve the entry point by its qualified name.
	symbol := goEntryPoint
	if file, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.PackageClauseOnly); err == nil && file.Name.Name != "main" {
		symbol = file.Name.Name + "." + goEntryPoint
	}
	entry, err := vm.Eval(symbol)
	if err != nil {
		return nil, fmt.Errorf("rulepack: %s must export %s(): %w", path, goEntryPoint, err)
	}
	packs, err := callRulePackFunc(entry)
	if err != nil {
		return nil, fmt.Errorf("rulepack: %s: %w", path, err)
	}
	defs := make([]DefinitionFile, 0, len(packs))
	for i, pack := range packs {
		payload, err := yaml.Marshal(pack)
		if err != nil {
			return nil, fmt.Errorf("rulepack: %s pack %d: %w", path, i+1, err)
		}
		def, err := ParseDefinitionYAML(payload)
		if err != nil {
			return nil, fmt.Errorf("rulepack: %s pack %d: %w", path, i+1, err)
		}
		defs = append(defs, DefinitionFile{Definition: def, Path: fmt.Sprintf("%s#%d", path, i+1)})
	}
	return defs, nil
}

// callRulePackFunc invokes the entry point and coerces its results. Both the
// single-value form and a two-value form with a trailing error are accepted;
// yaegi hands either back as untyped reflect values.
func callRulePackFunc(fn reflect.Value) ([]map[string]any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goEntryPoint)
	}
	out := fn.Call(nil)
	switch len(out) {
	case 1:
	case 2:
		if !out[1].IsNil() {
			callErr, ok := out[1].Interface().(error)
			if !ok {
				return nil, fmt.Errorf("%s second return value must be an error", goEntryPoint)
			}
			return nil, callErr
		}
	default:
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", goEntryPoint)
	}
	slice := out[0]
	if slice.Kind() == reflect.Interface {
		slice = slice.Elem()
	}
	if slice.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s must return []map[string]any", goEntryPoint)
	}
	packs := make([]map[string]any, 0, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		pack, ok := slice.Index(i).Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s pack %d is not a map", goEntryPoint, i+1)
		}
		packs = append(packs, pack)
	}
	return packs, nil
}
