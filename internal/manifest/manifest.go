// Package manifest builds the target mapping that drives a run.
//
// A manifest is a YAML document naming reusable knowledge blocks and the
// files that should receive them:
//
//	name: aitmpl agent integration
//	base_dir: ~/.openclaw/setfarm-repo
//	blocks:
//	  fixer-debug:
//	    marker: Systematic Debugging Methodology
//	    file: blocks/fixer-debug.md
//	targets:
//	  - path: workflows/bug-fix/agents/fixer/AGENTS.md
//	    rules: [fixer-debug]
//
// The built-in manifest and its blocks are embedded in the binary.
package manifest

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sokinpui/ruleinject/internal/parser"
	"github.com/sokinpui/ruleinject/model"
)

// DefaultName is used when a manifest does not name itself.
const DefaultName = "rule injection"

//go:embed defaults
var defaultFS embed.FS

type blockSpec struct {
	Marker string `yaml:"marker"`
	Text   string `yaml:"text"`
	File   string `yaml:"file"`
}

type targetSpec struct {
	Path  string   `yaml:"path"`
	Rules []string `yaml:"rules"`
}

type document struct {
	Name    string               `yaml:"name"`
	BaseDir string               `yaml:"base_dir"`
	Blocks  map[string]blockSpec `yaml:"blocks"`
	Targets []targetSpec         `yaml:"targets"`
}

// trailingAttribution matches a closing "(from ...)" style parenthetical.
var trailingAttribution = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// Default returns the built-in mapping.
func Default() (model.Mapping, error) {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		return model.Mapping{}, err
	}
	return Load(sub, "manifest.yaml")
}

// Load reads the manifest called name from fsys. Block files are resolved
// relative to fsys.
func Load(fsys fs.FS, name string) (model.Mapping, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return model.Mapping{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data, fsys)
}

// Parse decodes a manifest. fsys may be nil when every block is inline.
func Parse(data []byte, fsys fs.FS) (model.Mapping, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Mapping{}, errors.New("manifest is empty")
		}
		return model.Mapping{}, fmt.Errorf("invalid manifest: %w", err)
	}

	rules := make(map[string]model.Rule, len(doc.Blocks))
	for id, spec := range doc.Blocks {
		rule, err := buildRule(id, spec, fsys)
		if err != nil {
			return model.Mapping{}, err
		}
		rules[id] = rule
	}

	if len(doc.Targets) == 0 {
		return model.Mapping{}, errors.New("manifest has no targets")
	}

	m := model.Mapping{
		Name:    strings.TrimSpace(doc.Name),
		BaseDir: strings.TrimSpace(doc.BaseDir),
		Targets: make([]model.Target, 0, len(doc.Targets)),
	}
	if m.Name == "" {
		m.Name = DefaultName
	}

	for i, ts := range doc.Targets {
		path := strings.TrimSpace(ts.Path)
		if path == "" {
			return model.Mapping{}, fmt.Errorf("target %d: missing path", i+1)
		}
		if len(ts.Rules) == 0 {
			return model.Mapping{}, fmt.Errorf("target %s: no rules", path)
		}
		target := model.Target{Path: path, Rules: make([]model.Rule, 0, len(ts.Rules))}
		for _, id := range ts.Rules {
			rule, ok := rules[id]
			if !ok {
				return model.Mapping{}, fmt.Errorf("target %s: unknown block '%s'", path, id)
			}
			target.Rules = append(target.Rules, rule)
		}
		m.Targets = append(m.Targets, target)
	}

	return m, nil
}

func buildRule(id string, spec blockSpec, fsys fs.FS) (model.Rule, error) {
	var text string
	switch {
	case spec.Text != "" && spec.File != "":
		return model.Rule{}, fmt.Errorf("block %s: set either text or file, not both", id)
	case spec.File != "":
		if fsys == nil {
			return model.Rule{}, fmt.Errorf("block %s: file references are not supported for this manifest source", id)
		}
		data, err := fs.ReadFile(fsys, spec.File)
		if err != nil {
			return model.Rule{}, fmt.Errorf("block %s: %w", id, err)
		}
		text = string(data)
	default:
		text = spec.Text
	}
	if strings.TrimSpace(text) == "" {
		return model.Rule{}, fmt.Errorf("block %s: empty content", id)
	}

	marker := spec.Marker
	if marker == "" {
		derived, err := DeriveMarker(text)
		if err != nil {
			return model.Rule{}, fmt.Errorf("block %s: %w", id, err)
		}
		marker = derived
	}

	return model.Rule{ID: id, Marker: marker, Block: text}, nil
}

// DeriveMarker returns the text of the block's first heading with any
// trailing parenthetical removed.
func DeriveMarker(block string) (string, error) {
	h, ok, err := parser.FirstHeading([]byte(block))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("no marker given and no heading to derive one from")
	}
	marker := strings.TrimSpace(trailingAttribution.ReplaceAllString(h.Text, ""))
	if marker == "" {
		return "", fmt.Errorf("heading '%s' yields an empty marker", h.Text)
	}
	return marker, nil
}
