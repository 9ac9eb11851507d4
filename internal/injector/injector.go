// Package injector appends knowledge blocks to target files, once.
package injector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sokinpui/ruleinject/internal/fs"
	"github.com/sokinpui/ruleinject/model"
)

// Reporter receives run events as they happen.
type Reporter interface {
	MissingTarget(path string)
	AlreadyPresent(target, marker string)
	Added(group, target string, markers []string)
	Complete(name string, total int)
}

// AppendHook observes every physical append: the resolved path, the file
// size before the write and the number of bytes written.
type AppendHook func(path string, offset, length int64) error

// Injector applies a mapping to the filesystem.
type Injector struct {
	resolver *fs.PathResolver
	reporter Reporter
	dryRun   bool
	onAppend AppendHook
}

// Option configures an Injector.
type Option func(*Injector)

// WithDryRun decides every outcome without writing.
func WithDryRun() Option {
	return func(in *Injector) { in.dryRun = true }
}

// WithAppendHook registers a hook called after each append.
func WithAppendHook(hook AppendHook) Option {
	return func(in *Injector) { in.onAppend = hook }
}

// New creates an Injector.
func New(resolver *fs.PathResolver, reporter Reporter, opts ...Option) *Injector {
	in := &Injector{resolver: resolver, reporter: reporter}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Apply processes every target in order. Missing targets and markers that
// are already present are skipped. The first I/O failure stops the run and
// is returned together with the results gathered so far; the final tally
// is only reported when every target was processed.
func (in *Injector) Apply(m model.Mapping) (model.Summary, error) {
	summary := model.Summary{DryRun: in.dryRun}

	for _, target := range m.Targets {
		result, err := in.applyTarget(target)
		summary.Results = append(summary.Results, result)
		summary.TotalAdded += len(result.Added)
		if err != nil {
			return summary, err
		}
	}

	in.reporter.Complete(m.Name, summary.TotalAdded)
	return summary, nil
}

func (in *Injector) applyTarget(target model.Target) (model.TargetResult, error) {
	path := in.resolver.Resolve(target.Path)
	result := model.TargetResult{
		Path:  path,
		Group: GroupOf(path),
		Name:  NameOf(path),
	}

	exists, err := fs.Exists(path)
	if err != nil {
		return result, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !exists {
		result.Missing = true
		in.reporter.MissingTarget(path)
		return result, nil
	}

	content, err := fs.ReadText(path)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, rule := range target.Rules {
		if decide(content, rule) == model.OutcomeAlreadyPresent {
			result.Skipped = append(result.Skipped, rule.Marker)
			in.reporter.AlreadyPresent(result.Name, rule.Marker)
			continue
		}

		if !in.dryRun {
			// On failure the report stops here; the result still lists what
			// reached the file.
			offset, err := fs.AppendText(path, rule.Block)
			if err != nil {
				return result, fmt.Errorf("failed to append '%s' to %s: %w", rule.Marker, path, err)
			}
			if in.onAppend != nil {
				if err := in.onAppend(path, offset, int64(len(rule.Block))); err != nil {
					result.Added = append(result.Added, rule.Marker)
					return result, err
				}
			}
		}

		// Later rules see what this run already appended.
		content += rule.Block
		result.Added = append(result.Added, rule.Marker)
	}

	in.reporter.Added(result.Group, result.Name, result.Added)
	return result, nil
}

func decide(content string, rule model.Rule) model.Outcome {
	if strings.Contains(content, rule.Marker) {
		return model.OutcomeAlreadyPresent
	}
	return model.OutcomeAdded
}

// NameOf returns the name a target is reported under: its parent
// directory, e.g. "fixer" for workflows/bug-fix/agents/fixer/AGENTS.md.
func NameOf(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// GroupOf returns the workflow a target belongs to, or "shared" when the
// path is not under a workflows directory.
func GroupOf(path string) string {
	slashed := filepath.ToSlash(path)
	_, rest, ok := strings.Cut(slashed, "/workflows/")
	if !ok {
		if after, found := strings.CutPrefix(slashed, "workflows/"); found {
			rest, ok = after, true
		}
	}
	if !ok {
		return "shared"
	}
	group, _, _ := strings.Cut(rest, "/")
	if group == "" {
		return "shared"
	}
	return group
}
