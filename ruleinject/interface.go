package ruleinject

import (
	"io"

	"github.com/sokinpui/ruleinject/internal/fs"
	"github.com/sokinpui/ruleinject/internal/injector"
	"github.com/sokinpui/ruleinject/internal/manifest"
	"github.com/sokinpui/ruleinject/internal/report"
	"github.com/sokinpui/ruleinject/model"
)

// Config for using ruleinject as a library.
type Config struct {
	// Directory relative target paths are resolved against. Empty means
	// the same precedence as the command line.
	BaseDir string
	// Decide outcomes without writing.
	DryRun bool
}

// DefaultMapping returns the built-in mapping.
func DefaultMapping() (model.Mapping, error) {
	return manifest.Default()
}

// ParseManifest decodes a YAML manifest whose blocks are all inline.
func ParseManifest(data []byte) (model.Mapping, error) {
	return manifest.Parse(data, nil)
}

// Apply injects the mapping's blocks and writes the line report to w.
// It returns the per-target results and the number of blocks added.
func Apply(m model.Mapping, config Config, w io.Writer) (model.Summary, error) {
	resolver, err := fs.NewPathResolver(ResolveBaseDir(config.BaseDir, m))
	if err != nil {
		return model.Summary{}, err
	}

	var opts []injector.Option
	if config.DryRun {
		opts = append(opts, injector.WithDryRun())
	}
	reporter := report.New(w, report.WithDryRun(config.DryRun))
	return injector.New(resolver, reporter, opts...).Apply(m)
}
