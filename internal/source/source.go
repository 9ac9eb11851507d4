package source

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/ruleinject/internal/fs"
	"github.com/sokinpui/ruleinject/internal/ui"
)

// Stdin is the manifest argument that selects standard input.
const Stdin = "-"

// Manifest is raw manifest content and the filesystem its block files are
// resolved against.
type Manifest struct {
	Data []byte
	FS   iofs.FS
	From string
}

// SourceProvider determines and retrieves the manifest content.
type SourceProvider struct {
	stdin    io.Reader
	readClip func() (string, error)
	getwd    func() (string, error)
}

// New creates a new SourceProvider.
func New() *SourceProvider {
	return &SourceProvider{
		stdin:    os.Stdin,
		readClip: clipboard.ReadAll,
		getwd:    os.Getwd,
	}
}

// FromPath reads a manifest file, or stdin when path is "-". Block files
// are resolved relative to the manifest's directory, or to the working
// directory for stdin.
func (sp *SourceProvider) FromPath(path string) (Manifest, error) {
	if path == Stdin {
		ui.Header("--- Reading manifest from stdin ---")
		content, err := io.ReadAll(sp.stdin)
		if err != nil {
			return Manifest{}, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return sp.withWorkdir(content, "stdin")
	}

	expanded, err := fs.ExpandHome(path)
	if err != nil {
		return Manifest{}, err
	}
	content, err := os.ReadFile(expanded)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Manifest{
		Data: content,
		FS:   os.DirFS(filepath.Dir(expanded)),
		From: expanded,
	}, nil
}

// FromClipboard reads a manifest from the system clipboard.
func (sp *SourceProvider) FromClipboard() (Manifest, error) {
	ui.Header("--- Reading manifest from clipboard ---")
	content, err := sp.readClip()
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return Manifest{}, fmt.Errorf("clipboard is empty")
	}
	return sp.withWorkdir([]byte(content), "clipboard")
}

func (sp *SourceProvider) withWorkdir(content []byte, from string) (Manifest, error) {
	wd, err := sp.getwd()
	if err != nil {
		return Manifest{}, fmt.Errorf("could not get current working directory: %w", err)
	}
	return Manifest{Data: content, FS: os.DirFS(wd), From: from}, nil
}
