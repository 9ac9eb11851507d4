package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sokinpui/ruleinject/internal/fs"
)

const ActionAppend = "append"

// Operation represents a single append performed by a run.
type Operation struct {
	Path        string
	Action      string
	ContentHash string // SHA256 hash of the file content after the append
	Offset      int64  // file size before the append
	Length      int64
}

// HistoryEntry represents one complete run of the tool.
type HistoryEntry struct {
	Timestamp  int64
	Operations []Operation
}

// State represents the entire journal file.
type State struct {
	History      []HistoryEntry
	CurrentIndex int
}

// Manager handles the lifecycle of the journal file.
type Manager struct {
	statePath string
	state     *State
}

// New creates and loads a journal manager for the given file. The parent
// directory is created if needed.
func New(statePath string) (*Manager, error) {
	expanded, err := fs.ExpandHome(statePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return nil, fmt.Errorf("could not create journal directory: %w", err)
	}
	m := &Manager{statePath: expanded}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = &State{CurrentIndex: -1}
			return nil
		}
		return err
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	blocks := strings.Split(content, "\n\n")

	if len(blocks) == 0 || strings.TrimSpace(blocks[0]) == "" {
		m.state = &State{CurrentIndex: -1}
		return nil
	}

	// First block is current index
	index, err := strconv.Atoi(strings.TrimSpace(blocks[0]))
	if err != nil {
		return fmt.Errorf("invalid journal: could not parse current index: %w", err)
	}

	m.state = &State{CurrentIndex: index}

	for _, block := range blocks[1:] {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		ts, err := strconv.ParseInt(lines[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid journal: could not parse timestamp from '%s': %w", lines[0], err)
		}

		entry := HistoryEntry{Timestamp: ts}
		opLines := lines[1:]
		for i := 0; i < len(opLines); i += 5 {
			if i+5 > len(opLines) {
				return fmt.Errorf("invalid journal: incomplete operation record")
			}
			op := Operation{
				Action:      opLines[i],
				Path:        opLines[i+1],
				ContentHash: opLines[i+2],
			}
			if op.Offset, err = strconv.ParseInt(opLines[i+3], 10, 64); err != nil {
				return fmt.Errorf("invalid journal: bad offset for %s: %w", op.Path, err)
			}
			if op.Length, err = strconv.ParseInt(opLines[i+4], 10, 64); err != nil {
				return fmt.Errorf("invalid journal: bad length for %s: %w", op.Path, err)
			}
			entry.Operations = append(entry.Operations, op)
		}
		m.state.History = append(m.state.History, entry)
	}

	if m.state.CurrentIndex >= len(m.state.History) {
		return fmt.Errorf("invalid journal: index %d out of range", m.state.CurrentIndex)
	}
	return nil
}

func (m *Manager) save() error {
	var blocks []string

	// Current index block
	blocks = append(blocks, strconv.Itoa(m.state.CurrentIndex))

	for _, entry := range m.state.History {
		var entryBuilder strings.Builder
		entryBuilder.WriteString(fmt.Sprintf("%d\n", entry.Timestamp))

		opLines := []string{}
		for _, op := range entry.Operations {
			opLines = append(opLines,
				op.Action,
				op.Path,
				op.ContentHash,
				strconv.FormatInt(op.Offset, 10),
				strconv.FormatInt(op.Length, 10),
			)
		}
		entryBuilder.WriteString(strings.Join(opLines, "\n"))
		blocks = append(blocks, entryBuilder.String())
	}

	content := strings.Join(blocks, "\n\n") + "\n"
	if err := os.WriteFile(m.statePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("could not write journal: %w", err)
	}
	return nil
}

// Write adds a new set of operations to the history.
func (m *Manager) Write(operations []Operation) error {
	if len(operations) == 0 {
		return nil
	}
	if m.state.CurrentIndex < len(m.state.History)-1 {
		m.state.History = m.state.History[:m.state.CurrentIndex+1]
	}

	m.state.History = append(m.state.History, HistoryEntry{
		Timestamp:  time.Now().UTC().Unix(),
		Operations: operations,
	})
	m.state.CurrentIndex++
	return m.save()
}

// GetOperationsToUndo returns the operations of the latest run. The history
// pointer stays put until MarkUndone is called.
func (m *Manager) GetOperationsToUndo() []Operation {
	if m.state.CurrentIndex < 0 {
		return nil
	}
	return m.state.History[m.state.CurrentIndex].Operations
}

// MarkUndone moves the history pointer past the latest run.
func (m *Manager) MarkUndone() error {
	if m.state.CurrentIndex < 0 {
		return nil
	}
	m.state.CurrentIndex--
	return m.save()
}

// Undo reverts operations newest first. A file is only truncated when its
// current hash still matches the hash recorded after the append.
func Undo(ops []Operation) (reverted, failed []string) {
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if op.Action != ActionAppend {
			failed = append(failed, op.Path)
			continue
		}
		hash, err := fs.GetFileSHA256(op.Path)
		if err != nil || hash != op.ContentHash {
			failed = append(failed, op.Path)
			continue
		}
		if err := fs.Truncate(op.Path, op.Offset); err != nil {
			failed = append(failed, op.Path)
			continue
		}
		reverted = append(reverted, op.Path)
	}
	return reverted, failed
}

// Recorder collects appends during a run so they can be journaled.
type Recorder struct {
	ops []Operation
}

// Record hashes the file after an append and remembers the operation.
func (r *Recorder) Record(path string, offset, length int64) error {
	hash, err := fs.GetFileSHA256(path)
	if err != nil {
		return fmt.Errorf("could not hash %s: %w", path, err)
	}
	r.ops = append(r.ops, Operation{
		Path:        path,
		Action:      ActionAppend,
		ContentHash: hash,
		Offset:      offset,
		Length:      length,
	})
	return nil
}

// Operations returns the recorded operations in order.
func (r *Recorder) Operations() []Operation {
	return r.ops
}
