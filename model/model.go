package model

// Rule pairs a knowledge block with the marker that proves it was injected.
type Rule struct {
	ID     string
	Marker string
	Block  string
}

// Target is a file that should receive the given rules, in order.
type Target struct {
	Path  string
	Rules []Rule
}

// Mapping is the complete, ordered set of targets for one run.
type Mapping struct {
	// Name labels the run in the final tally line.
	Name    string
	BaseDir string
	Targets []Target
}

// Outcome is the result of considering one rule for an existing target.
// A target that does not exist is reported through TargetResult.Missing.
type Outcome int

const (
	OutcomeAdded Outcome = iota
	OutcomeAlreadyPresent
)

// TargetResult holds the per-target outcome of a run.
type TargetResult struct {
	Path    string
	Group   string // workflow name, or "shared"
	Name    string // agent directory name
	Missing bool
	Added   []string // markers
	Skipped []string // markers
}

// Summary holds the results of an operation for display.
type Summary struct {
	Results    []TargetResult
	TotalAdded int
	DryRun     bool
	Message    string
	// Reverted and Failed are filled by undo.
	Reverted []string
	Failed   []string
}
