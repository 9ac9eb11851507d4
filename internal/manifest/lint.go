package manifest

import (
	"fmt"
	"strings"

	"github.com/sokinpui/ruleinject/model"
)

// Issue is a configuration-integrity problem found by Lint.
type Issue struct {
	Target string
	Rule   string
	Reason string
}

func (i Issue) String() string {
	if i.Target == "" {
		return fmt.Sprintf("block %s: %s", i.Rule, i.Reason)
	}
	return fmt.Sprintf("%s: block %s: %s", i.Target, i.Rule, i.Reason)
}

// Lint checks that markers and blocks agree. A marker missing from its own
// block makes the block re-append on every run; a marker found in a sibling
// block makes the rule look present as soon as the sibling lands.
func Lint(m model.Mapping) []Issue {
	var issues []Issue
	seenBlocks := make(map[string]bool)

	for _, target := range m.Targets {
		for _, rule := range target.Rules {
			if !seenBlocks[rule.ID] {
				seenBlocks[rule.ID] = true
				if !strings.Contains(rule.Block, rule.Marker) {
					issues = append(issues, Issue{
						Rule:   rule.ID,
						Reason: fmt.Sprintf("marker '%s' does not occur in the block; it will be appended on every run", rule.Marker),
					})
				}
			}
		}

		markers := make(map[string]string, len(target.Rules))
		for _, rule := range target.Rules {
			if prev, ok := markers[rule.Marker]; ok {
				issues = append(issues, Issue{
					Target: target.Path,
					Rule:   rule.ID,
					Reason: fmt.Sprintf("marker '%s' duplicates block %s", rule.Marker, prev),
				})
				continue
			}
			markers[rule.Marker] = rule.ID
		}

		for _, rule := range target.Rules {
			for _, other := range target.Rules {
				if other.ID == rule.ID || other.Marker == rule.Marker {
					continue
				}
				if strings.Contains(other.Block, rule.Marker) {
					issues = append(issues, Issue{
						Target: target.Path,
						Rule:   rule.ID,
						Reason: fmt.Sprintf("marker '%s' also occurs in block %s", rule.Marker, other.ID),
					})
				}
			}
		}
	}

	return issues
}
