package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pseo/internal/ir"
)

// Snapshot returns the canonical JSON snapshot of a result's pages.
// Pages that failed to assemble appear as {"error": true}.
func Snapshot(result *Result) ([]byte, error) {
	pages := make([]any, len(result.Pages))
	for i, p := range result.Pages {
		if p == nil {
			pages[i] = map[string]any{"error": true}
			continue
		}
		m := p.CanonicalMap()
		m["content_hash"] = p.ContentHash
		pages[i] = m
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario": result.Scenario,
		"pages":    pages,
	})
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
//
// Returns the result so callers can also check Pass. Scenario errors are
// returned; snapshot mismatches fail t through goldie.
func RunWithGolden(t *testing.T, lib *ir.Library, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(lib, scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
