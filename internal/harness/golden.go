package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/itemview/internal/record"
)

// Snapshot renders a run's trace as canonical JSON for golden comparison.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make(record.Array, len(result.Trace))
	for i, event := range result.Trace {
		obj := record.Object{
			"seq":     record.Int(event.Seq),
			"op":      record.String(event.Op),
			"id":      record.String(event.ID),
			"outcome": record.String(event.Outcome),
		}
		if event.Record != nil {
			obj["record"] = *event.Record
		}
		trace[i] = obj
	}

	return record.MarshalCanonical(record.Object{
		"scenario_name": record.String(scenarioName),
		"trace":         trace,
	})
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
