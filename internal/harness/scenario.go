package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario describes a sequence of store mutations and lookups together
// with the outcome each step is expected to produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Records seeds the store before the first step. Keys are item ids,
	// values are record bodies.
	Records map[string]any `yaml:"records,omitempty"`

	// Steps run in order against the seeded store.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the trace and the final store.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is exactly one of put, delete or resolve.
//
// The id fields are pointers so that an explicit empty id (an invalid key)
// can be told apart from an unset field.
type Step struct {
	Put     *string `yaml:"put,omitempty"`
	Delete  *string `yaml:"delete,omitempty"`
	Resolve *string `yaml:"resolve,omitempty"`

	// Record is the body to store for put. For resolve it is the exact
	// record the lookup must return.
	Record map[string]any `yaml:"record,omitempty"`

	// Expect is the outcome the step must produce. Empty skips the check,
	// except that a resolve with a record implies "found".
	Expect string `yaml:"expect,omitempty"`
}

// Step operations.
const (
	OpPut     = "put"
	OpDelete  = "delete"
	OpResolve = "resolve"
)

// Step outcomes recorded in the trace.
const (
	OutcomeFound      = "found"
	OutcomeAbsent     = "absent"
	OutcomeInvalidKey = "invalid_key"
	OutcomeStored     = "stored"
	OutcomeDeleted    = "deleted"
	OutcomeNotPresent = "not_present"
)

var validOutcomes = map[string][]string{
	OpResolve: {OutcomeFound, OutcomeAbsent, OutcomeInvalidKey},
	OpPut:     {OutcomeStored, OutcomeInvalidKey},
	OpDelete:  {OutcomeDeleted, OutcomeNotPresent, OutcomeInvalidKey},
}

// Op returns the step's operation and id. ok is false unless exactly one
// operation is set.
func (s Step) Op() (op, id string, ok bool) {
	n := 0
	if s.Put != nil {
		op, id = OpPut, *s.Put
		n++
	}
	if s.Delete != nil {
		op, id = OpDelete, *s.Delete
		n++
	}
	if s.Resolve != nil {
		op, id = OpResolve, *s.Resolve
		n++
	}
	return op, id, n == 1
}

// Assertion checks the finished run.
type Assertion struct {
	// Type is one of final_keys, final_record or outcome_count.
	Type string `yaml:"type"`

	// Keys is the exact sorted id list the store must hold (final_keys).
	Keys []string `yaml:"keys,omitempty"`

	// ID and Record name the record that must be stored (final_record).
	// A missing Record asserts that ID is absent.
	ID     string         `yaml:"id,omitempty"`
	Record map[string]any `yaml:"record,omitempty"`

	// Outcome and Count bound how often an outcome occurs in the trace
	// (outcome_count).
	Outcome string `yaml:"outcome,omitempty"`
	Count   int    `yaml:"count"`
}

// Assertion type constants.
const (
	AssertFinalKeys    = "final_keys"
	AssertFinalRecord  = "final_record"
	AssertOutcomeCount = "outcome_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so that typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		op, _, ok := step.Op()
		if !ok {
			return fmt.Errorf("step %d: exactly one of put, delete or resolve is required", i)
		}
		if step.Expect != "" && !slices.Contains(validOutcomes[op], step.Expect) {
			return fmt.Errorf("step %d: invalid expect %q for %s (want one of %v)", i, step.Expect, op, validOutcomes[op])
		}
		switch op {
		case OpPut:
			if step.Record == nil && step.Expect != OutcomeInvalidKey {
				return fmt.Errorf("step %d: put requires a record", i)
			}
		case OpDelete:
			if step.Record != nil {
				return fmt.Errorf("step %d: delete does not take a record", i)
			}
		case OpResolve:
			if step.Record != nil && step.Expect != "" && step.Expect != OutcomeFound {
				return fmt.Errorf("step %d: record given but expect is %q", i, step.Expect)
			}
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertFinalKeys:
		case AssertFinalRecord:
			if a.ID == "" {
				return fmt.Errorf("assertion %d: final_record requires id", i)
			}
		case AssertOutcomeCount:
			if a.Outcome == "" {
				return fmt.Errorf("assertion %d: outcome_count requires outcome", i)
			}
			if a.Count < 0 {
				return fmt.Errorf("assertion %d: count must not be negative", i)
			}
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}
	return nil
}
