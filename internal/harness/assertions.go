package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/itemview/internal/record"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %q -> %s\n", event.Seq, event.Op, event.ID, event.Outcome)
		}
	}
	return buf.String()
}

func (h *Harness) evaluateAssertions(assertions []Assertion, result *Result) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalKeys:
			err = assertFinalKeys(result, a)
		case AssertFinalRecord:
			err = h.assertFinalRecord(result, a)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

// assertFinalKeys checks the exact set of ids left in the store.
func assertFinalKeys(result *Result, a Assertion) error {
	want := slices.Clone(a.Keys)
	slices.Sort(want)
	if slices.Equal(want, result.Keys) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalKeys,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", result.Keys),
		Trace:    result.Trace,
	}
}

// assertFinalRecord checks the stored body of one id, or its absence.
func (h *Harness) assertFinalRecord(result *Result, a Assertion) error {
	res, err := h.store.Get(a.ID)
	if err != nil {
		return err
	}

	got, found := res.Get()
	if a.Record == nil {
		if !found {
			return nil
		}
		return &AssertionError{
			Type:     AssertFinalRecord,
			Expected: fmt.Sprintf("%q absent", a.ID),
			Actual:   canonicalString(got),
			Trace:    result.Trace,
		}
	}

	want, err := toObject(a.Record)
	if err != nil {
		return fmt.Errorf("expected record: %w", err)
	}
	if !found {
		return &AssertionError{
			Type:     AssertFinalRecord,
			Expected: canonicalString(want),
			Actual:   fmt.Sprintf("%q absent", a.ID),
			Trace:    result.Trace,
		}
	}
	if got == nil {
		got = record.Object{}
	}
	if !record.Equal(want, got) {
		return &AssertionError{
			Type:     AssertFinalRecord,
			Expected: canonicalString(want),
			Actual:   canonicalString(got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertOutcomeCount checks how many steps produced an outcome.
func assertOutcomeCount(result *Result, a Assertion) error {
	count := 0
	for _, event := range result.Trace {
		if event.Outcome == a.Outcome {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutcomeCount,
		Expected: fmt.Sprintf("%d x %s", a.Count, a.Outcome),
		Actual:   fmt.Sprintf("%d x %s", count, a.Outcome),
		Trace:    result.Trace,
	}
}
