// Package harness runs YAML scenarios against a fresh item store and
// records what every step produced.
//
// Each scenario gets its own in-memory store seeded from its records. Steps
// mutate the store directly and resolve items through the same resolver the
// CLI uses, so a scenario observes exactly what a presenter would receive.
// The resulting trace is deterministic and suitable for golden comparison.
package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/itemview/internal/fixture"
	"github.com/roach88/itemview/internal/record"
	"github.com/roach88/itemview/internal/resolver"
	"github.com/roach88/itemview/internal/store"
	"github.com/roach88/itemview/internal/view"
)

// TraceEvent is one executed step.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Op      string         `json:"op"`
	ID      string         `json:"id"`
	Outcome string         `json:"outcome"`
	Record  *record.Object `json:"record,omitempty"` // stored body for put, returned body for found
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Keys are the ids left in the store after the last step.
	Keys []string `json:"keys"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Option configures a run.
type Option func(*Harness)

// WithLogger routes resolver and step logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Harness executes one scenario.
type Harness struct {
	store    *store.Memory[record.Object]
	resolver *resolver.ItemResolver[record.Object]
	recorder *view.Recorder
	logger   *slog.Logger
	seq      int64
}

// Run executes a scenario and returns its result.
//
// An error is returned only when the scenario itself cannot be executed,
// for example when a record body contains a float. Failed expectations
// are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	seed, err := fixture.FromMap(scenario.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	h := &Harness{
		store:    store.NewMemory(seed),
		recorder: &view.Recorder{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.resolver = resolver.New[record.Object](h.store, resolver.WithLogger(h.logger))

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result.Keys = h.store.Keys()
	for _, msg := range h.evaluateAssertions(scenario.Assertions, result) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

func (h *Harness) executeStep(i int, step Step, result *Result) error {
	op, id, ok := step.Op()
	if !ok {
		return fmt.Errorf("exactly one of put, delete or resolve is required")
	}

	h.seq++
	event := TraceEvent{Seq: h.seq, Op: op, ID: id}

	switch op {
	case OpPut:
		body, err := toObject(step.Record)
		if err != nil {
			return fmt.Errorf("put %q: %w", id, err)
		}
		if err := h.store.Put(id, body); err != nil {
			if !errors.Is(err, store.ErrInvalidKey) {
				return err
			}
			event.Outcome = OutcomeInvalidKey
		} else {
			event.Outcome = OutcomeStored
			event.Record = &body
		}

	case OpDelete:
		removed, err := h.store.Delete(id)
		switch {
		case errors.Is(err, store.ErrInvalidKey):
			event.Outcome = OutcomeInvalidKey
		case err != nil:
			return err
		case removed:
			event.Outcome = OutcomeDeleted
		default:
			event.Outcome = OutcomeNotPresent
		}

	case OpResolve:
		if err := h.resolver.Present(id, h.recorder); err != nil {
			if !errors.Is(err, store.ErrInvalidKey) {
				return err
			}
			event.Outcome = OutcomeInvalidKey
			break
		}
		last, _ := h.recorder.Last()
		if obj, found := last.Result.Get(); found {
			if obj == nil {
				obj = record.Object{}
			}
			event.Outcome = OutcomeFound
			event.Record = &obj
		} else {
			event.Outcome = OutcomeAbsent
		}
	}

	result.Trace = append(result.Trace, event)
	h.checkExpectation(i, step, event, result)

	h.logger.Debug("step completed",
		"step", i,
		"op", op,
		"id", id,
		"outcome", event.Outcome,
	)
	return nil
}

func (h *Harness) checkExpectation(i int, step Step, event TraceEvent, result *Result) {
	expect := step.Expect
	if expect == "" && event.Op == OpResolve && step.Record != nil {
		expect = OutcomeFound
	}
	if expect != "" && expect != event.Outcome {
		result.AddError(fmt.Sprintf("step %d: %s %q: expected %s, got %s", i, event.Op, event.ID, expect, event.Outcome))
		return
	}

	if event.Op != OpResolve || step.Record == nil || event.Record == nil {
		return
	}
	want, err := toObject(step.Record)
	if err != nil {
		result.AddError(fmt.Sprintf("step %d: expected record: %v", i, err))
		return
	}
	if !record.Equal(want, *event.Record) {
		result.AddError(fmt.Sprintf("step %d: resolve %q: expected record %s, got %s",
			i, event.ID, canonicalString(want), canonicalString(*event.Record)))
	}
}

func toObject(body map[string]any) (record.Object, error) {
	if body == nil {
		return record.Object{}, nil
	}
	v, err := record.FromAny(body)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(record.Object)
	if !ok {
		return nil, fmt.Errorf("expected object, got %s", record.KindOf(v))
	}
	return obj, nil
}

func canonicalString(v record.Value) string {
	b, err := record.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}
