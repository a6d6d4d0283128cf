// Package view renders resolved items for people and programs.
//
// Presenters here receive a store.Result unchanged from the resolver and
// own the decision of how an absent item looks. A found record with no
// fields is rendered differently from an absent one.
package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/itemview/internal/record"
	"github.com/roach88/itemview/internal/store"
)

// Placeholders for results without fields to show.
const (
	NoDataPlaceholder      = "No data"
	EmptyRecordPlaceholder = "(empty record)"
)

// Text writes an item as a "User ID" header followed by one indented
// "field: value" line per field in canonical key order.
type Text struct {
	w io.Writer
}

// NewText creates a Text presenter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Present writes the item. Absent results render the no-data placeholder.
func (t *Text) Present(id string, res store.Result[record.Object]) error {
	var b strings.Builder
	fmt.Fprintf(&b, "User ID: %s\n", quoteIfNeeded(id))

	obj, ok := res.Get()
	switch {
	case !ok:
		fmt.Fprintf(&b, "  %s\n", NoDataPlaceholder)
	case len(obj) == 0:
		fmt.Fprintf(&b, "  %s\n", EmptyRecordPlaceholder)
	default:
		for _, key := range obj.SortedKeys() {
			val, err := FormatValue(obj[key])
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			fmt.Fprintf(&b, "  %s: %s\n", quoteIfNeeded(key), val)
		}
	}

	_, err := io.WriteString(t.w, b.String())
	return err
}

// FormatValue renders a field value for text output. Plain strings are
// written bare; strings that would be ambiguous bare are quoted, and
// composite values are written as canonical JSON.
func FormatValue(v record.Value) (string, error) {
	if s, ok := v.(record.String); ok {
		return quoteIfNeeded(string(s)), nil
	}
	b, err := record.MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// quoteIfNeeded returns s bare, or as a JSON string when writing it bare
// could be misread. Ids and field names go through here too, so no part
// of an item can start a line of its own.
func quoteIfNeeded(s string) string {
	if !needsQuoting(s) {
		return s
	}
	b, _ := record.MarshalCanonical(record.String(s)) // strings always marshal
	return string(b)
}

func needsQuoting(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r < 0x20 || r == 0x7f
	})
}

// Item is the machine-readable form of a resolved item.
type Item struct {
	ID     string         `json:"id"`
	Found  bool           `json:"found"`
	Record *record.Object `json:"record,omitempty"`
}

// NewItem converts a result into an Item. Record is nil only when absent.
func NewItem(id string, res store.Result[record.Object]) Item {
	item := Item{ID: id, Found: res.Found()}
	if obj, ok := res.Get(); ok {
		if obj == nil {
			obj = record.Object{}
		}
		item.Record = &obj
	}
	return item
}

// Presented is one call captured by a Recorder.
type Presented struct {
	ID     string
	Result store.Result[record.Object]
}

// Recorder is a presenter that keeps every result it is given.
type Recorder struct {
	Calls []Presented
}

// Present records the call.
func (r *Recorder) Present(id string, res store.Result[record.Object]) error {
	r.Calls = append(r.Calls, Presented{ID: id, Result: res})
	return nil
}

// Last returns the most recent call, or false if there were none.
func (r *Recorder) Last() (Presented, bool) {
	if len(r.Calls) == 0 {
		return Presented{}, false
	}
	return r.Calls[len(r.Calls)-1], true
}
