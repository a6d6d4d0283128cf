package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/itemview/internal/record"
)

// document is the shared shape of text fixtures.
type document struct {
	Records map[string]any `yaml:"records" json:"records"`
}

func decodeYAML(data []byte) (map[string]record.Object, error) {
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject typos like "record:"
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]record.Object{}, nil
		}
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalidFixture, err)
	}
	return FromMap(doc.Records)
}

func decodeJSON(data []byte) (map[string]record.Object, error) {
	var doc document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %w", ErrInvalidFixture, err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON document", ErrInvalidFixture)
	}
	return FromMap(doc.Records)
}

func decodeCUE(data []byte, name string) (map[string]record.Object, error) {
	ctx := cuecontext.New()

	var opts []cue.BuildOption
	if name != "" {
		opts = append(opts, cue.Filename(name))
	}
	value := ctx.CompileBytes(data, opts...)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("%w: building CUE value: %w", ErrInvalidFixture, err)
	}
	// Err only reports a failing root; Validate also finds nested conflicts.
	if err := value.Validate(); err != nil {
		return nil, fmt.Errorf("%w: building CUE value: %w", ErrInvalidFixture, err)
	}

	iter, err := value.Fields()
	if err != nil {
		return nil, fmt.Errorf("%w: iterating CUE fields: %w", ErrInvalidFixture, err)
	}
	for iter.Next() {
		if label := iter.Label(); label != "records" {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFixture, label)
		}
	}

	recordsVal := value.LookupPath(cue.ParsePath("records"))
	if !recordsVal.Exists() {
		return map[string]record.Object{}, nil
	}

	// Export through JSON so CUE numbers take the same integer checks as
	// the other formats.
	exported, err := recordsVal.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: exporting CUE records: %w", ErrInvalidFixture, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(exported))
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: records must be a struct: %w", ErrInvalidFixture, err)
	}
	return FromMap(raw)
}
