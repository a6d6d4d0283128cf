package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/itemview/internal/record"
	"github.com/roach88/itemview/internal/store"
)

// Sentinel errors for fixture loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported fixture format")
	ErrFixtureNotFound   = errors.New("fixture not found")
	ErrInvalidFixture    = errors.New("invalid fixture")
)

// Format identifies a fixture encoding.
type Format string

// Supported fixture formats.
const (
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatCUE    Format = "cue"
	FormatSQLite Format = "sqlite"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads the fixture at path into a new memory store.
func Load(ctx context.Context, path string) (*store.Memory[record.Object], error) {
	records, err := Records(ctx, path)
	if err != nil {
		return nil, err
	}
	return store.NewMemory(records), nil
}

// Records reads the fixture at path and returns its records by id.
func Records(ctx context.Context, path string) (map[string]record.Object, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFixtureNotFound, path)
		}
		return nil, fmt.Errorf("stat fixture: %w", err)
	}

	if format == FormatSQLite {
		db, err := OpenDBReadOnly(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Records(ctx)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	records, err := Decode(format, data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode parses an in-memory fixture document. name is used in CUE
// positions and may be empty.
func Decode(format Format, data []byte, name string) (map[string]record.Object, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON:
		return decodeJSON(data)
	case FormatCUE:
		return decodeCUE(data, name)
	default:
		return nil, fmt.Errorf("%w: %q cannot be decoded from bytes", ErrUnsupportedFormat, format)
	}
}

// FromMap converts generically decoded record bodies, validating ids and
// requiring every body to be an object.
func FromMap(raw map[string]any) (map[string]record.Object, error) {
	records := make(map[string]record.Object, len(raw))
	for id, body := range raw {
		if err := store.ValidateKey(id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
		}

		v, err := record.FromAny(body)
		if err != nil {
			return nil, fmt.Errorf("%w: record %q: %w", ErrInvalidFixture, id, err)
		}

		obj, ok := v.(record.Object)
		if !ok {
			return nil, fmt.Errorf("%w: record %q: expected object, got %s", ErrInvalidFixture, id, record.KindOf(v))
		}
		records[id] = obj
	}
	return records, nil
}
