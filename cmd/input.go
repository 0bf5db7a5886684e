package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/dyntable/internal/cel"
	"github.com/oakwood-commons/dyntable/internal/limiter"
	"github.com/oakwood-commons/dyntable/internal/source"
	"github.com/oakwood-commons/dyntable/pkg/columns"
	"github.com/oakwood-commons/dyntable/pkg/record"
)

// loadData reads the dataset named by the arguments: a SQLite query, a
// file, or stdin when it is piped.
func (o *rootOptions) loadData(ctx context.Context, args []string) ([]record.Record, error) {
	if o.sqlitePath != "" {
		if len(args) > 0 {
			return nil, errors.New("a file argument cannot be combined with --sqlite")
		}
		return source.QuerySQLite(ctx, o.sqlitePath, o.query)
	}
	format, err := record.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	if path == "-" && !stdinIsPiped() {
		return nil, errShowHelp
	}
	return record.DecodeFile(path, record.DecodeOptions{Format: format, Path: o.jsonPath})
}

// refine applies --where and the record limits, in that order.
func (o *rootOptions) refine(data []record.Record, limits limiter.Config) ([]record.Record, error) {
	if strings.TrimSpace(o.where) != "" {
		p, err := cel.Compile(o.where)
		if err != nil {
			return nil, fmt.Errorf("--where: %w", err)
		}
		data, err = p.Apply(data)
		if err != nil {
			return nil, fmt.Errorf("--where: %w", err)
		}
	}
	return limits.Apply(data), nil
}

// loadColumnsFile reads a map of field name to override attributes from a
// YAML, JSON or TOML file. JSON is read by the YAML decoder.
func loadColumnsFile(path string) (map[string]columns.Override, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read columns file: %w", err)
	}
	doc := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode columns file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode columns file %s: %w", path, err)
		}
	}
	if nested, ok := doc["columns"].(map[string]any); ok && len(doc) == 1 {
		doc = nested
	}
	overrides, err := columns.DecodeOverrides(doc)
	if err != nil {
		return nil, fmt.Errorf("columns file %s: %w", path, err)
	}
	return overrides, nil
}

// loadSchema reads column hints from a JSON Schema file.
func loadSchema(path string) (columns.SchemaHints, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return columns.SchemaHints{}, fmt.Errorf("read schema: %w", err)
	}
	hints, err := columns.ParseSchema(raw)
	if err != nil {
		return columns.SchemaHints{}, fmt.Errorf("schema %s: %w", path, err)
	}
	return hints, nil
}
