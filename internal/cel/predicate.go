// Package cel filters records with CEL predicates. The record under test is
// bound to both "row" and "_".
package cel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	"github.com/shopspring/decimal"

	"github.com/oakwood-commons/dyntable/pkg/record"
)

// ErrNotBool reports a predicate whose result is not a boolean.
var ErrNotBool = errors.New("filter must evaluate to bool")

// Predicate is a compiled boolean CEL expression over a record.
type Predicate struct {
	expr string
	prg  cel.Program
}

// newEnv creates the CEL environment with common extensions.
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("row", cel.DynType),
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
}

// Compile parses and type-checks expr. Expressions whose type is known not
// to be bool are rejected.
func Compile(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	switch out := ast.OutputType().String(); out {
	case "bool", "dyn":
	default:
		return nil, fmt.Errorf("%w, got %s", ErrNotBool, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.expr
}

// Match evaluates the predicate against r.
func (p *Predicate) Match(r record.Record) (bool, error) {
	row := Activation(r)
	out, _, err := p.prg.Eval(map[string]any{"row": row, "_": row})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("%w, got %s", ErrNotBool, out.Type())
	}
	return bool(b), nil
}

// Apply keeps the records that match. Records whose evaluation fails (for
// example by selecting a field they lack) are dropped; a non-bool result is
// reported as an error.
func (p *Predicate) Apply(data []record.Record) ([]record.Record, error) {
	out := make([]record.Record, 0, len(data))
	for i, r := range data {
		ok, err := p.Match(r)
		if err != nil {
			if errors.Is(err, ErrNotBool) {
				return nil, fmt.Errorf("record [%d]: %w", i, err)
			}
			continue
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Activation converts a record into values the CEL type adapter understands.
func Activation(r record.Record) map[string]any {
	if r == nil {
		return map[string]any{}
	}
	if o, ok := r.(*record.Ordered); ok {
		fields := o.Fields()
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			out[f.Key] = toCEL(f.Value)
		}
		return out
	}
	out := make(map[string]any, len(r.Keys()))
	for _, k := range r.Keys() {
		v, _ := r.Value(k)
		out[k] = toCEL(v)
	}
	return out
}

func toCEL(v any) any {
	switch t := v.(type) {
	case record.Record:
		return Activation(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toCEL(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toCEL(e)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case decimal.Decimal:
		return t.InexactFloat64()
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
