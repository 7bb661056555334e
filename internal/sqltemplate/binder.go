package sqltemplate

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
)

// BindError reports a parameter value that cannot be bound.
type BindError struct {
	Name   string
	Reason string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%s for `%s`", e.Reason, e.Name)
}

// DecodeParams decodes a JSON object keeping numbers as json.Number so
// integers survive without float rounding.
func DecodeParams(raw json.RawMessage) (map[string]any, error) {
	params := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return params, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return params, nil
}

// Bind produces one driver argument per entry of q.ParamNames.
func Bind(q *BuiltQuery, params map[string]any, d Dialect) ([]any, error) {
	args := make([]any, 0, len(q.ParamNames))
	for _, name := range q.ParamNames {
		v, ok := params[name]
		if !ok {
			return nil, &BindError{Name: name, Reason: "missing parameter"}
		}
		arg, err := BindValue(name, v, d)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// BindValue maps one JSON-decoded value to a native bind value:
//
//	string  -> string
//	number  -> int64 when integral and in range, else float64
//	bool    -> bool
//	array   -> []string, non-string elements dropped
//	null    -> sql.NullString{} (typed text null)
//	object  -> BindError
func BindValue(name string, v any, d Dialect) (any, error) {
	switch val := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return val, nil
	case bool:
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, &BindError{Name: name, Reason: "invalid number"}
		}
		return numberValue(f), nil
	case float64:
		return numberValue(val), nil
	case float32:
		return numberValue(float64(val)), nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case []any:
		if !d.SupportsArrays() {
			return nil, &BindError{Name: name, Reason: "unsupported parameter type"}
		}
		out := make([]string, 0, len(val))
		for _, elem := range val {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		if !d.SupportsArrays() {
			return nil, &BindError{Name: name, Reason: "unsupported parameter type"}
		}
		return val, nil
	default:
		return nil, &BindError{Name: name, Reason: "unsupported parameter type"}
	}
}

// numberValue keeps integral floats that fit in int64 as integers.
func numberValue(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return f
	}
	if f < -(1<<63) || f >= 1<<63 {
		return f
	}
	return int64(f)
}
