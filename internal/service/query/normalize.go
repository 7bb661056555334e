package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type valueFamily int

const (
	familyUnknown valueFamily = iota
	familyText
	familyInteger
	familyFloat
	familyBool
)

// Driver type names (DatabaseTypeName) per family across pgx, mysql,
// go-mssqldb and duckdb. Anything else normalizes to null: dates,
// timestamps, json, binary and arrays are not carried through.
var typeFamilies = map[string]valueFamily{
	"TEXT": familyText, "VARCHAR": familyText, "CHAR": familyText, "BPCHAR": familyText,
	"NAME": familyText, "NVARCHAR": familyText, "NCHAR": familyText, "NTEXT": familyText,
	"TINYTEXT": familyText, "MEDIUMTEXT": familyText, "LONGTEXT": familyText,
	"CITEXT": familyText, "UUID": familyText, "UNIQUEIDENTIFIER": familyText, "ENUM": familyText,

	"INT2": familyInteger, "INT4": familyInteger, "INT8": familyInteger,
	"SMALLINT": familyInteger, "INTEGER": familyInteger, "INT": familyInteger,
	"BIGINT": familyInteger, "TINYINT": familyInteger, "MEDIUMINT": familyInteger,
	"UNSIGNED SMALLINT": familyInteger, "UNSIGNED INT": familyInteger,
	"UNSIGNED BIGINT": familyInteger, "UNSIGNED TINYINT": familyInteger,
	"UNSIGNED MEDIUMINT": familyInteger, "USMALLINT": familyInteger,
	"UINTEGER": familyInteger, "UBIGINT": familyInteger, "UTINYINT": familyInteger,
	"YEAR": familyInteger,

	"FLOAT4": familyFloat, "FLOAT8": familyFloat, "REAL": familyFloat,
	"FLOAT": familyFloat, "DOUBLE": familyFloat, "NUMERIC": familyFloat,
	"DECIMAL": familyFloat, "MONEY": familyFloat, "SMALLMONEY": familyFloat,

	"BOOL": familyBool, "BOOLEAN": familyBool, "BIT": familyBool,
}

func familyOf(typeName string) valueFamily {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if f, ok := typeFamilies[name]; ok {
		return f
	}
	// DECIMAL(18,3) and friends
	if i := strings.IndexByte(name, '('); i > 0 {
		return typeFamilies[strings.TrimSpace(name[:i])]
	}
	return familyUnknown
}

// normalize maps a scanned driver value to string, int64, float64, bool or
// nil according to its column family.
func normalize(f valueFamily, v any) any {
	if v == nil {
		return nil
	}
	switch f {
	case familyText:
		return asText(v)
	case familyInteger:
		return asInteger(v)
	case familyFloat:
		return asFloat(v)
	case familyBool:
		return asBool(v)
	default:
		return nil
	}
}

func asText(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func asInteger(v any) any {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	case int8:
		return int64(t)
	case int:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return float64(t)
		}
		return int64(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return int64(t)
		}
		return asFloat(t)
	case []byte:
		return parseInteger(string(t))
	case string:
		return parseInteger(t)
	default:
		return nil
	}
}

func parseInteger(s string) any {
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return n
	}
	return nil
}

func asFloat(v any) any {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case int:
		f = float64(t)
	case []byte:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		if err != nil {
			return nil
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = n
	case fmt.Stringer:
		n, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func asBool(v any) any {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case []byte:
		if len(t) == 1 && (t[0] == 0 || t[0] == 1) {
			return t[0] == 1
		}
		return parseBool(string(t))
	case string:
		return parseBool(t)
	default:
		return nil
	}
}

func parseBool(s string) any {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes":
		return true
	case "0", "f", "false", "n", "no":
		return false
	default:
		return nil
	}
}
